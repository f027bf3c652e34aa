// Package feed holds the renderer-independent core of the conversation feed:
// grouping, reasoning parsing, scroll pinning, pagination, windowing,
// expand/collapse heuristics and the derived tail affordances.
//
// Every function here is pure or operates on state owned by a single feed
// instance. Distances and heights are in pixels; terminal frontends convert
// rows to pixels before calling in.
package feed

import "time"

// Options tunes the feed core. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Auto-scroll hysteresis.
	CaptureDistance int
	ReleaseDistance int

	// Pagination.
	TopTrigger   int
	PageCooldown time.Duration

	// Windowing.
	VirtualizeThreshold int
	EstimatedRowHeight  int
	Overscan            int

	Collapse CollapseRules

	// ControlTags are prefixes marking internal user messages that are
	// never shown.
	ControlTags []string
}

// CollapseRules are the thresholds for default-collapsed long messages.
type CollapseRules struct {
	AssistantChars int
	AssistantLines int
	KeepRecent     int
	UserChars      int
	UserLines      int
	PreviewChars   int
}

// DefaultControlTags lists the internal control tags dropped by Visible.
var DefaultControlTags = []string{
	"<environment_context>",
	"<user_instructions>",
	"<turn_aborted>",
	"<collaboration_mode>",
	"<user_shell_command>",
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		CaptureDistance:     120,
		ReleaseDistance:     360,
		TopTrigger:          16,
		PageCooldown:        900 * time.Millisecond,
		VirtualizeThreshold: 120,
		EstimatedRowHeight:  140,
		Overscan:            18,
		Collapse:            DefaultCollapseRules(),
		ControlTags:         append([]string(nil), DefaultControlTags...),
	}
}

// DefaultCollapseRules returns the standard long-message thresholds.
func DefaultCollapseRules() CollapseRules {
	return CollapseRules{
		AssistantChars: 900,
		AssistantLines: 14,
		KeepRecent:     5,
		UserChars:      800,
		UserLines:      12,
		PreviewChars:   1200,
	}
}
