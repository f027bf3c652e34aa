package tui

import (
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

// RenderTranscript renders a whole snapshot as static text, the way the feed
// shows it at rest: default collapse state, no cursor, no windowing.
func RenderTranscript(snap *conversation.Snapshot, opts feed.Options, width int) string {
	if width < 20 {
		width = 20
	}
	reasoning := feed.NewReasoningCache().Pass(snap.Items)
	visible := feed.Visible(snap.Items, reasoning, opts.ControlTags)
	expand := feed.NewExpandState()
	expand.ApplyPlanAutoExpand(visible)

	ctx := &rowContext{
		width:     width,
		expand:    expand,
		collapsed: feed.CollapsedByDefault(visible, opts.Collapse),
		rules:     opts.Collapse,
		reasoning: reasoning,
		md:        &markdownRenderer{},
	}

	var rows []string
	for _, e := range feed.Group(visible) {
		rows = append(rows, ctx.renderEntry(e))
	}
	if d, ok := snap.LastDuration(); ok && d > 0 {
		rows = append(rows, theme.Current().S().Trailer.Render("─ "+feed.WorkedFor(d)+" ─"))
	}
	return strings.Join(rows, "\n\n") + "\n"
}
