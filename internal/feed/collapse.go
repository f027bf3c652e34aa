package feed

import (
	"strings"
	"unicode/utf8"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// CollapsedByDefault returns the ids of messages the heuristic collapses.
// Long assistant messages collapse unless they are among the KeepRecent
// most recent assistant messages; long user messages always collapse.
func CollapsedByDefault(items []conversation.Item, rules CollapseRules) map[string]bool {
	out := make(map[string]bool)

	recent := make(map[string]bool, rules.KeepRecent)
	for i := len(items) - 1; i >= 0 && len(recent) < rules.KeepRecent; i-- {
		if m, ok := items[i].(*conversation.Message); ok && m.Role == conversation.RoleAssistant {
			recent[m.ID] = true
		}
	}

	for _, it := range items {
		m, ok := it.(*conversation.Message)
		if !ok {
			continue
		}
		switch m.Role {
		case conversation.RoleAssistant:
			if !recent[m.ID] && isLong(m.Text, rules.AssistantChars, rules.AssistantLines) {
				out[m.ID] = true
			}
		case conversation.RoleUser:
			if isLong(m.Text, rules.UserChars, rules.UserLines) {
				out[m.ID] = true
			}
		}
	}
	return out
}

// DefaultCollapse holds each message's heuristic state as decided the first
// time its id was seen. Later passes never re-decide a known id.
type DefaultCollapse struct {
	state map[string]bool
}

// NewDefaultCollapse returns an empty record.
func NewDefaultCollapse() *DefaultCollapse {
	return &DefaultCollapse{state: make(map[string]bool)}
}

// Update decides new ids with CollapsedByDefault, keeps known ids as they
// were and forgets ids no longer in items. It returns the collapsed ids.
func (d *DefaultCollapse) Update(items []conversation.Item, rules CollapseRules) map[string]bool {
	fresh := CollapsedByDefault(items, rules)
	next := make(map[string]bool, len(items))
	out := make(map[string]bool)
	for _, it := range items {
		m, ok := it.(*conversation.Message)
		if !ok {
			continue
		}
		collapsed, known := d.state[m.ID]
		if !known {
			collapsed = fresh[m.ID]
		}
		next[m.ID] = collapsed
		if collapsed {
			out[m.ID] = true
		}
	}
	d.state = next
	return out
}

func isLong(text string, maxChars, maxLines int) bool {
	return utf8.RuneCountInString(text) > maxChars || strings.Count(text, "\n")+1 > maxLines
}

// Preview returns the first n characters of text and whether anything was
// cut.
func Preview(text string, n int) (string, bool) {
	if utf8.RuneCountInString(text) <= n {
		return text, false
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:n]), " \n") + "…", true
}

// ExpandState is the user-owned layer of expand/collapse state. Heuristics
// are computed separately and consulted only for ids the user never
// touched.
type ExpandState struct {
	expanded     map[string]bool // tool, reasoning and group rows
	messageOpen  map[string]bool // explicit message state, true = expanded
	overridden   map[string]bool
	autoExpanded map[string]bool
}

// NewExpandState returns empty state.
func NewExpandState() *ExpandState {
	return &ExpandState{
		expanded:     make(map[string]bool),
		messageOpen:  make(map[string]bool),
		overridden:   make(map[string]bool),
		autoExpanded: make(map[string]bool),
	}
}

// Toggle flips a tool, reasoning or group row and marks it overridden.
func (s *ExpandState) Toggle(id string) {
	s.expanded[id] = !s.expanded[id]
	s.overridden[id] = true
}

// IsExpanded reports whether a tool, reasoning or group row is open.
func (s *ExpandState) IsExpanded(id string) bool {
	return s.expanded[id]
}

// Overridden reports whether the user has toggled id.
func (s *ExpandState) Overridden(id string) bool {
	return s.overridden[id]
}

// ToggleMessage flips a message between collapsed and expanded given the
// state it is currently shown in.
func (s *ExpandState) ToggleMessage(id string, collapsed bool) {
	s.messageOpen[id] = collapsed
	s.overridden[id] = true
}

// MessageCollapsed resolves a message's state: the user's choice wins,
// otherwise the heuristic applies.
func (s *ExpandState) MessageCollapsed(id string, heuristic map[string]bool) bool {
	if open, ok := s.messageOpen[id]; ok {
		return !open
	}
	return heuristic[id]
}

// ApplyPlanAutoExpand opens the most recent plan tool with output, once,
// unless the user has already toggled it. It returns the id it opened.
func (s *ExpandState) ApplyPlanAutoExpand(items []conversation.Item) (string, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		t, ok := items[i].(*conversation.Tool)
		if !ok || t.ToolType != conversation.ToolPlan {
			continue
		}
		if strings.TrimSpace(t.Output) == "" {
			continue
		}
		if s.overridden[t.ID] || s.autoExpanded[t.ID] {
			return "", false
		}
		s.autoExpanded[t.ID] = true
		s.expanded[t.ID] = true
		return t.ID, true
	}
	return "", false
}

// Prune drops state for ids that are no longer present.
func (s *ExpandState) Prune(present map[string]struct{}) {
	for _, m := range []map[string]bool{s.expanded, s.messageOpen, s.overridden, s.autoExpanded} {
		for id := range m {
			if _, ok := present[id]; !ok {
				delete(m, id)
			}
		}
	}
}
