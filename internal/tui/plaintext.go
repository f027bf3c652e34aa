package tui

import (
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
)

// plainText extracts the copyable source text of an item.
type plainText struct {
	reasoning *feed.ReasoningCache
}

var _ conversation.Visitor[string] = plainText{}

func (p plainText) Message(m *conversation.Message) string { return m.Text }

func (p plainText) Reasoning(r *conversation.Reasoning) string {
	v := p.reasoning.Parse(r)
	if !v.HasBody {
		return v.Title
	}
	return v.Title + "\n\n" + v.Body
}

func (p plainText) Tool(t *conversation.Tool) string {
	parts := []string{toolTitle(t)}
	if t.Detail != "" {
		parts = append(parts, t.Detail)
	}
	for _, fc := range t.Changes {
		if d := changeDiff(fc); d != "" {
			parts = append(parts, d)
		}
	}
	if t.Output != "" {
		parts = append(parts, t.Output)
	}
	return strings.Join(parts, "\n\n")
}

func (p plainText) Explore(e *conversation.Explore) string {
	lines := make([]string, 0, len(e.Entries))
	for _, en := range e.Entries {
		lines = append(lines, strings.TrimSpace(en.Kind+" "+en.Label+" "+en.Detail))
	}
	return strings.Join(lines, "\n")
}

func (p plainText) Diff(d *conversation.Diff) string { return d.Diff }

func (p plainText) Review(r *conversation.Review) string {
	if r.Text != "" {
		return r.Text
	}
	return "Review " + r.State
}

// entryText joins the copyable text of every item in an entry.
func entryText(e feed.Entry, cache *feed.ReasoningCache) string {
	v := plainText{reasoning: cache}
	items := e.Items()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if s := conversation.Visit(it, v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
