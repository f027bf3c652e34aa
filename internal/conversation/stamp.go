package conversation

import (
	"hash/fnv"
	"strconv"
)

// Stamp assigns a content-derived revision to every unstamped item. The
// same content always yields the same revision, so items re-decoded from an
// unchanged transcript keep their identity for memoization, and any edit
// produces a new revision.
func Stamp(items []Item) {
	for _, it := range items {
		if it.Revision() != 0 {
			continue
		}
		rev := Visit[uint64](it, hasher{})
		if rev == 0 {
			rev = 1
		}
		setRevision(it, rev)
	}
}

func setRevision(it Item, rev uint64) {
	switch v := it.(type) {
	case *Message:
		v.Rev = rev
	case *Reasoning:
		v.Rev = rev
	case *Tool:
		v.Rev = rev
	case *Explore:
		v.Rev = rev
	case *Diff:
		v.Rev = rev
	case *Review:
		v.Rev = rev
	}
}

type hasher struct{}

func sum(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func (hasher) Message(m *Message) uint64 {
	parts := []string{"message", m.ID, string(m.Role), m.Text, m.Model, strconv.Itoa(m.ContextWindow)}
	return sum(append(parts, m.Images...)...)
}

func (hasher) Reasoning(r *Reasoning) uint64 {
	return sum("reasoning", r.ID, r.Summary, r.Content)
}

func (hasher) Tool(t *Tool) uint64 {
	parts := []string{"tool", t.ID, t.ToolType, t.Title, t.Detail, t.Status, t.Output, strconv.FormatInt(t.DurationMs, 10)}
	for _, c := range t.Changes {
		parts = append(parts, c.Path, c.Kind, c.Diff, c.Before, c.After)
	}
	return sum(parts...)
}

func (hasher) Explore(e *Explore) uint64 {
	parts := []string{"explore", e.ID, e.Status}
	for _, en := range e.Entries {
		parts = append(parts, en.Kind, en.Label, en.Detail)
	}
	return sum(parts...)
}

func (hasher) Diff(d *Diff) uint64 {
	return sum("diff", d.ID, d.Title, d.Diff, d.Status)
}

func (hasher) Review(r *Review) uint64 {
	return sum("review", r.ID, r.State, r.Text)
}
