package feed

import (
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// ToolGroup is a contiguous run of tool, reasoning and explore items shown
// together. Consecutive explores are already merged.
type ToolGroup struct {
	Items []conversation.Item
}

// ToolCount returns the tool units in the group: tool items plus explore
// entries.
func (g *ToolGroup) ToolCount() int {
	return toolUnits(g.Items)
}

// Entry is one renderable row: either a single item or a ToolGroup.
type Entry struct {
	Item  conversation.Item
	Group *ToolGroup
}

// Key identifies the row across updates. A group is keyed by its first
// item so the row keeps its identity while the run grows.
func (e Entry) Key() string {
	if e.Group != nil {
		if len(e.Group.Items) == 0 {
			return ""
		}
		return e.Group.Items[0].ItemID()
	}
	if e.Item == nil {
		return ""
	}
	return e.Item.ItemID()
}

// Items returns the items rendered by the entry.
func (e Entry) Items() []conversation.Item {
	if e.Group != nil {
		return e.Group.Items
	}
	return []conversation.Item{e.Item}
}

// Visible drops internal control messages and reasoning items with nothing
// to show beyond a title.
func Visible(items []conversation.Item, cache *ReasoningCache, controlTags []string) []conversation.Item {
	out := make([]conversation.Item, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case *conversation.Message:
			if v.Role == conversation.RoleUser && hasControlTag(v.Text, controlTags) {
				continue
			}
		case *conversation.Reasoning:
			if !cache.Parse(v).HasBody {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func hasControlTag(text string, tags []string) bool {
	trimmed := strings.TrimSpace(text)
	for _, tag := range tags {
		if tag != "" && strings.HasPrefix(trimmed, tag) {
			return true
		}
	}
	return false
}

// Group partitions visible items into renderable entries. Tool, reasoning
// and explore items are buffered and flushed at every message, diff or
// review item and at the end of the list.
func Group(items []conversation.Item) []Entry {
	entries := make([]Entry, 0, len(items))
	var buf []conversation.Item

	flush := func() {
		if len(buf) == 0 {
			return
		}
		merged := mergeExplores(buf)
		if toolUnits(merged) == 0 || len(merged) == 1 {
			for _, it := range merged {
				entries = append(entries, Entry{Item: it})
			}
		} else {
			entries = append(entries, Entry{Group: &ToolGroup{Items: merged}})
		}
		buf = nil
	}

	for _, it := range items {
		switch it.Kind() {
		case conversation.KindTool, conversation.KindReasoning, conversation.KindExplore:
			buf = append(buf, it)
		default:
			flush()
			entries = append(entries, Entry{Item: it})
		}
	}
	flush()
	return entries
}

// mergeExplores folds runs of consecutive explore items into one. Entries
// are concatenated in order and the status comes from the last item.
func mergeExplores(items []conversation.Item) []conversation.Item {
	out := make([]conversation.Item, 0, len(items))
	var run []*conversation.Explore

	closeRun := func() {
		switch len(run) {
		case 0:
		case 1:
			out = append(out, run[0])
		default:
			merged := &conversation.Explore{
				ID:     run[0].ID,
				Status: run[len(run)-1].Status,
			}
			var rev uint64
			for _, e := range run {
				merged.Entries = append(merged.Entries, e.Entries...)
				merged.SourceIDs = append(merged.SourceIDs, sourceIDs(e)...)
				rev = rev*31 + e.Rev
			}
			merged.Rev = rev
			out = append(out, merged)
		}
		run = nil
	}

	for _, it := range items {
		if e, ok := it.(*conversation.Explore); ok {
			run = append(run, e)
			continue
		}
		closeRun()
		out = append(out, it)
	}
	closeRun()
	return out
}

func sourceIDs(e *conversation.Explore) []string {
	if len(e.SourceIDs) > 0 {
		return e.SourceIDs
	}
	return []string{e.ID}
}

func toolUnits(items []conversation.Item) int {
	n := 0
	for _, it := range items {
		switch v := it.(type) {
		case *conversation.Tool:
			n++
		case *conversation.Explore:
			n += len(v.Entries)
		}
	}
	return n
}

// Keys returns the row keys of entries in order.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key()
	}
	return keys
}

// FlattenIDs expands groups and merged explores back to the ids of the items
// they were built from.
func FlattenIDs(entries []Entry) []string {
	var ids []string
	for _, e := range entries {
		for _, it := range e.Items() {
			if ex, ok := it.(*conversation.Explore); ok {
				ids = append(ids, sourceIDs(ex)...)
				continue
			}
			ids = append(ids, it.ItemID())
		}
	}
	return ids
}
