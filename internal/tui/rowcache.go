package tui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
)

// rowSig is everything a rendered row depends on. Items match when they are
// the same value with the same revision, or carry the same non-zero
// revision.
type rowSig struct {
	width int
	state string
	items []conversation.Item
	revs  []uint64
}

func (a rowSig) matches(b rowSig) bool {
	if a.width != b.width || a.state != b.state || len(a.items) != len(b.items) {
		return false
	}
	for i := range a.items {
		if a.revs[i] != b.revs[i] {
			return false
		}
		if a.revs[i] == 0 && a.items[i] != b.items[i] {
			return false
		}
	}
	return true
}

type cachedRow struct {
	sig    rowSig
	text   string
	height int
}

// rowCache memoizes rendered rows by entry key.
type rowCache struct {
	rows map[string]cachedRow
}

func newRowCache() *rowCache {
	return &rowCache{rows: make(map[string]cachedRow)}
}

func (c *rowCache) get(key string, sig rowSig) (cachedRow, bool) {
	row, ok := c.rows[key]
	if !ok || !row.sig.matches(sig) {
		return cachedRow{}, false
	}
	return row, true
}

func (c *rowCache) put(key string, sig rowSig, text string) cachedRow {
	row := cachedRow{sig: sig, text: text, height: lipgloss.Height(text)}
	c.rows[key] = row
	return row
}

// retain drops rows whose keys are no longer present.
func (c *rowCache) retain(keys []string) {
	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}
	for k := range c.rows {
		if _, ok := present[k]; !ok {
			delete(c.rows, k)
		}
	}
}

func (c *rowCache) reset() {
	c.rows = make(map[string]cachedRow)
}

// signature fingerprints an entry against the current expand state.
func (c *rowContext) signature(e feed.Entry) rowSig {
	items := e.Items()
	sig := rowSig{
		width: c.width,
		items: items,
		revs:  make([]uint64, len(items)),
	}
	var state strings.Builder
	if e.Group != nil && c.groupExpanded(e.Key(), e.Group) {
		state.WriteByte('G')
	}
	for i, it := range items {
		sig.revs[i] = it.Revision()
		id := it.ItemID()
		switch {
		case it.Kind() == conversation.KindMessage:
			if c.expand.MessageCollapsed(id, c.collapsed) {
				state.WriteByte('c')
			} else if c.collapsed[id] || c.expand.Overridden(id) {
				state.WriteByte('o')
			} else {
				state.WriteByte('-')
			}
		case c.expand.IsExpanded(id):
			state.WriteByte('e')
		default:
			state.WriteByte('-')
		}
	}
	sig.state = state.String()
	return sig
}
