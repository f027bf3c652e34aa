package feed

import (
	"regexp"
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

const (
	maxReasoningTitle    = 80
	defaultThinkingTitle = "Thinking"
)

// ReasoningView is the display form of a reasoning item.
type ReasoningView struct {
	Title   string
	Body    string
	HasBody bool
	// WorkingLabel is the title when the source text had any content, and
	// empty otherwise. It feeds the trailing status indicator even for
	// reasoning items that are hidden for lack of a body.
	WorkingLabel string
}

var (
	reLink       = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	reBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reBoldUnder  = regexp.MustCompile(`__([^_]+)__`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUndr = regexp.MustCompile(`(^|[^\w])_([^_]+)_([^\w]|$)`)
	reCode       = regexp.MustCompile("`([^`]*)`")
	reHeading    = regexp.MustCompile(`^(#{1,6}|>)\s*`)
)

// ParseReasoning extracts the title and body of a reasoning item.
func ParseReasoning(r *conversation.Reasoning) ReasoningView {
	summary := strings.TrimSpace(r.Summary)
	content := strings.TrimSpace(r.Content)

	source, other := summary, content
	if source == "" {
		source, other = content, summary
	}

	view := ReasoningView{Title: defaultThinkingTitle}
	if source == "" {
		return view
	}

	lines := strings.Split(source, "\n")
	titleIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			titleIdx = i
			break
		}
	}

	if titleIdx >= 0 {
		if title := stripMarkup(lines[titleIdx]); title != "" {
			view.Title = truncateRunes(title, maxReasoningTitle)
		}
	}
	view.WorkingLabel = view.Title

	var parts []string
	if titleIdx >= 0 {
		if rest := strings.TrimSpace(strings.Join(lines[titleIdx+1:], "\n")); rest != "" {
			parts = append(parts, rest)
		}
	}
	if other != "" && other != source {
		parts = append(parts, other)
	}
	view.Body = strings.TrimSpace(strings.Join(parts, "\n\n"))
	view.HasBody = view.Body != ""
	return view
}

func stripMarkup(line string) string {
	s := strings.TrimSpace(line)
	s = reHeading.ReplaceAllString(s, "")
	s = reLink.ReplaceAllString(s, "$1")
	s = reBold.ReplaceAllString(s, "$1")
	s = reBoldUnder.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reItalicUndr.ReplaceAllString(s, "$1$2$3")
	s = reCode.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// truncateRunes shortens s to at most max runes, the last being an ellipsis.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}

type reasoningEntry struct {
	item *conversation.Reasoning
	rev  uint64
	view ReasoningView
}

// ReasoningCache memoizes ParseReasoning per item id. An entry is reused
// while the item's revision is unchanged; unstamped items (revision zero)
// fall back to pointer identity.
type ReasoningCache struct {
	entries map[string]reasoningEntry
	parse   func(*conversation.Reasoning) ReasoningView
}

// NewReasoningCache returns an empty cache using ParseReasoning.
func NewReasoningCache() *ReasoningCache {
	return &ReasoningCache{
		entries: make(map[string]reasoningEntry),
		parse:   ParseReasoning,
	}
}

// Parse returns the cached view for r, recomputing when r changed.
func (c *ReasoningCache) Parse(r *conversation.Reasoning) ReasoningView {
	if e, ok := c.entries[r.ID]; ok && e.matches(r) {
		return e.view
	}
	view := c.parse(r)
	c.entries[r.ID] = reasoningEntry{item: r, rev: r.Rev, view: view}
	return view
}

func (e reasoningEntry) matches(r *conversation.Reasoning) bool {
	if r.Rev != 0 || e.rev != 0 {
		return e.rev == r.Rev
	}
	return e.item == r
}

// Pass returns a cache holding only the reasoning items in items, reusing
// unchanged entries from c. Ids that disappeared are dropped.
func (c *ReasoningCache) Pass(items []conversation.Item) *ReasoningCache {
	next := &ReasoningCache{
		entries: make(map[string]reasoningEntry),
		parse:   c.parse,
	}
	for _, it := range items {
		r, ok := it.(*conversation.Reasoning)
		if !ok {
			continue
		}
		if e, ok := c.entries[r.ID]; ok && e.matches(r) {
			next.entries[r.ID] = e
			continue
		}
		next.Parse(r)
	}
	return next
}

// Len returns the number of cached entries.
func (c *ReasoningCache) Len() int {
	return len(c.entries)
}
