package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threadfeed/threadfeed/internal/conversation"
)

func TestParseReasoning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary string
		content string
		title   string
		body    string
		label   string
	}{
		{
			name:    "summary title with rest as body",
			summary: "**Inspecting** the `config` loader\nIt reads env vars first.",
			title:   "Inspecting the config loader",
			body:    "It reads env vars first.",
			label:   "Inspecting the config loader",
		},
		{
			name:    "content appended after summary rest",
			summary: "## Plan",
			content: "Step one.",
			title:   "Plan",
			body:    "Step one.",
			label:   "Plan",
		},
		{
			name:    "falls back to content",
			content: "\n\n> [Reading](http://x) docs\nmore",
			title:   "Reading docs",
			body:    "more",
			label:   "Reading docs",
		},
		{
			name:  "empty source",
			title: "Thinking",
		},
		{
			name:    "identical content not repeated",
			summary: "Same\nbody",
			content: "Same\nbody",
			title:   "Same",
			body:    "body",
			label:   "Same",
		},
		{
			name:    "identifiers keep underscores",
			summary: "Renaming snake_case_name",
			title:   "Renaming snake_case_name",
			label:   "Renaming snake_case_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := ParseReasoning(reasoning("r", tt.summary, tt.content))
			require.Equal(t, tt.title, v.Title)
			require.Equal(t, tt.body, v.Body)
			require.Equal(t, tt.body != "", v.HasBody)
			require.Equal(t, tt.label, v.WorkingLabel)
		})
	}
}

func TestParseReasoning_TruncatesTitle(t *testing.T) {
	t.Parallel()

	v := ParseReasoning(reasoning("r", strings.Repeat("word ", 40), ""))
	require.Equal(t, maxReasoningTitle, len([]rune(v.Title)))
	require.True(t, strings.HasSuffix(v.Title, "…"))
}

func countingCache() (*ReasoningCache, *int) {
	calls := 0
	c := NewReasoningCache()
	c.parse = func(r *conversation.Reasoning) ReasoningView {
		calls++
		return ParseReasoning(r)
	}
	return c, &calls
}

func TestReasoningCache_ReusesUnchangedRevision(t *testing.T) {
	t.Parallel()

	c, calls := countingCache()
	r := reasoning("r1", "Title", "body")
	r.Rev = 7

	c.Parse(r)
	c.Parse(r)
	c.Parse(&conversation.Reasoning{ID: "r1", Summary: "Title", Content: "body", Rev: 7})
	require.Equal(t, 1, *calls)

	changed := reasoning("r1", "Title", "longer body")
	changed.Rev = 8
	require.Equal(t, "longer body", c.Parse(changed).Body)
	require.Equal(t, 2, *calls)
}

func TestReasoningCache_UnstampedUsesIdentity(t *testing.T) {
	t.Parallel()

	c, calls := countingCache()
	r := reasoning("r1", "Title", "body")
	c.Parse(r)
	c.Parse(r)
	require.Equal(t, 1, *calls)

	c.Parse(reasoning("r1", "Title", "body"))
	require.Equal(t, 2, *calls)
}

func TestReasoningCache_PassEvictsAndReuses(t *testing.T) {
	t.Parallel()

	c, calls := countingCache()
	r1 := reasoning("r1", "A", "a")
	r2 := reasoning("r2", "B", "b")
	r1.Rev, r2.Rev = 1, 1

	c = c.Pass([]conversation.Item{r1, r2})
	require.Equal(t, 2, *calls)
	require.Equal(t, 2, c.Len())

	r3 := reasoning("r3", "C", "c")
	r3.Rev = 1
	c = c.Pass([]conversation.Item{userMsg("m", "x"), r2, r3})
	require.Equal(t, 3, *calls, "r2 reused, only r3 parsed")
	require.Equal(t, 2, c.Len())
}
