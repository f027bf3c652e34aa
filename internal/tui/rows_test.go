package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/tui/testfixtures"
)

func newRowContext(items []conversation.Item) *rowContext {
	opts := feed.DefaultOptions()
	reasoning := feed.NewReasoningCache().Pass(items)
	visible := feed.Visible(items, reasoning, opts.ControlTags)
	return &rowContext{
		width:     80,
		expand:    feed.NewExpandState(),
		collapsed: feed.CollapsedByDefault(visible, opts.Collapse),
		rules:     opts.Collapse,
		reasoning: reasoning,
		md:        &markdownRenderer{},
	}
}

func renderItem(ctx *rowContext, it conversation.Item) string {
	return testfixtures.Plain(ctx.renderEntry(feed.Entry{Item: it}))
}

func TestRows_Message(t *testing.T) {
	t.Parallel()

	long := testfixtures.User("u1", testfixtures.Lines(30))
	short := testfixtures.User("u2", "hi")
	items := []conversation.Item{long, short}
	ctx := newRowContext(items)

	out := renderItem(ctx, long)
	assert.Contains(t, out, "▸ show full message")
	assert.Contains(t, out, "line 1")

	out = renderItem(ctx, short)
	assert.Contains(t, out, "hi")
	assert.NotContains(t, out, "show full message")

	ctx.expand.ToggleMessage("u1", true)
	out = renderItem(ctx, long)
	assert.Contains(t, out, "line 30")
	assert.Contains(t, out, "▾ collapse message")
}

func TestRows_AssistantMeta(t *testing.T) {
	t.Parallel()

	m := testfixtures.Assistant("a1", "All done.")
	m.Model = "gpt-5"
	m.ContextWindow = 200000
	m.Images = []string{"a.png", "b.png"}
	ctx := newRowContext([]conversation.Item{m})

	out := renderItem(ctx, m)
	assert.Contains(t, out, "All done.")
	assert.Contains(t, out, "2 images attached")
	assert.Contains(t, out, "gpt-5 · 200k context")
}

func TestRows_Tool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tool     *conversation.Tool
		contains []string
		excludes []string
	}{
		{
			name:     "truncated output",
			tool:     testfixtures.Command("c1", "go test ./...", "completed", testfixtures.Lines(15)),
			contains: []string{"✓", "go test ./...", "line 10", "…(5 more lines)"},
			excludes: []string{"line 11"},
		},
		{
			name:     "failed output is shown in full",
			tool:     testfixtures.Command("c2", "make", "failed", testfixtures.Lines(15)),
			contains: []string{"×", "line 15"},
			excludes: []string{"more lines"},
		},
		{
			name:     "default label",
			tool:     &conversation.Tool{ID: "w1", ToolType: conversation.ToolWebSearch, Status: "running"},
			contains: []string{"Web search"},
		},
		{
			name:     "unknown type",
			tool:     &conversation.Tool{ID: "x1", ToolType: "custom"},
			contains: []string{"Tool"},
		},
		{
			name: "duration",
			tool: &conversation.Tool{ID: "d1", ToolType: conversation.ToolCommandExecution, Title: "sleep", Status: "completed",
				DurationMs: int64(2 * time.Second / time.Millisecond)},
			contains: []string{"sleep", "2s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := newRowContext([]conversation.Item{tt.tool})
			out := renderItem(ctx, tt.tool)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRows_ExpandedToolShowsEverything(t *testing.T) {
	t.Parallel()

	tool := testfixtures.Command("c1", "go test", "completed", testfixtures.Lines(15))
	ctx := newRowContext([]conversation.Item{tool})
	ctx.expand.Toggle("c1")

	out := renderItem(ctx, tool)
	assert.Contains(t, out, "line 15")
	assert.NotContains(t, out, "more lines")
}

func TestRows_Reasoning(t *testing.T) {
	t.Parallel()

	r := testfixtures.Reasoning("r1", "## Planning the *fix*\nCheck the parser first.", "")
	ctx := newRowContext([]conversation.Item{r})

	out := renderItem(ctx, r)
	assert.Contains(t, out, "▸ Planning the fix")
	assert.NotContains(t, out, "Check the parser first.")

	ctx.expand.Toggle("r1")
	out = renderItem(ctx, r)
	assert.Contains(t, out, "▾ Planning the fix")
	assert.Contains(t, out, "Check the parser first.")
}

func TestRows_Group(t *testing.T) {
	t.Parallel()

	items := []conversation.Item{
		testfixtures.Command("c1", "ls", "completed", ""),
		testfixtures.Command("c2", "cat go.mod", "running", ""),
		testfixtures.Command("c3", "false", "failed", ""),
	}
	entries := feed.Group(items)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Group)

	ctx := newRowContext(items)
	out := testfixtures.Plain(ctx.renderEntry(entries[0]))
	assert.Contains(t, out, "▸ 3 tool calls · 1 running · 1 failed")
	assert.Contains(t, out, "false")
	assert.NotContains(t, out, "cat go.mod", "a collapsed group previews only the last call")

	ctx.expand.Toggle(groupStateID(entries[0].Key()))
	out = testfixtures.Plain(ctx.renderEntry(entries[0]))
	assert.Contains(t, out, "▾ 3 tool calls")
	assert.Contains(t, out, "cat go.mod")
	assert.False(t, ctx.expand.IsExpanded("c1"), "the first call keeps its own state")
}

func TestRows_GroupOpensForAutoExpandedPlan(t *testing.T) {
	t.Parallel()

	items := []conversation.Item{
		testfixtures.Command("c1", "ls", "completed", ""),
		testfixtures.Plan("p1", "1. Add column\n2. Backfill", "completed"),
	}
	entries := feed.Group(items)
	require.Len(t, entries, 1)

	ctx := newRowContext(items)
	ctx.expand.ApplyPlanAutoExpand(items)
	out := testfixtures.Plain(ctx.renderEntry(entries[0]))
	assert.Contains(t, out, "▾ 2 tool calls")
	assert.Contains(t, out, "Backfill")

	// The user's choice wins over the plan heuristic.
	id := groupStateID(entries[0].Key())
	ctx.expand.Toggle(id)
	ctx.expand.Toggle(id)
	require.True(t, ctx.expand.Overridden(id))
	assert.Contains(t, testfixtures.Plain(ctx.renderEntry(entries[0])), "▸ 2 tool calls")
}

func TestRows_Review(t *testing.T) {
	t.Parallel()

	ctx := newRowContext(nil)
	started := &conversation.Review{ID: "v1", State: conversation.ReviewStarted}
	done := &conversation.Review{ID: "v2", State: conversation.ReviewCompleted, Text: "Looks good."}

	assert.Contains(t, renderItem(ctx, started), "Review started")
	out := renderItem(ctx, done)
	assert.Contains(t, out, "Review completed")
	assert.Contains(t, out, "Looks good.")
}

func TestRows_Diff(t *testing.T) {
	t.Parallel()

	d := &conversation.Diff{ID: "d1", Title: "main.go", Diff: "@@ -1,2 +1,2 @@\n-old\n+new\n+more\n ctx"}
	out := renderItem(newRowContext(nil), d)
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "+2")
	assert.Contains(t, out, "-1")
}

// Row cache

func TestRowCache(t *testing.T) {
	t.Parallel()

	stamped := testfixtures.Assistant("a1", "hello")
	conversation.Stamp([]conversation.Item{stamped})
	unstamped := testfixtures.Assistant("a2", "hello")

	ctx := newRowContext([]conversation.Item{stamped, unstamped})
	c := newRowCache()

	e := feed.Entry{Item: stamped}
	c.put("a1", ctx.signature(e), "row")
	_, ok := c.get("a1", ctx.signature(e))
	assert.True(t, ok, "same revision hits")

	copyOf := *stamped
	_, ok = c.get("a1", ctx.signature(feed.Entry{Item: &copyOf}))
	assert.True(t, ok, "an equal revision on a new value hits")

	copyOf.Text = "changed"
	conversation.Stamp([]conversation.Item{&copyOf})
	_, ok = c.get("a1", ctx.signature(feed.Entry{Item: &copyOf}))
	assert.False(t, ok, "a new revision misses")

	u := feed.Entry{Item: unstamped}
	c.put("a2", ctx.signature(u), "row")
	_, ok = c.get("a2", ctx.signature(u))
	assert.True(t, ok, "unstamped items hit on identity")
	other := *unstamped
	_, ok = c.get("a2", ctx.signature(feed.Entry{Item: &other}))
	assert.False(t, ok, "unstamped items miss on a new value")

	ctx.width = 60
	_, ok = c.get("a1", ctx.signature(e))
	assert.False(t, ok, "width changes miss")

	c.retain([]string{"a2"})
	ctx.width = 80
	_, ok = c.get("a1", ctx.signature(e))
	assert.False(t, ok, "dropped keys miss")
}

func TestRowCache_ExpandStateIsPartOfTheKey(t *testing.T) {
	t.Parallel()

	tool := testfixtures.Command("c1", "ls", "completed", "out")
	conversation.Stamp([]conversation.Item{tool})
	ctx := newRowContext([]conversation.Item{tool})
	c := newRowCache()

	e := feed.Entry{Item: tool}
	c.put("c1", ctx.signature(e), "collapsed")
	ctx.expand.Toggle("c1")
	_, ok := c.get("c1", ctx.signature(e))
	assert.False(t, ok)
}

// Transcript

func TestRenderTranscript(t *testing.T) {
	t.Parallel()

	snap := testfixtures.Snapshot(
		testfixtures.User("u0", "<user_instructions>secret</user_instructions>"),
		testfixtures.User("u1", "Add a migration"),
		testfixtures.Reasoning("r1", "**Looking at the schema**", "users has no email column"),
		testfixtures.Command("c1", "ls migrations", "completed", "001_init.sql"),
		testfixtures.Assistant("a1", "Added `002_email.sql`."),
	)
	ms := int64(75000)
	snap.LastDurationMs = &ms

	out := testfixtures.Plain(RenderTranscript(snap, feed.DefaultOptions(), 80))
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "Add a migration")
	assert.Contains(t, out, "▸ 1 tool call")
	assert.Contains(t, out, "002_email.sql")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "─ Worked for 1m 15s ─"))
}
