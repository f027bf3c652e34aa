package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threadfeed/threadfeed/internal/conversation"
)

func TestSelectInputRequest(t *testing.T) {
	t.Parallel()

	reqs := []conversation.InputRequest{
		{ID: "other-thread", ThreadID: "th-2"},
		{ID: "wrong-ws", ThreadID: "th-1", WorkspaceID: "ws-9"},
		{ID: "first", ThreadID: "th-1", WorkspaceID: "ws-1"},
		{ID: "no-ws", ThreadID: "th-1"},
	}

	sel, ok := SelectInputRequest(reqs, "th-1", "ws-1")
	require.True(t, ok)
	require.Equal(t, "first", sel.Request.ID)
	require.Equal(t, 1, sel.Position)
	require.Equal(t, 2, sel.Total)

	sel, ok = SelectInputRequest(reqs, "th-1", "")
	require.True(t, ok)
	require.Equal(t, "wrong-ws", sel.Request.ID, "no active workspace matches any")
	require.Equal(t, 3, sel.Total)

	_, ok = SelectInputRequest(reqs, "th-3", "ws-1")
	require.False(t, ok)
}

func TestBuildAnswers(t *testing.T) {
	t.Parallel()

	req := conversation.InputRequest{
		ID: "req",
		Questions: []conversation.Question{
			{ID: "db", Options: []conversation.Option{{Label: "Postgres"}, {Description: "embedded sqlite"}}},
			{ID: "name"},
			{ID: "skipped"},
			{ID: "fallback", Options: []conversation.Option{{Label: "A"}, {Label: "B"}}},
			{Question: "no id"},
		},
	}

	got := BuildAnswers(req, map[string]Answer{
		"db":       {Option: 1, Note: " keep it small "},
		"name":     {Option: NoOption, Note: "threadfeed"},
		"fallback": {Option: 0},
	})

	require.Equal(t, map[string][]string{
		"db":       {"embedded sqlite", "user note: keep it small"},
		"name":     {"threadfeed"},
		"skipped":  {},
		"fallback": {"A"},
	}, got)
}
