package inputmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(mcp.TextContent); ok {
		return text.Text
	}
	return ""
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "request_user_input",
			Arguments: args,
		},
	}
}

func TestServerStartStop(t *testing.T) {
	s := New("ws", "t1")
	port, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Greater(t, port, 0)
	require.Equal(t, fmt.Sprintf("http://localhost:%d/mcp", port), s.URL())

	_, err = s.Start(context.Background())
	require.Error(t, err, "second start fails")

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "stopping twice is a no-op")
}

func TestRequestUserInput_Answered(t *testing.T) {
	t.Parallel()

	s := New("ws", "t1")
	s.newID = func() string { return "req-1" }

	args := map[string]any{
		"questions": []any{
			map[string]any{
				"question": "Which database?",
				"header":   "Storage",
				"options": []any{
					map[string]any{"label": "Postgres"},
					map[string]any{"label": "SQLite", "description": "embedded"},
				},
			},
			map[string]any{"id": "notes", "question": "Anything else?"},
		},
	}

	go func() {
		req := <-s.Requests()
		assert.Equal(t, "req-1", req.ID)
		assert.Equal(t, "t1", req.ThreadID)
		assert.Equal(t, "ws", req.WorkspaceID)
		if assert.Len(t, req.Questions, 2) {
			assert.Equal(t, "q1", req.Questions[0].ID)
			assert.Equal(t, "notes", req.Questions[1].ID)
			assert.Equal(t, "embedded", req.Questions[0].Options[1].Description)
		}
		assert.Equal(t, 1, s.Pending())
		assert.True(t, s.Answer(req.ID, map[string][]string{"q1": {"SQLite"}, "notes": {}}))
	}()

	result, err := s.handleRequestUserInput(context.Background(), callRequest(args))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(result))

	var payload struct {
		Answers map[string][]string `json:"answers"`
	}
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &payload))
	require.Equal(t, []string{"SQLite"}, payload.Answers["q1"])
	require.Empty(t, payload.Answers["notes"])
	require.Zero(t, s.Pending())
}

func TestRequestUserInput_ThreadOverride(t *testing.T) {
	t.Parallel()

	s := New("ws", "t1")
	go func() {
		req := <-s.Requests()
		assert.Equal(t, "t9", req.ThreadID)
		s.Answer(req.ID, nil)
	}()

	result, err := s.handleRequestUserInput(context.Background(), callRequest(map[string]any{
		"thread_id": "t9",
		"questions": []any{map[string]any{"question": "ok?"}},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestRequestUserInput_Cancelled(t *testing.T) {
	t.Parallel()

	s := New("ws", "t1")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	go func() { <-s.Requests() }()

	result, err := s.handleRequestUserInput(ctx, callRequest(map[string]any{
		"questions": []any{map[string]any{"question": "ok?"}},
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "request cancelled", extractText(result))
	require.Zero(t, s.Pending(), "cancelled requests are forgotten")
}

func TestRequestUserInput_InvalidArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "no arguments", args: nil, want: "no arguments provided"},
		{name: "missing questions", args: map[string]any{}, want: "missing 'questions' parameter"},
		{name: "not an array", args: map[string]any{"questions": "x"}, want: "'questions' is not an array"},
		{name: "empty", args: map[string]any{"questions": []any{}}, want: "at least one question is required"},
		{name: "blank question", args: map[string]any{"questions": []any{map[string]any{"question": ""}}}, want: "question 0 missing or empty 'question' field"},
		{
			name: "empty option",
			args: map[string]any{"questions": []any{map[string]any{
				"question": "pick",
				"options":  []any{map[string]any{}},
			}}},
			want: "question 0 option 0 needs a label or description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New("ws", "t1")
			result, err := s.handleRequestUserInput(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			require.True(t, result.IsError)
			require.Equal(t, tt.want, extractText(result))
		})
	}
}

func TestAnswerUnknownRequest(t *testing.T) {
	t.Parallel()

	s := New("ws", "t1")
	require.False(t, s.Answer("nope", nil))
}
