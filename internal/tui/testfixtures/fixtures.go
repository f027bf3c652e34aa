package testfixtures

import (
	"fmt"
	"strings"
	"time"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// Fixed test values
const (
	FixedWorkspace = "ws-1"
	FixedThread    = "th-1"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

func User(id, text string) *conversation.Message {
	return &conversation.Message{ID: id, Role: conversation.RoleUser, Text: text}
}

func Assistant(id, text string) *conversation.Message {
	return &conversation.Message{ID: id, Role: conversation.RoleAssistant, Text: text}
}

func Reasoning(id, summary, content string) *conversation.Reasoning {
	return &conversation.Reasoning{ID: id, Summary: summary, Content: content}
}

func Command(id, title, status, output string) *conversation.Tool {
	return &conversation.Tool{
		ID:       id,
		ToolType: conversation.ToolCommandExecution,
		Title:    title,
		Status:   status,
		Output:   output,
	}
}

func Plan(id, output, status string) *conversation.Tool {
	return &conversation.Tool{
		ID:       id,
		ToolType: conversation.ToolPlan,
		Title:    "Plan",
		Status:   status,
		Output:   output,
	}
}

// Lines returns n numbered lines of text.
func Lines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

// Chat returns n alternating user and assistant messages, each a few rows
// tall.
func Chat(n int) []conversation.Item {
	items := make([]conversation.Item, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("m%d", i)
		if i%2 == 0 {
			items = append(items, User(id, fmt.Sprintf("question %d\nwith a second line", i)))
		} else {
			items = append(items, Assistant(id, fmt.Sprintf("answer %d", i)))
		}
	}
	conversation.Stamp(items)
	return items
}

// Snapshot wraps items in a snapshot of the fixed thread.
func Snapshot(items ...conversation.Item) *conversation.Snapshot {
	conversation.Stamp(items)
	return &conversation.Snapshot{
		WorkspaceID: FixedWorkspace,
		ThreadID:    FixedThread,
		Items:       items,
	}
}

// InputRequest returns a one-question request for the fixed thread.
func InputRequest(id string) conversation.InputRequest {
	return conversation.InputRequest{
		ID:          id,
		ThreadID:    FixedThread,
		WorkspaceID: FixedWorkspace,
		Questions: []conversation.Question{{
			ID:       "q1",
			Header:   "Storage",
			Question: "Which database?",
			Options: []conversation.Option{
				{Label: "Postgres"},
				{Label: "SQLite", Description: "embedded"},
			},
		}},
	}
}
