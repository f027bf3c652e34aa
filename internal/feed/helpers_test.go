package feed

import (
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

func userMsg(id, text string) *conversation.Message {
	return &conversation.Message{ID: id, Role: conversation.RoleUser, Text: text}
}

func assistantMsg(id, text string) *conversation.Message {
	return &conversation.Message{ID: id, Role: conversation.RoleAssistant, Text: text}
}

func reasoning(id, summary, content string) *conversation.Reasoning {
	return &conversation.Reasoning{ID: id, Summary: summary, Content: content}
}

func tool(id, status string) *conversation.Tool {
	return &conversation.Tool{ID: id, ToolType: conversation.ToolCommandExecution, Title: "ls", Status: status}
}

func planTool(id, status, output string) *conversation.Tool {
	return &conversation.Tool{ID: id, ToolType: conversation.ToolPlan, Title: "Plan", Status: status, Output: output}
}

func explore(id, status string, labels ...string) *conversation.Explore {
	e := &conversation.Explore{ID: id, Status: status}
	for _, l := range labels {
		e.Entries = append(e.Entries, conversation.ExploreEntry{Kind: "read", Label: l})
	}
	return e
}

func longText(n int) string {
	return strings.Repeat("x", n)
}
