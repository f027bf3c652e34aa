package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// Drawable components render to a screen rectangle
type Drawable interface {
	Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor
}

// History loads older items of the active thread. The result arrives as a
// new snapshot.
type History interface {
	LoadOlder(ctx context.Context) (more bool, err error)
}

// ActionSink receives the user's decisions for the agent.
type ActionSink interface {
	AcceptPlan(ctx context.Context, workspaceID, threadID, itemID string) error
	SubmitPlanChanges(ctx context.Context, workspaceID, threadID, itemID, text string) error
	AnswerInput(ctx context.Context, req conversation.InputRequest, answers map[string][]string) error
}

// InputBridge carries input requests raised outside the snapshot stream.
type InputBridge interface {
	Requests() <-chan conversation.InputRequest
	// Answer resolves a request it raised; false means the id is not its own.
	Answer(requestID string, answers map[string][]string) bool
}
