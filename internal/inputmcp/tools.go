package inputmcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

func newRequestID() string {
	return "input-" + uuid.NewString()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("request_user_input",
			mcp.WithDescription("Ask the user one or more questions and wait for their answers"),
			mcp.WithString("thread_id",
				mcp.Description("Thread the questions belong to (defaults to the viewed thread)"),
			),
			mcp.WithArray("questions", mcp.Required(),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Stable question id used as the answer key",
						},
						"header": map[string]any{
							"type":        "string",
							"description": "Short label",
						},
						"question": map[string]any{
							"type":        "string",
							"description": "Full question text",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"label":       map[string]any{"type": "string"},
									"description": map[string]any{"type": "string"},
								},
							},
						},
					},
					"required": []string{"question"},
				})),
		),
		s.handleRequestUserInput,
	)
}

// parseQuestions converts the tool arguments. Questions without an id get
// q1, q2, … by position.
func parseQuestions(raw any) ([]conversation.Question, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("'questions' is not an array")
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("at least one question is required")
	}

	questions := make([]conversation.Question, 0, len(arr))
	for i, qRaw := range arr {
		qMap, ok := qRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("question %d is not an object", i)
		}
		text, _ := qMap["question"].(string)
		if text == "" {
			return nil, fmt.Errorf("question %d missing or empty 'question' field", i)
		}
		id, _ := qMap["id"].(string)
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		header, _ := qMap["header"].(string)

		var options []conversation.Option
		if optsRaw, ok := qMap["options"].([]any); ok {
			for j, oRaw := range optsRaw {
				oMap, ok := oRaw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("question %d option %d is not an object", i, j)
				}
				label, _ := oMap["label"].(string)
				desc, _ := oMap["description"].(string)
				if label == "" && desc == "" {
					return nil, fmt.Errorf("question %d option %d needs a label or description", i, j)
				}
				options = append(options, conversation.Option{Label: label, Description: desc})
			}
		}

		questions = append(questions, conversation.Question{
			ID:       id,
			Header:   header,
			Question: text,
			Options:  options,
		})
	}
	return questions, nil
}

// handleRequestUserInput queues the questions for the feed and blocks until
// the user answers or the call is canceled.
func (s *Server) handleRequestUserInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}
	raw, ok := args["questions"]
	if !ok {
		return mcp.NewToolResultError("missing 'questions' parameter"), nil
	}
	questions, err := parseQuestions(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	threadID := s.threadID
	if tid, ok := args["thread_id"].(string); ok && tid != "" {
		threadID = tid
	}

	req := conversation.InputRequest{
		ID:          s.newID(),
		ThreadID:    threadID,
		WorkspaceID: s.workspaceID,
		Questions:   questions,
	}
	resultCh := s.register(req.ID)
	defer s.forget(req.ID)

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return mcp.NewToolResultError("request cancelled"), nil
	}

	select {
	case answers := <-resultCh:
		data, err := json.Marshal(map[string]any{"answers": answers})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal answers: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case <-ctx.Done():
		return mcp.NewToolResultError("request cancelled"), nil
	}
}
