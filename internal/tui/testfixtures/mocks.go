// Package testfixtures provides mock collaborators and test utilities for
// TUI testing.
//
//   - MockHistory: controllable reach-top loader with call counting
//   - MockActions: records plan and input decisions
//   - MockInputs: input bridge backed by a channel
//
// All mocks are thread-safe and provide verification methods for assertions
// in tests.
package testfixtures

import (
	"context"
	"sync"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// MockHistory counts LoadOlder calls. When Gate is set, calls block until
// a value is sent on it.
type MockHistory struct {
	mu    sync.Mutex
	calls int

	More bool
	Err  error
	Gate chan struct{}
}

func NewMockHistory() *MockHistory {
	return &MockHistory{More: true}
}

// LoadOlder records the call and returns the configured result.
func (m *MockHistory) LoadOlder(ctx context.Context) (bool, error) {
	m.mu.Lock()
	m.calls++
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return m.More, m.Err
}

// Calls returns the number of LoadOlder calls.
func (m *MockHistory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// PlanDecision is one recorded plan action.
type PlanDecision struct {
	WorkspaceID string
	ThreadID    string
	ItemID      string
	Text        string
	Accepted    bool
}

// InputAnswer is one recorded input submission.
type InputAnswer struct {
	Request conversation.InputRequest
	Answers map[string][]string
}

// MockActions records decisions sent to the agent.
type MockActions struct {
	mu      sync.Mutex
	plans   []PlanDecision
	answers []InputAnswer

	Err error
}

func NewMockActions() *MockActions {
	return &MockActions{}
}

func (m *MockActions) AcceptPlan(_ context.Context, workspaceID, threadID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, PlanDecision{WorkspaceID: workspaceID, ThreadID: threadID, ItemID: itemID, Accepted: true})
	return m.Err
}

func (m *MockActions) SubmitPlanChanges(_ context.Context, workspaceID, threadID, itemID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, PlanDecision{WorkspaceID: workspaceID, ThreadID: threadID, ItemID: itemID, Text: text})
	return m.Err
}

func (m *MockActions) AnswerInput(_ context.Context, req conversation.InputRequest, answers map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, InputAnswer{Request: req, Answers: answers})
	return m.Err
}

// Plans returns the recorded plan decisions.
func (m *MockActions) Plans() []PlanDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlanDecision(nil), m.plans...)
}

// Answers returns the recorded input submissions.
func (m *MockActions) Answers() []InputAnswer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InputAnswer(nil), m.answers...)
}

// MockInputs is an input bridge that owns the ids it was given.
type MockInputs struct {
	mu       sync.Mutex
	ch       chan conversation.InputRequest
	owned    map[string]bool
	answered map[string]map[string][]string
}

func NewMockInputs() *MockInputs {
	return &MockInputs{
		ch:       make(chan conversation.InputRequest, 4),
		owned:    make(map[string]bool),
		answered: make(map[string]map[string][]string),
	}
}

// Raise queues req as if an agent had asked.
func (m *MockInputs) Raise(req conversation.InputRequest) {
	m.mu.Lock()
	m.owned[req.ID] = true
	m.mu.Unlock()
	m.ch <- req
}

func (m *MockInputs) Requests() <-chan conversation.InputRequest {
	return m.ch
}

func (m *MockInputs) Answer(requestID string, answers map[string][]string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.owned[requestID] {
		return false
	}
	delete(m.owned, requestID)
	m.answered[requestID] = answers
	return true
}

// Answered returns the answers given to requestID.
func (m *MockInputs) Answered(requestID string) (map[string][]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answered[requestID]
	return a, ok
}
