package feed

import (
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// PlanFollowUp is the prompt shown after the agent proposes a plan.
type PlanFollowUp struct {
	ItemID string
	Plan   string
	Status conversation.Status
}

// PlanInput is everything the plan follow-up depends on.
type PlanInput struct {
	ThreadID     string
	Items        []conversation.Item
	Thinking     bool
	InputPending bool
	Dismissals   *PlanDismissals
}

// DerivePlanFollowUp returns the follow-up for the most recent plan tool, if
// it should be shown.
func DerivePlanFollowUp(in PlanInput) (PlanFollowUp, bool) {
	idx := -1
	var plan *conversation.Tool
	for i := len(in.Items) - 1; i >= 0; i-- {
		if t, ok := in.Items[i].(*conversation.Tool); ok && t.ToolType == conversation.ToolPlan {
			idx, plan = i, t
			break
		}
	}
	if plan == nil {
		return PlanFollowUp{}, false
	}

	text := strings.TrimSpace(plan.Output)
	if text == "" {
		return PlanFollowUp{}, false
	}

	status := conversation.NormalizeStatus(plan.Status)
	// Partial plan text streams in while the agent thinks.
	if in.Thinking && status != conversation.StatusCompleted {
		return PlanFollowUp{}, false
	}
	for _, it := range in.Items[idx+1:] {
		if conversation.IsUserMessage(it) {
			return PlanFollowUp{}, false
		}
	}
	if status == conversation.StatusFailed || in.InputPending {
		return PlanFollowUp{}, false
	}
	if in.Dismissals.Dismissed(in.ThreadID, plan.ID) {
		return PlanFollowUp{}, false
	}
	return PlanFollowUp{ItemID: plan.ID, Plan: text, Status: status}, true
}

// PlanDismissals remembers, per thread, which plan items the user already
// acted on.
type PlanDismissals struct {
	byThread map[string]map[string]bool
}

// NewPlanDismissals returns an empty set.
func NewPlanDismissals() *PlanDismissals {
	return &PlanDismissals{byThread: make(map[string]map[string]bool)}
}

// Dismiss hides the follow-up for itemID in threadID.
func (d *PlanDismissals) Dismiss(threadID, itemID string) {
	m, ok := d.byThread[threadID]
	if !ok {
		m = make(map[string]bool)
		d.byThread[threadID] = m
	}
	m[itemID] = true
}

// Dismissed reports whether itemID was dismissed in threadID. A nil set
// dismisses nothing.
func (d *PlanDismissals) Dismissed(threadID, itemID string) bool {
	if d == nil {
		return false
	}
	return d.byThread[threadID][itemID]
}
