package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threadfeed/threadfeed/internal/conversation"
)

func TestDerivePlanFollowUp(t *testing.T) {
	t.Parallel()

	dismissed := NewPlanDismissals()
	dismissed.Dismiss("th-1", "p1")

	tests := []struct {
		name string
		in   PlanInput
		want bool
	}{
		{
			name: "completed plan shows",
			in:   PlanInput{ThreadID: "th-1", Items: []conversation.Item{userMsg("m1", "plan it"), planTool("p1", "completed", "1. a")}},
			want: true,
		},
		{
			name: "no plan",
			in:   PlanInput{ThreadID: "th-1", Items: []conversation.Item{userMsg("m1", "hi")}},
		},
		{
			name: "blank output",
			in:   PlanInput{ThreadID: "th-1", Items: []conversation.Item{planTool("p1", "completed", "  \n")}},
		},
		{
			name: "still streaming while thinking",
			in:   PlanInput{ThreadID: "th-1", Thinking: true, Items: []conversation.Item{planTool("p1", "in_progress", "1. a")}},
		},
		{
			name: "completed while thinking",
			in:   PlanInput{ThreadID: "th-1", Thinking: true, Items: []conversation.Item{planTool("p1", "completed", "1. a")}},
			want: true,
		},
		{
			name: "user replied after the plan",
			in:   PlanInput{ThreadID: "th-1", Items: []conversation.Item{planTool("p1", "completed", "1. a"), userMsg("m2", "go")}},
		},
		{
			name: "assistant message after the plan",
			in:   PlanInput{ThreadID: "th-1", Items: []conversation.Item{planTool("p1", "completed", "1. a"), assistantMsg("m2", "ready")}},
			want: true,
		},
		{
			name: "failed",
			in:   PlanInput{ThreadID: "th-1", Items: []conversation.Item{planTool("p1", "failed", "1. a")}},
		},
		{
			name: "input request pending",
			in:   PlanInput{ThreadID: "th-1", InputPending: true, Items: []conversation.Item{planTool("p1", "completed", "1. a")}},
		},
		{
			name: "dismissed",
			in:   PlanInput{ThreadID: "th-1", Dismissals: dismissed, Items: []conversation.Item{planTool("p1", "completed", "1. a")}},
		},
		{
			name: "dismissed in another thread",
			in:   PlanInput{ThreadID: "th-2", Dismissals: dismissed, Items: []conversation.Item{planTool("p1", "completed", "1. a")}},
			want: true,
		},
		{
			name: "only the latest plan counts",
			in: PlanInput{ThreadID: "th-1", Items: []conversation.Item{
				planTool("p0", "completed", "old"),
				planTool("p1", "failed", "new"),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok := DerivePlanFollowUp(tt.in)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestDerivePlanFollowUp_DismissHidesUntilNewPlan(t *testing.T) {
	t.Parallel()

	d := NewPlanDismissals()
	items := []conversation.Item{planTool("p1", "completed", "  1. a\n")}

	fu, ok := DerivePlanFollowUp(PlanInput{ThreadID: "th", Items: items, Dismissals: d})
	require.True(t, ok)
	require.Equal(t, "p1", fu.ItemID)
	require.Equal(t, "1. a", fu.Plan)
	require.Equal(t, conversation.StatusCompleted, fu.Status)

	d.Dismiss("th", fu.ItemID)
	_, ok = DerivePlanFollowUp(PlanInput{ThreadID: "th", Items: items, Dismissals: d})
	require.False(t, ok)

	items = append(items, assistantMsg("m", "revised"), planTool("p2", "completed", "2. b"))
	fu, ok = DerivePlanFollowUp(PlanInput{ThreadID: "th", Items: items, Dismissals: d})
	require.True(t, ok)
	require.Equal(t, "p2", fu.ItemID)
}
