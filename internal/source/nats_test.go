package source

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

func startTransport(t *testing.T) (*Transport, *nats.Conn) {
	t.Helper()

	ns, err := StartEmbedded(t.TempDir())
	require.NoError(t, err)
	nc, err := ConnectInProcess(ns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown(nc, ns) })

	tr, err := NewTransport(context.Background(), nc, "threadfeed")
	require.NoError(t, err)
	return tr, nc
}

func snapshot(thread string, texts ...string) *conversation.Snapshot {
	snap := &conversation.Snapshot{WorkspaceID: "ws", ThreadID: thread}
	for i, text := range texts {
		snap.Items = append(snap.Items, &conversation.Message{
			ID:   string(rune('a' + i)),
			Role: conversation.RoleAssistant,
			Text: text,
		})
	}
	return snap
}

func TestSubjects(t *testing.T) {
	t.Parallel()

	require.Equal(t, "threadfeed.ws1.t1.snapshot", SnapshotSubject("threadfeed", "ws1", "t1"))
	require.Equal(t, "threadfeed._.t_1.action", ActionSubject("threadfeed", "", "t.1"))
}

func TestTransport_WatchStartsFromLastSnapshot(t *testing.T) {
	t.Parallel()

	tr, _ := startTransport(t)
	ctx := context.Background()

	require.NoError(t, tr.PublishSnapshot(ctx, snapshot("t1", "first")))
	require.NoError(t, tr.PublishSnapshot(ctx, snapshot("t1", "first", "second")))
	require.NoError(t, tr.PublishSnapshot(ctx, snapshot("t2", "other")))

	ch, stop, err := tr.Watch(ctx, "ws", "t1")
	require.NoError(t, err)
	defer stop()

	snap := receive(t, ch)
	require.Equal(t, "t1", snap.ThreadID)
	require.Len(t, snap.Items, 2)
	require.NotZero(t, snap.Items[0].Revision(), "decoded snapshots are stamped")

	require.NoError(t, tr.PublishSnapshot(ctx, snapshot("t1", "first", "second", "third")))
	require.Eventually(t, func() bool {
		select {
		case snap := <-ch:
			return len(snap.Items) == 3
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
}

func TestTransport_Actions(t *testing.T) {
	t.Parallel()

	tr, nc := startTransport(t)
	ctx := context.Background()

	got := make(chan Action, 4)
	sub, err := tr.SubscribeActions("ws", "t1", func(a Action) { got <- a })
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()
	require.NoError(t, nc.Flush())

	require.NoError(t, tr.AcceptPlan(ctx, "ws", "t1", "plan-1"))
	require.NoError(t, tr.SubmitPlanChanges(ctx, "ws", "t1", "plan-1", "add tests"))
	require.NoError(t, tr.AnswerInput(ctx, conversation.InputRequest{ID: "req-1", WorkspaceID: "ws", ThreadID: "t1"},
		map[string][]string{"q1": {"Postgres"}}))

	var actions []Action
	for len(actions) < 3 {
		select {
		case a := <-got:
			actions = append(actions, a)
		case <-time.After(3 * time.Second):
			t.Fatalf("received %d of 3 actions", len(actions))
		}
	}

	require.Equal(t, ActionPlanAccept, actions[0].Kind)
	require.Equal(t, "plan-1", actions[0].ItemID)
	require.Equal(t, ActionPlanChanges, actions[1].Kind)
	require.Equal(t, "add tests", actions[1].Text)
	require.Equal(t, ActionInputAnswer, actions[2].Kind)
	require.Equal(t, "req-1", actions[2].RequestID)
	require.Equal(t, []string{"Postgres"}, actions[2].Answers["q1"])
}
