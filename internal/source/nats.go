package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/logger"
)

const streamName = "threadfeed_snapshots"

// Action kinds published by the viewer.
const (
	ActionPlanAccept  = "plan_accept"
	ActionPlanChanges = "plan_changes"
	ActionInputAnswer = "input_answer"
)

// Action is a user decision sent back to the agent.
type Action struct {
	Kind        string              `json:"kind"`
	WorkspaceID string              `json:"workspaceId,omitempty"`
	ThreadID    string              `json:"threadId"`
	ItemID      string              `json:"itemId,omitempty"`
	Text        string              `json:"text,omitempty"`
	RequestID   string              `json:"requestId,omitempty"`
	Answers     map[string][]string `json:"answers,omitempty"`
}

// StartEmbedded starts an in-process NATS server with JetStream enabled,
// storing stream data under dataDir.
func StartEmbedded(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	opts := &server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(4 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}
	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess connects to an embedded server without network ports.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	nc, err := nats.Connect("", nats.InProcessServer(ns), nats.Name("threadfeed"))
	if err != nil {
		return nil, fmt.Errorf("connecting in-process: %w", err)
	}
	return nc, nil
}

// Connect dials a NATS server by URL.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("threadfeed"))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return nc, nil
}

// Shutdown drains nc and stops ns. Either may be nil.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drained := make(chan error, 1)
		go func() { drained <- nc.Drain() }()
		select {
		case err := <-drained:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			nc.Close()
		}
	}
	if ns != nil {
		ns.Shutdown()
		done := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			return errors.New("nats server shutdown timed out")
		}
	}
	return nil
}

// token makes an id safe to use as a single subject token.
func token(id string) string {
	if id == "" {
		return "_"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(id)
}

// SnapshotSubject returns the subject snapshots of one thread are published
// on, e.g. "threadfeed.ws1.t1.snapshot".
func SnapshotSubject(prefix, workspaceID, threadID string) string {
	return fmt.Sprintf("%s.%s.%s.snapshot", prefix, token(workspaceID), token(threadID))
}

// ActionSubject returns the subject viewer actions for one thread go to.
func ActionSubject(prefix, workspaceID, threadID string) string {
	return fmt.Sprintf("%s.%s.%s.action", prefix, token(workspaceID), token(threadID))
}

// SetupStream creates or updates the snapshot stream. Only the latest
// snapshot per thread is retained.
func SetupStream(ctx context.Context, js jetstream.JetStream, prefix string) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              streamName,
		Subjects:          []string{prefix + ".*.*.snapshot"},
		Storage:           jetstream.FileStorage,
		MaxMsgsPerSubject: 1,
		MaxAge:            7 * 24 * time.Hour,
	})
}

// Transport carries snapshots and actions over NATS.
type Transport struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	prefix string
}

// NewTransport prepares the snapshot stream on nc.
func NewTransport(ctx context.Context, nc *nats.Conn, prefix string) (*Transport, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	stream, err := SetupStream(ctx, js, prefix)
	if err != nil {
		return nil, fmt.Errorf("setting up stream: %w", err)
	}
	return &Transport{nc: nc, js: js, stream: stream, prefix: prefix}, nil
}

// PublishSnapshot publishes snap on its thread's subject.
func (t *Transport) PublishSnapshot(ctx context.Context, snap *conversation.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	subject := SnapshotSubject(t.prefix, snap.WorkspaceID, snap.ThreadID)
	if _, err := t.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	logger.Debug("Published snapshot to %s (%d items)", subject, len(snap.Items))
	return nil
}

// Watch streams snapshots of one thread, starting from the last one
// published. The channel keeps only the latest undelivered snapshot. Call
// the returned stop function to end the subscription.
func (t *Transport) Watch(ctx context.Context, workspaceID, threadID string) (<-chan *conversation.Snapshot, func(), error) {
	subject := SnapshotSubject(t.prefix, workspaceID, threadID)
	cons, err := t.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subject},
		DeliverPolicy:  jetstream.DeliverLastPerSubjectPolicy,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating consumer for %s: %w", subject, err)
	}

	out := make(chan *conversation.Snapshot, 1)
	cc, err := cons.Consume(func(msg jetstream.Msg) {
		snap, err := conversation.DecodeSnapshot(msg.Data(), conversation.FormatJSON)
		if err != nil {
			logger.Warn("Skipping malformed snapshot on %s: %v", msg.Subject(), err)
			return
		}
		for {
			select {
			case out <- snap:
				return
			default:
			}
			select {
			case <-out:
			default:
			}
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("consuming %s: %w", subject, err)
	}
	return out, cc.Stop, nil
}

// PublishAction sends a viewer action on its thread's action subject.
func (t *Transport) PublishAction(a Action) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding action: %w", err)
	}
	if err := t.nc.Publish(ActionSubject(t.prefix, a.WorkspaceID, a.ThreadID), data); err != nil {
		return fmt.Errorf("publishing action: %w", err)
	}
	return nil
}

// SubscribeActions calls fn for every action published for a thread.
func (t *Transport) SubscribeActions(workspaceID, threadID string, fn func(Action)) (*nats.Subscription, error) {
	return t.nc.Subscribe(ActionSubject(t.prefix, workspaceID, threadID), func(msg *nats.Msg) {
		var a Action
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			logger.Warn("Skipping malformed action: %v", err)
			return
		}
		fn(a)
	})
}

// AcceptPlan publishes a plan acceptance.
func (t *Transport) AcceptPlan(_ context.Context, workspaceID, threadID, itemID string) error {
	return t.PublishAction(Action{Kind: ActionPlanAccept, WorkspaceID: workspaceID, ThreadID: threadID, ItemID: itemID})
}

// SubmitPlanChanges publishes requested plan changes.
func (t *Transport) SubmitPlanChanges(_ context.Context, workspaceID, threadID, itemID, text string) error {
	return t.PublishAction(Action{Kind: ActionPlanChanges, WorkspaceID: workspaceID, ThreadID: threadID, ItemID: itemID, Text: text})
}

// AnswerInput publishes answers to an input request.
func (t *Transport) AnswerInput(_ context.Context, req conversation.InputRequest, answers map[string][]string) error {
	return t.PublishAction(Action{
		Kind:        ActionInputAnswer,
		WorkspaceID: req.WorkspaceID,
		ThreadID:    req.ThreadID,
		RequestID:   req.ID,
		Answers:     answers,
	})
}
