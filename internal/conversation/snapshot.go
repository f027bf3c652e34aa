package conversation

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is the full state a collaborator hands to the feed for one
// thread at one point in time.
type Snapshot struct {
	WorkspaceID string
	ThreadID    string
	Items       []Item
	Thinking    bool
	Streaming   bool
	// ProcessingStartedAt is the epoch-millisecond start of the current turn.
	ProcessingStartedAt *int64
	// LastDurationMs is the duration of the last finished turn.
	LastDurationMs *int64
	InputRequests  []InputRequest
}

// StartedAt returns the processing start time, if known.
func (s *Snapshot) StartedAt() (time.Time, bool) {
	if s.ProcessingStartedAt == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*s.ProcessingStartedAt), true
}

// LastDuration returns the duration of the last finished turn, if known.
func (s *Snapshot) LastDuration() (time.Duration, bool) {
	if s.LastDurationMs == nil {
		return 0, false
	}
	return time.Duration(*s.LastDurationMs) * time.Millisecond, true
}

// InputRequest is a question set the agent is waiting on.
type InputRequest struct {
	ID          string     `json:"id" yaml:"id"`
	ThreadID    string     `json:"threadId" yaml:"threadId"`
	WorkspaceID string     `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Question is one question inside an InputRequest.
type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Header   string   `json:"header,omitempty" yaml:"header,omitempty"`
	Question string   `json:"question" yaml:"question"`
	Options  []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// Option is a selectable answer.
type Option struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// envelope is the kind-tagged wire form of an Item.
type envelope struct {
	Kind string `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
	Rev  uint64 `json:"rev,omitempty" yaml:"rev,omitempty"`

	Role          Role     `json:"role,omitempty" yaml:"role,omitempty"`
	Text          string   `json:"text,omitempty" yaml:"text,omitempty"`
	Images        []string `json:"images,omitempty" yaml:"images,omitempty"`
	Model         string   `json:"model,omitempty" yaml:"model,omitempty"`
	ContextWindow int      `json:"contextWindow,omitempty" yaml:"contextWindow,omitempty"`

	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	ToolType   string       `json:"toolType,omitempty" yaml:"toolType,omitempty"`
	Title      string       `json:"title,omitempty" yaml:"title,omitempty"`
	Detail     string       `json:"detail,omitempty" yaml:"detail,omitempty"`
	Status     string       `json:"status,omitempty" yaml:"status,omitempty"`
	Output     string       `json:"output,omitempty" yaml:"output,omitempty"`
	Changes    []FileChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	DurationMs int64        `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`

	Entries []ExploreEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Diff    string         `json:"diff,omitempty" yaml:"diff,omitempty"`
	State   string         `json:"state,omitempty" yaml:"state,omitempty"`
}

func (e envelope) item() (Item, error) {
	switch e.Kind {
	case "message":
		return &Message{ID: e.ID, Role: e.Role, Text: e.Text, Images: e.Images, Model: e.Model, ContextWindow: e.ContextWindow, Rev: e.Rev}, nil
	case "reasoning":
		return &Reasoning{ID: e.ID, Summary: e.Summary, Content: e.Content, Rev: e.Rev}, nil
	case "tool":
		return &Tool{ID: e.ID, ToolType: e.ToolType, Title: e.Title, Detail: e.Detail, Status: e.Status, Output: e.Output, Changes: e.Changes, DurationMs: e.DurationMs, Rev: e.Rev}, nil
	case "explore":
		return &Explore{ID: e.ID, Status: e.Status, Entries: e.Entries, Rev: e.Rev}, nil
	case "diff":
		return &Diff{ID: e.ID, Title: e.Title, Diff: e.Diff, Status: e.Status, Rev: e.Rev}, nil
	case "review":
		return &Review{ID: e.ID, State: e.State, Text: e.Text, Rev: e.Rev}, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", e.Kind)
	}
}

// envelopeOf converts items back to their wire form.
type envelopeOf struct{}

func (envelopeOf) Message(m *Message) envelope {
	return envelope{Kind: "message", ID: m.ID, Rev: m.Rev, Role: m.Role, Text: m.Text, Images: m.Images, Model: m.Model, ContextWindow: m.ContextWindow}
}

func (envelopeOf) Reasoning(r *Reasoning) envelope {
	return envelope{Kind: "reasoning", ID: r.ID, Rev: r.Rev, Summary: r.Summary, Content: r.Content}
}

func (envelopeOf) Tool(t *Tool) envelope {
	return envelope{Kind: "tool", ID: t.ID, Rev: t.Rev, ToolType: t.ToolType, Title: t.Title, Detail: t.Detail, Status: t.Status, Output: t.Output, Changes: t.Changes, DurationMs: t.DurationMs}
}

func (envelopeOf) Explore(e *Explore) envelope {
	return envelope{Kind: "explore", ID: e.ID, Rev: e.Rev, Status: e.Status, Entries: e.Entries}
}

func (envelopeOf) Diff(d *Diff) envelope {
	return envelope{Kind: "diff", ID: d.ID, Rev: d.Rev, Title: d.Title, Diff: d.Diff, Status: d.Status}
}

func (envelopeOf) Review(r *Review) envelope {
	return envelope{Kind: "review", ID: r.ID, Rev: r.Rev, State: r.State, Text: r.Text}
}

type snapshotWire struct {
	WorkspaceID         string         `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`
	ThreadID            string         `json:"threadId" yaml:"threadId"`
	Thinking            bool           `json:"thinking,omitempty" yaml:"thinking,omitempty"`
	Streaming           bool           `json:"streaming,omitempty" yaml:"streaming,omitempty"`
	ProcessingStartedAt *int64         `json:"processingStartedAt,omitempty" yaml:"processingStartedAt,omitempty"`
	LastDurationMs      *int64         `json:"lastDurationMs,omitempty" yaml:"lastDurationMs,omitempty"`
	InputRequests       []InputRequest `json:"inputRequests,omitempty" yaml:"inputRequests,omitempty"`
	Items               []envelope     `json:"items" yaml:"items"`
}

func (s *Snapshot) toWire() snapshotWire {
	w := snapshotWire{
		WorkspaceID:         s.WorkspaceID,
		ThreadID:            s.ThreadID,
		Thinking:            s.Thinking,
		Streaming:           s.Streaming,
		ProcessingStartedAt: s.ProcessingStartedAt,
		LastDurationMs:      s.LastDurationMs,
		InputRequests:       s.InputRequests,
		Items:               make([]envelope, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		w.Items = append(w.Items, Visit[envelope](it, envelopeOf{}))
	}
	return w
}

func (s *Snapshot) fromWire(w snapshotWire) error {
	items := make([]Item, 0, len(w.Items))
	for i, e := range w.Items {
		it, err := e.item()
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, it)
	}
	*s = Snapshot{
		WorkspaceID:         w.WorkspaceID,
		ThreadID:            w.ThreadID,
		Items:               items,
		Thinking:            w.Thinking,
		Streaming:           w.Streaming,
		ProcessingStartedAt: w.ProcessingStartedAt,
		LastDurationMs:      w.LastDurationMs,
		InputRequests:       w.InputRequests,
	}
	return nil
}

// MarshalJSON encodes items with a kind discriminator.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toWire())
}

// UnmarshalJSON decodes a kind-tagged snapshot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return s.fromWire(w)
}

// MarshalYAML encodes items with a kind discriminator.
func (s Snapshot) MarshalYAML() (interface{}, error) {
	return s.toWire(), nil
}

// UnmarshalYAML decodes a kind-tagged snapshot.
func (s *Snapshot) UnmarshalYAML(value *yaml.Node) error {
	var w snapshotWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	return s.fromWire(w)
}
