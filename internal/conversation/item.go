// Package conversation defines the timeline events rendered by the feed.
//
// Item is a closed sum type. The only implementations are the pointer types
// declared in this file; callers dispatch over them with Visit, which forces
// every variant to be handled at compile time.
package conversation

import "time"

// Kind identifies an Item variant.
type Kind int

const (
	KindMessage Kind = iota
	KindReasoning
	KindTool
	KindExplore
	KindDiff
	KindReview
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindReasoning:
		return "reasoning"
	case KindTool:
		return "tool"
	case KindExplore:
		return "explore"
	case KindDiff:
		return "diff"
	case KindReview:
		return "review"
	default:
		return "unknown"
	}
}

// Item is one atomic timeline event.
type Item interface {
	// ItemID returns the id, unique within one snapshot.
	ItemID() string
	Kind() Kind
	// Revision returns the stamp that changes whenever the item's content
	// changes. Zero means unstamped.
	Revision() uint64
	sealed()
}

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a user or assistant chat message.
type Message struct {
	ID            string   `json:"id" yaml:"id"`
	Role          Role     `json:"role" yaml:"role"`
	Text          string   `json:"text" yaml:"text"`
	Images        []string `json:"images,omitempty" yaml:"images,omitempty"`
	Model         string   `json:"model,omitempty" yaml:"model,omitempty"`
	ContextWindow int      `json:"contextWindow,omitempty" yaml:"contextWindow,omitempty"`
	Rev           uint64   `json:"rev,omitempty" yaml:"rev,omitempty"`
}

// Reasoning is a reasoning trace with a summary and raw content.
type Reasoning struct {
	ID      string `json:"id" yaml:"id"`
	Summary string `json:"summary" yaml:"summary"`
	Content string `json:"content" yaml:"content"`
	Rev     uint64 `json:"rev,omitempty" yaml:"rev,omitempty"`
}

// Tool types with dedicated rendering. ToolType is open; other values render
// with the generic tool row.
const (
	ToolCommandExecution = "commandExecution"
	ToolFileChange       = "fileChange"
	ToolWebSearch        = "webSearch"
	ToolImageView        = "imageView"
	ToolMCPCall          = "mcpToolCall"
	ToolPlan             = "plan"
	ToolSearch           = "search"
)

// FileChange is one file touched by a fileChange tool call. Diff is a
// unified diff; when it is empty Before and After may carry full contents.
type FileChange struct {
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Diff   string `json:"diff,omitempty" yaml:"diff,omitempty"`
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
}

// Tool is a tool invocation by the agent.
type Tool struct {
	ID         string       `json:"id" yaml:"id"`
	ToolType   string       `json:"toolType" yaml:"toolType"`
	Title      string       `json:"title" yaml:"title"`
	Detail     string       `json:"detail,omitempty" yaml:"detail,omitempty"`
	Status     string       `json:"status,omitempty" yaml:"status,omitempty"`
	Output     string       `json:"output,omitempty" yaml:"output,omitempty"`
	Changes    []FileChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	DurationMs int64        `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
	Rev        uint64       `json:"rev,omitempty" yaml:"rev,omitempty"`
}

// Duration returns the reported duration, zero when unknown.
func (t *Tool) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// Explore statuses.
const (
	ExploreExploring = "exploring"
	ExploreExplored  = "explored"
)

// ExploreEntry is one search/read step of an exploration phase.
type ExploreEntry struct {
	Kind   string `json:"kind" yaml:"kind"`
	Label  string `json:"label" yaml:"label"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Explore is an autonomous exploration phase.
type Explore struct {
	ID      string         `json:"id" yaml:"id"`
	Status  string         `json:"status" yaml:"status"`
	Entries []ExploreEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Rev     uint64         `json:"rev,omitempty" yaml:"rev,omitempty"`

	// SourceIDs lists the ids folded into this explore when the feed merges
	// consecutive explore items. Empty for items from a snapshot.
	SourceIDs []string `json:"-" yaml:"-"`
}

// Diff is a standalone diff event.
type Diff struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Diff   string `json:"diff" yaml:"diff"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Rev    uint64 `json:"rev,omitempty" yaml:"rev,omitempty"`
}

// Review states.
const (
	ReviewStarted   = "started"
	ReviewCompleted = "completed"
)

// Review marks the start or end of a code review.
type Review struct {
	ID    string `json:"id" yaml:"id"`
	State string `json:"state" yaml:"state"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Rev   uint64 `json:"rev,omitempty" yaml:"rev,omitempty"`
}

func (m *Message) ItemID() string   { return m.ID }
func (m *Message) Kind() Kind       { return KindMessage }
func (m *Message) Revision() uint64 { return m.Rev }
func (*Message) sealed()            {}

func (r *Reasoning) ItemID() string   { return r.ID }
func (r *Reasoning) Kind() Kind       { return KindReasoning }
func (r *Reasoning) Revision() uint64 { return r.Rev }
func (*Reasoning) sealed()            {}

func (t *Tool) ItemID() string   { return t.ID }
func (t *Tool) Kind() Kind       { return KindTool }
func (t *Tool) Revision() uint64 { return t.Rev }
func (*Tool) sealed()            {}

func (e *Explore) ItemID() string   { return e.ID }
func (e *Explore) Kind() Kind       { return KindExplore }
func (e *Explore) Revision() uint64 { return e.Rev }
func (*Explore) sealed()            {}

func (d *Diff) ItemID() string   { return d.ID }
func (d *Diff) Kind() Kind       { return KindDiff }
func (d *Diff) Revision() uint64 { return d.Rev }
func (*Diff) sealed()            {}

func (r *Review) ItemID() string   { return r.ID }
func (r *Review) Kind() Kind       { return KindReview }
func (r *Review) Revision() uint64 { return r.Rev }
func (*Review) sealed()            {}

// Visitor handles every Item variant. Adding a variant adds a method here,
// so every implementation stops compiling until it handles the new case.
type Visitor[T any] interface {
	Message(*Message) T
	Reasoning(*Reasoning) T
	Tool(*Tool) T
	Explore(*Explore) T
	Diff(*Diff) T
	Review(*Review) T
}

// Visit dispatches item to the matching Visitor method.
func Visit[T any](item Item, v Visitor[T]) T {
	switch it := item.(type) {
	case *Message:
		return v.Message(it)
	case *Reasoning:
		return v.Reasoning(it)
	case *Tool:
		return v.Tool(it)
	case *Explore:
		return v.Explore(it)
	case *Diff:
		return v.Diff(it)
	case *Review:
		return v.Review(it)
	}
	// Item is sealed; a nil interface is the only way to get here.
	var zero T
	return zero
}

// IsUserMessage reports whether item is a message authored by the user.
func IsUserMessage(item Item) bool {
	m, ok := item.(*Message)
	return ok && m.Role == RoleUser
}

// IsPlan reports whether item is a plan tool call.
func IsPlan(item Item) bool {
	t, ok := item.(*Tool)
	return ok && t.ToolType == ToolPlan
}
