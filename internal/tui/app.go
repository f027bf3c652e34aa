package tui

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

const (
	headerHeight = 1
	footerHeight = 1
)

// AppOptions wires the viewer to its collaborators. Only Snapshots is
// required.
type AppOptions struct {
	Title      string
	Feed       feed.Options
	LineHeight int
	Snapshots  <-chan *conversation.Snapshot
	History    History
	Actions    ActionSink
	Inputs     InputBridge
}

type snapshotMsg struct {
	snap *conversation.Snapshot
}

type inputRequestMsg struct {
	req conversation.InputRequest
}

// App is the full-screen viewer: a header, the feed, and a hint footer.
type App struct {
	opts AppOptions
	feed *Feed
	keys keyMap

	snapshot *conversation.Snapshot
	requests []conversation.InputRequest // raised through the input bridge

	width    int
	height   int
	quitting bool
}

// NewApp creates the viewer.
func NewApp(ctx context.Context, opts AppOptions) *App {
	a := &App{opts: opts, keys: defaultKeyMap()}
	a.feed = NewFeed(ctx, opts.Feed, opts.LineHeight, a.handlers())
	return a
}

func (a *App) handlers() Handlers {
	var h Handlers
	if a.opts.History != nil {
		h.ReachTop = a.opts.History.LoadOlder
	}
	if a.opts.Actions != nil {
		h.PlanAccept = a.opts.Actions.AcceptPlan
		h.PlanSubmitChanges = a.opts.Actions.SubmitPlanChanges
	}
	h.UserInputSubmit = a.submitInput
	return h
}

// submitInput answers through the bridge that raised the request, falling
// back to the action sink for requests that came with a snapshot.
func (a *App) submitInput(ctx context.Context, req conversation.InputRequest, answers map[string][]string) error {
	if a.opts.Inputs != nil && a.opts.Inputs.Answer(req.ID, answers) {
		return nil
	}
	if a.opts.Actions != nil {
		return a.opts.Actions.AnswerInput(ctx, req, answers)
	}
	return fmt.Errorf("no receiver for input request %s", req.ID)
}

// Feed returns the feed component.
func (a *App) Feed() *Feed { return a.feed }

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.waitForSnapshots(),
		a.waitForInputs(),
	)
}

// waitForSnapshots delivers the next snapshot. It is re-issued after every
// delivery.
func (a *App) waitForSnapshots() tea.Cmd {
	ch := a.opts.Snapshots
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func (a *App) waitForInputs() tea.Cmd {
	if a.opts.Inputs == nil {
		return nil
	}
	ch := a.opts.Inputs.Requests()
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return inputRequestMsg{req: req}
	}
}

// props merges the snapshot with bridge-raised requests. Ids already in
// the snapshot win.
func (a *App) props() Props {
	var p Props
	if a.snapshot != nil {
		p = PropsFromSnapshot(a.snapshot)
	}
	seen := make(map[string]bool, len(p.InputRequests))
	merged := append([]conversation.InputRequest(nil), p.InputRequests...)
	for _, r := range merged {
		seen[r.ID] = true
	}
	for _, r := range a.requests {
		if !seen[r.ID] {
			merged = append(merged, r)
			seen[r.ID] = true
		}
	}
	p.InputRequests = merged
	return p
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.feed.SetSize(a.width, max(1, a.height-headerHeight-footerHeight))

	case snapshotMsg:
		a.snapshot = msg.snap
		return a, tea.Batch(a.feed.SetProps(a.props()), a.waitForSnapshots())

	case inputRequestMsg:
		a.requests = append(a.requests, msg.req)
		return a, tea.Batch(a.feed.SetProps(a.props()), a.waitForInputs())

	case tea.PasteMsg:
		return a, a.feed.Update(tea.PasteMsg{Content: SanitizePaste(msg.Content)})

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" || (key.Matches(msg, a.keys.Quit) && !a.feed.PanelFocused()) {
			a.quitting = true
			return a, tea.Quit
		}
	}
	return a, a.feed.Update(msg)
}

// View renders the current view. In Bubbletea v2, this returns tea.View
// with display options like AltScreen and MouseMode.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if a.quitting || a.width == 0 || a.height == 0 {
		view.AltScreen = !a.quitting
		view.Content = lipgloss.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	view.Cursor = a.Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = theme.HexToColor(theme.Current().BgCrust)
	return view
}

// Draw renders the header, feed and footer.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	s := theme.Current().S()

	header := uv.Rect(area.Min.X, area.Min.Y, area.Dx(), headerHeight)
	DrawRule(scr, header, a.title(), s.HeaderTitle, s.HintSeparator)

	body := uv.Rect(area.Min.X, area.Min.Y+headerHeight, area.Dx(), max(0, area.Dy()-headerHeight-footerHeight))
	cursor := a.feed.Draw(scr, body)

	footer := uv.Rect(area.Min.X, area.Max.Y-footerHeight, area.Dx(), footerHeight)
	DrawStyled(scr, footer, s.Footer, a.hints())
	return cursor
}

func (a *App) title() string {
	title := a.opts.Title
	if title == "" {
		title = "threadfeed"
	}
	if a.snapshot == nil {
		return title
	}
	meta := a.snapshot.ThreadID
	if a.snapshot.WorkspaceID != "" {
		meta = a.snapshot.WorkspaceID + "/" + meta
	}
	if !a.feed.Following() {
		meta += " · paused"
	}
	return title + " " + theme.Current().S().HeaderMeta.Render(meta)
}

func (a *App) hints() string {
	if a.feed.PanelFocused() {
		return bindingHints(a.keys.Focus, a.keys.Back, a.keys.Edit)
	}
	return bindingHints(a.keys.Down, a.keys.Toggle, a.keys.Copy, a.keys.Focus, a.keys.Quit)
}
