package tui

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

const (
	wheelRows  = 3
	gutter     = 2
	tailHeight = 2 // blank line + indicator
)

// Props is everything the feed renders for one thread.
type Props struct {
	WorkspaceID         string
	ThreadID            string
	Items               []conversation.Item
	Thinking            bool
	Streaming           bool
	ProcessingStartedAt time.Time
	LastDuration        time.Duration
	InputRequests       []conversation.InputRequest
}

// PropsFromSnapshot converts a snapshot into feed props.
func PropsFromSnapshot(s *conversation.Snapshot) Props {
	p := Props{
		WorkspaceID:   s.WorkspaceID,
		ThreadID:      s.ThreadID,
		Items:         s.Items,
		Thinking:      s.Thinking,
		Streaming:     s.Streaming,
		InputRequests: s.InputRequests,
	}
	if t, ok := s.StartedAt(); ok {
		p.ProcessingStartedAt = t
	}
	if d, ok := s.LastDuration(); ok {
		p.LastDuration = d
	}
	return p
}

// Handlers are the collaborator callbacks. Any of them may be nil.
type Handlers struct {
	ReachTop          feed.ReachTopFunc
	PlanAccept        func(ctx context.Context, workspaceID, threadID, itemID string) error
	PlanSubmitChanges func(ctx context.Context, workspaceID, threadID, itemID, text string) error
	UserInputSubmit   func(ctx context.Context, req conversation.InputRequest, answers map[string][]string) error
}

type focusArea int

const (
	focusFeed focusArea = iota
	focusPlan
	focusInput
)

// layoutSettledMsg arrives after the rows of a layout pass were measured.
type layoutSettledMsg struct {
	gen uint64
}

type reachTopDoneMsg struct {
	token     feed.Token
	workspace string
	thread    string
	more      bool
	err       error
}

type actionDoneMsg struct {
	what      string
	requestID string
	err       error
}

// scrollAnchor pins the viewport to a row while content above it changes.
type scrollAnchor struct {
	key   string
	delta int
}

type renderedRow struct {
	index int
	key   string
	lines []string
}

// Feed renders one conversation thread as a scrollable list with the plan
// and input panels docked underneath.
type Feed struct {
	ctx        context.Context
	opts       feed.Options
	lineHeight int
	handlers   Handlers
	props      Props
	keys       keyMap

	reasoning  *feed.ReasoningCache
	expand     *feed.ExpandState
	dismissals *feed.PlanDismissals
	auto       *feed.AutoScroll
	pager      *feed.Paginator
	virt       *feed.Virtualizer
	rows       *rowCache
	md         *markdownRenderer

	entries   []feed.Entry
	defaults  *feed.DefaultCollapse
	collapsed map[string]bool

	width     int
	height    int
	scrollTop int // rows
	cursor    string
	focus     focusArea

	gen      uint64
	snap     bool
	anchor   *scrollAnchor
	rendered []renderedRow

	working  feed.Working
	spinner  Spinner
	spinning bool
	frame    int

	plan      *PlanPanel
	input     *InputPanel
	flash     Flash
	submitted map[string]bool

	now func() time.Time
}

// NewFeed creates an empty feed. lineHeight converts terminal rows to the
// pixel units the tuning options are expressed in.
func NewFeed(ctx context.Context, opts feed.Options, lineHeight int, h Handlers) *Feed {
	if lineHeight <= 0 {
		lineHeight = 1
	}
	estimate := opts.EstimatedRowHeight / lineHeight
	if estimate < 1 {
		estimate = 1
	}
	return &Feed{
		ctx:        ctx,
		opts:       opts,
		lineHeight: lineHeight,
		handlers:   h,
		keys:       defaultKeyMap(),
		reasoning:  feed.NewReasoningCache(),
		expand:     feed.NewExpandState(),
		dismissals: feed.NewPlanDismissals(),
		auto:       feed.NewAutoScroll(opts.CaptureDistance, opts.ReleaseDistance),
		pager:      feed.NewPaginator(opts.TopTrigger, opts.PageCooldown),
		virt:       feed.NewVirtualizer(opts.VirtualizeThreshold, estimate, opts.Overscan),
		rows:       newRowCache(),
		md:         &markdownRenderer{},
		defaults:   feed.NewDefaultCollapse(),
		collapsed:  map[string]bool{},
		width:      80,
		height:     24,
		spinner:    NewDefaultSpinner(),
		plan:       NewPlanPanel(),
		input:      NewInputPanel(),
		submitted:  map[string]bool{},
		now:        time.Now,
	}
}

// SetSize resizes the feed. A width change re-renders every row.
func (f *Feed) SetSize(width, height int) tea.Cmd {
	if width != f.width {
		f.virt.Invalidate()
		f.rows.reset()
	}
	f.width, f.height = width, height
	f.plan.SetWidth(width)
	f.input.SetWidth(width)
	f.snap = f.snap || f.auto.ShouldSnap(f.viewport().DistanceFromBottom()*f.lineHeight)
	return f.layout()
}

// SetProps applies a new snapshot of the thread.
func (f *Feed) SetProps(p Props) tea.Cmd {
	switched := p.ThreadID != f.props.ThreadID || p.WorkspaceID != f.props.WorkspaceID
	if switched {
		f.resetThread()
		f.snap = true
		f.anchor = nil
	} else {
		vp := f.viewport()
		f.snap = f.auto.ShouldSnap(vp.DistanceFromBottom() * f.lineHeight)
		f.anchor = nil
		if !f.snap {
			f.anchor = f.anchorAt(f.scrollTop)
		}
	}
	f.props = p

	f.reasoning = f.reasoning.Pass(p.Items)
	visible := feed.Visible(p.Items, f.reasoning, f.opts.ControlTags)
	f.entries = feed.Group(visible)
	f.collapsed = f.defaults.Update(visible, f.opts.Collapse)
	f.expand.ApplyPlanAutoExpand(visible)

	present := make(map[string]struct{}, len(visible))
	for _, id := range feed.FlattenIDs(f.entries) {
		present[id] = struct{}{}
	}
	keys := feed.Keys(f.entries)
	for _, e := range f.entries {
		if e.Group != nil {
			present[groupStateID(e.Key())] = struct{}{}
		}
	}
	f.expand.Prune(present)
	f.virt.SetKeys(keys)
	f.rows.retain(keys)
	if f.cursor != "" && f.virt.IndexOf(f.cursor) < 0 {
		f.cursor = ""
	}

	cmd := f.deriveTail()
	return tea.Batch(cmd, f.layout())
}

// resetThread drops all per-thread view state. Plan dismissals are keyed by
// thread and survive.
func (f *Feed) resetThread() {
	f.auto.Reset()
	f.pager.Reset()
	f.expand = feed.NewExpandState()
	f.defaults = feed.NewDefaultCollapse()
	f.reasoning = feed.NewReasoningCache()
	f.rows.reset()
	f.virt.Invalidate()
	f.cursor = ""
	f.scrollTop = 0
	f.focus = focusFeed
	f.plan.Hide()
	f.input.Hide()
}

// deriveTail recomputes the plan and input panels and the working line.
func (f *Feed) deriveTail() tea.Cmd {
	p := f.props

	var pending []conversation.InputRequest
	for _, r := range p.InputRequests {
		if !f.submitted[r.ID] {
			pending = append(pending, r)
		}
	}
	sel, hasInput := feed.SelectInputRequest(pending, p.ThreadID, p.WorkspaceID)
	if hasInput {
		f.input.Show(sel)
	} else {
		f.input.Hide()
	}

	fu, hasPlan := feed.DerivePlanFollowUp(feed.PlanInput{
		ThreadID:     p.ThreadID,
		Items:        p.Items,
		Thinking:     p.Thinking,
		InputPending: hasInput,
		Dismissals:   f.dismissals,
	})
	if hasPlan {
		f.plan.Show(fu)
	} else {
		f.plan.Hide()
	}
	if (f.focus == focusPlan && !hasPlan) || (f.focus == focusInput && !hasInput) {
		f.focus = focusFeed
	}

	f.working = feed.DeriveWorking(p.Items, f.reasoning, p.Thinking, p.Streaming, p.ProcessingStartedAt, f.now())
	if f.working.Active && !f.spinning {
		f.spinning = true
		return f.spinner.Tick()
	}
	return nil
}

func (f *Feed) rowContext() *rowContext {
	return &rowContext{
		width:     f.width - gutter,
		expand:    f.expand,
		collapsed: f.collapsed,
		rules:     f.opts.Collapse,
		reasoning: f.reasoning,
		md:        f.md,
	}
}

func (f *Feed) renderRow(ctx *rowContext, e feed.Entry) cachedRow {
	sig := ctx.signature(e)
	if row, ok := f.rows.get(e.Key(), sig); ok {
		return row
	}
	return f.rows.put(e.Key(), sig, ctx.renderEntry(e))
}

// layout renders the rows around the viewport and returns the command that
// reports the layout as settled. Scroll adjustments that depend on real row
// heights wait for it.
func (f *Feed) layout() tea.Cmd {
	f.gen++
	f.renderWindow()
	gen := f.gen
	return func() tea.Msg { return layoutSettledMsg{gen: gen} }
}

func (f *Feed) renderWindow() {
	f.clampScroll()
	ctx := f.rowContext()
	win := f.virt.Window(f.scrollTop, f.viewportHeight())
	f.rendered = f.rendered[:0]
	for i := win.Start; i < win.End; i++ {
		e := f.entries[i]
		row := f.renderRow(ctx, e)
		f.virt.Measure(e.Key(), row.height+1)
		f.rendered = append(f.rendered, renderedRow{
			index: i,
			key:   e.Key(),
			lines: strings.Split(row.text, "\n"),
		})
	}
}

func (f *Feed) settle() {
	for range 2 {
		switch {
		case f.snap:
			f.scrollTop = f.viewport().MaxScrollTop()
		case f.anchor != nil:
			if idx := f.virt.IndexOf(f.anchor.key); idx >= 0 {
				f.scrollTop = f.virt.Offset(idx) + f.anchor.delta
			}
		}
		f.renderWindow()
	}
	if f.snap {
		f.auto.Observe(0)
	}
	f.snap = false
	f.anchor = nil
}

func (f *Feed) anchorAt(top int) *scrollAnchor {
	if f.virt.Len() == 0 {
		return nil
	}
	idx := f.virt.IndexAt(top)
	return &scrollAnchor{key: f.virt.Keys()[idx], delta: top - f.virt.Offset(idx)}
}

func (f *Feed) tailHeight() int {
	if f.working.Active || f.props.LastDuration > 0 {
		return tailHeight
	}
	return 0
}

// ContentHeight returns the scrollable height in rows.
func (f *Feed) ContentHeight() int {
	return f.virt.TotalHeight() + f.tailHeight()
}

func (f *Feed) viewportHeight() int {
	h := f.height - panelHeight(f.plan.View()) - panelHeight(f.input.View())
	if h < 1 {
		h = 1
	}
	return h
}

func panelHeight(view string) int {
	if view == "" {
		return 0
	}
	return lipgloss.Height(view)
}

func (f *Feed) viewport() feed.Viewport {
	return feed.Viewport{
		ScrollTop:     f.scrollTop,
		Height:        f.viewportHeight(),
		ContentHeight: f.ContentHeight(),
	}
}

func (f *Feed) clampScroll() {
	f.scrollTop = f.viewport().Clamp().ScrollTop
}

// ScrollTop returns the viewport offset in rows.
func (f *Feed) ScrollTop() int { return f.scrollTop }

// AtBottom reports whether the viewport shows the end of the content.
func (f *Feed) AtBottom() bool {
	return f.viewport().DistanceFromBottom() == 0
}

// Following reports whether the feed follows new content.
func (f *Feed) Following() bool { return f.auto.Enabled() }

// Entries returns the rows currently shown.
func (f *Feed) Entries() []feed.Entry { return f.entries }

// ScrollBy scrolls by delta rows as a user scroll.
func (f *Feed) ScrollBy(delta int) tea.Cmd {
	return f.scrollTo(f.scrollTop + delta)
}

// scrollTo moves the viewport on behalf of the user and runs the scroll
// observers: auto-scroll hysteresis and top-of-list pagination.
func (f *Feed) scrollTo(top int) tea.Cmd {
	f.scrollTop = top
	f.renderWindow()

	vp := f.viewport()
	f.auto.Observe(vp.DistanceFromBottom() * f.lineHeight)

	if f.handlers.ReachTop == nil {
		return nil
	}
	tok, ok := f.pager.Check(f.scrollTop*f.lineHeight, f.now())
	if !ok {
		return nil
	}
	fn := f.handlers.ReachTop
	ctx := f.ctx
	ws, thread := f.props.WorkspaceID, f.props.ThreadID
	return func() tea.Msg {
		more, err := fn(ctx)
		return reachTopDoneMsg{token: tok, workspace: ws, thread: thread, more: more, err: err}
	}
}

// Update handles input and internal messages.
func (f *Feed) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case layoutSettledMsg:
		if msg.gen == f.gen {
			f.settle()
		}
		return nil

	case reachTopDoneMsg:
		if msg.thread != f.props.ThreadID || msg.workspace != f.props.WorkspaceID {
			return nil
		}
		f.pager.Done(msg.token)
		if msg.err != nil {
			logger.Debug("loading older history for %s: %v", msg.thread, msg.err)
		}
		return nil

	case copyResultMsg:
		if msg.ok {
			return f.flash.Show("Copied")
		}
		return nil

	case flashDismissMsg:
		return f.flash.Update(msg)

	case actionDoneMsg:
		if msg.err == nil {
			return nil
		}
		logger.Warn("%s failed: %v", msg.what, msg.err)
		if msg.requestID != "" {
			delete(f.submitted, msg.requestID)
			cmd := f.deriveTail()
			return tea.Batch(cmd, f.layout(), f.flash.Show(msg.what+" failed"))
		}
		return f.flash.Show(msg.what + " failed")

	case spinner.TickMsg:
		if !f.working.Active {
			f.spinning = false
			return nil
		}
		f.frame++
		f.working = feed.DeriveWorking(f.props.Items, f.reasoning, f.props.Thinking, f.props.Streaming, f.props.ProcessingStartedAt, f.now())
		return f.spinner.Update(msg)

	case planEditedMsg:
		cmd, _ := f.plan.Update(msg)
		return cmd

	case tea.MouseWheelMsg:
		switch msg.Mouse().Button {
		case tea.MouseWheelUp:
			return f.ScrollBy(-wheelRows)
		case tea.MouseWheelDown:
			return f.ScrollBy(wheelRows)
		}
		return nil

	case tea.KeyPressMsg:
		return f.handleKey(msg)
	}

	switch f.focus {
	case focusPlan:
		cmd, _ := f.plan.Update(msg)
		return cmd
	case focusInput:
		cmd, _ := f.input.Update(msg)
		return cmd
	}
	return nil
}

func (f *Feed) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch f.focus {
	case focusPlan:
		cmd, action := f.plan.Update(msg)
		return tea.Batch(cmd, f.handlePlanAction(action))
	case focusInput:
		cmd, action := f.input.Update(msg)
		return tea.Batch(cmd, f.handleInputAction(action))
	}

	vh := f.viewportHeight()
	switch {
	case key.Matches(msg, f.keys.Focus):
		return f.focusNext(focusFeed)
	case key.Matches(msg, f.keys.Up):
		return f.moveCursor(-1)
	case key.Matches(msg, f.keys.Down):
		return f.moveCursor(1)
	case key.Matches(msg, f.keys.PageUp):
		return f.ScrollBy(-vh)
	case key.Matches(msg, f.keys.PageDown):
		return f.ScrollBy(vh)
	case key.Matches(msg, f.keys.HalfUp):
		return f.ScrollBy(-vh / 2)
	case key.Matches(msg, f.keys.HalfDown):
		return f.ScrollBy(vh / 2)
	case key.Matches(msg, f.keys.Top):
		return f.scrollTo(0)
	case key.Matches(msg, f.keys.Bottom):
		return f.scrollTo(f.viewport().MaxScrollTop())
	case key.Matches(msg, f.keys.Toggle):
		f.toggle(f.cursor)
		return nil
	case key.Matches(msg, f.keys.Copy):
		return f.copyEntry(f.cursor)
	case key.Matches(msg, f.keys.Back):
		f.cursor = ""
		return nil
	}
	return nil
}

// focusNext moves focus to the next visible panel after from, wrapping back
// to the feed.
func (f *Feed) focusNext(from focusArea) tea.Cmd {
	if from < focusPlan && f.plan.Visible() {
		f.focus = focusPlan
		return f.plan.Focus()
	}
	if from < focusInput && f.input.Visible() {
		f.focus = focusInput
		return f.input.Focus()
	}
	f.focus = focusFeed
	return nil
}

func (f *Feed) handlePlanAction(a planAction) tea.Cmd {
	switch a.kind {
	case planLeave:
		return f.focusNext(focusPlan)
	case planBack:
		f.focus = focusFeed
		return nil
	case planExecute, planSend:
		itemID := f.plan.ItemID()
		ws, thread := f.props.WorkspaceID, f.props.ThreadID
		f.dismissals.Dismiss(thread, itemID)
		f.focus = focusFeed
		tail := f.deriveTail()

		var run tea.Cmd
		if a.kind == planExecute && f.handlers.PlanAccept != nil {
			fn, ctx := f.handlers.PlanAccept, f.ctx
			run = func() tea.Msg {
				return actionDoneMsg{what: "Plan execution", err: fn(ctx, ws, thread, itemID)}
			}
		}
		if a.kind == planSend && f.handlers.PlanSubmitChanges != nil {
			fn, ctx, text := f.handlers.PlanSubmitChanges, f.ctx, a.text
			run = func() tea.Msg {
				return actionDoneMsg{what: "Plan changes", err: fn(ctx, ws, thread, itemID, text)}
			}
		}
		f.snap = f.snap || f.auto.Enabled()
		return tea.Batch(tail, run, f.layout())
	}
	return nil
}

func (f *Feed) handleInputAction(a inputAction) tea.Cmd {
	switch a.kind {
	case inputLeave:
		f.focus = focusFeed
		return nil
	case inputBack:
		if f.plan.Visible() {
			f.focus = focusPlan
			f.plan.FocusLast()
			return nil
		}
		f.focus = focusFeed
		return nil
	case inputSubmit:
		req := a.request
		f.submitted[req.ID] = true
		f.focus = focusFeed
		tail := f.deriveTail()

		var run tea.Cmd
		if fn := f.handlers.UserInputSubmit; fn != nil {
			ctx, answers := f.ctx, a.answers
			run = func() tea.Msg {
				return actionDoneMsg{what: "Answer", requestID: req.ID, err: fn(ctx, req, answers)}
			}
		}
		f.snap = f.snap || f.auto.Enabled()
		return tea.Batch(tail, run, f.layout())
	}
	return nil
}

// moveCursor selects the previous or next row and scrolls it into view.
// Without a selection the first move picks the row at the viewport edge.
func (f *Feed) moveCursor(delta int) tea.Cmd {
	n := f.virt.Len()
	if n == 0 {
		return nil
	}
	idx := f.virt.IndexOf(f.cursor)
	switch {
	case idx < 0 && delta < 0:
		idx = f.virt.IndexAt(f.scrollTop + f.viewportHeight() - 1)
	case idx < 0:
		idx = f.virt.IndexAt(f.scrollTop)
	default:
		idx += delta
	}
	idx = max(0, min(n-1, idx))
	f.cursor = f.virt.Keys()[idx]

	top, bottom := f.virt.Offset(idx), f.virt.Offset(idx+1)
	vh := f.viewportHeight()
	switch {
	case top < f.scrollTop:
		return f.scrollTo(top)
	case bottom > f.scrollTop+vh:
		return f.scrollTo(min(top, bottom-vh))
	}
	return nil
}

func (f *Feed) entryByKey(k string) (feed.Entry, bool) {
	idx := f.virt.IndexOf(k)
	if idx < 0 || idx >= len(f.entries) {
		return feed.Entry{}, false
	}
	return f.entries[idx], true
}

// toggle flips the expand state of the row under the cursor.
func (f *Feed) toggle(k string) {
	e, ok := f.entryByKey(k)
	if !ok {
		return
	}
	if e.Group != nil {
		id := groupStateID(k)
		open := f.rowContext().groupExpanded(k, e.Group)
		if open != f.expand.IsExpanded(id) {
			// match the stored state to what is shown
			f.expand.Toggle(id)
		}
		f.expand.Toggle(id)
	} else if m, ok := e.Item.(*conversation.Message); ok {
		if !f.collapsed[m.ID] && !f.expand.Overridden(m.ID) {
			return
		}
		f.expand.ToggleMessage(m.ID, f.expand.MessageCollapsed(m.ID, f.collapsed))
	} else {
		f.expand.Toggle(k)
	}
	f.anchor = f.anchorAt(f.scrollTop)
	f.renderWindow()
	f.settle()
}

func (f *Feed) copyEntry(k string) tea.Cmd {
	e, ok := f.entryByKey(k)
	if !ok {
		return nil
	}
	text := entryText(e, f.reasoning)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return copyCmd(text)
}

// viewportLines returns the visible slice of the scroll content.
func (f *Feed) viewportLines() []string {
	vh := f.viewportHeight()
	lines := make([]string, vh)
	s := theme.Current().S()

	for _, row := range f.rendered {
		top := f.virt.Offset(row.index)
		prefix := strings.Repeat(" ", gutter)
		if row.key == f.cursor && f.focus == focusFeed {
			prefix = s.Cursor.Render("▌") + " "
		}
		for i, line := range row.lines {
			y := top + i - f.scrollTop
			if y < 0 || y >= vh {
				continue
			}
			lines[y] = prefix + line
		}
	}

	if tail := f.tailLine(); tail != "" {
		y := f.virt.TotalHeight() + tailHeight - 1 - f.scrollTop
		if y >= 0 && y < vh {
			lines[y] = strings.Repeat(" ", gutter) + tail
		}
	}
	return lines
}

// tailLine renders the working indicator, or the idle trailer.
func (f *Feed) tailLine() string {
	s := theme.Current().S()
	if f.working.Active {
		t := theme.Current()
		line := f.spinner.View() + " " + gradientText(f.working.Label, t.Primary, t.Secondary, f.frame)
		if f.working.Elapsed > 0 {
			line += " " + s.WorkingElapsed.Render(feed.FormatElapsed(f.working.Elapsed))
		}
		return truncateLine(line, f.width-gutter)
	}
	if f.props.LastDuration > 0 {
		return s.Trailer.Render("─ " + feed.WorkedFor(f.props.LastDuration) + " ─")
	}
	return ""
}

// View renders the feed and its docked panels.
func (f *Feed) View() string {
	parts := []string{strings.Join(f.viewportLines(), "\n")}
	if v := f.plan.View(); v != "" {
		parts = append(parts, v)
	}
	if v := f.input.View(); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, "\n")
}

// Draw renders the feed into area, with the flash message in the bottom
// right corner of the viewport.
func (f *Feed) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	uv.NewStyledString(f.View()).Draw(scr, area)

	if msg := f.flash.View(); msg != "" {
		w := lipgloss.Width(msg)
		y := area.Min.Y + f.viewportHeight() - 1
		x := area.Max.X - w - 1
		if x < area.Min.X {
			x = area.Min.X
		}
		uv.NewStyledString(msg).Draw(scr, uv.Rect(x, y, w, 1))
	}
	return nil
}

// PanelFocused reports whether a docked panel holds keyboard focus.
func (f *Feed) PanelFocused() bool { return f.focus != focusFeed }
