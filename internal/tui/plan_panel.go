package tui

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

type planFocus int

const (
	planFocusText planFocus = iota
	planFocusExecute
	planFocusSend
)

type planActionKind int

const (
	planNone planActionKind = iota
	planExecute
	planSend
	planLeave
	planBack
)

type planAction struct {
	kind planActionKind
	text string
}

// planEditedMsg carries text back from $EDITOR.
type planEditedMsg struct {
	itemID string
	text   string
}

// PlanPanel is the follow-up prompt shown under a finished plan: execute it
// as is, or send requested changes back to the agent.
type PlanPanel struct {
	followUp feed.PlanFollowUp
	visible  bool
	focused  bool
	focus    planFocus
	textarea textarea.Model
	keys     keyMap
	width    int
}

// NewPlanPanel creates a hidden plan panel.
func NewPlanPanel() *PlanPanel {
	ta := textarea.New()
	ta.Placeholder = "Describe changes to the plan..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.SetWidth(60)
	ta.KeyMap.LineNext = key.NewBinding(key.WithKeys("down"))

	t := theme.Current()
	styles := textarea.DefaultDarkStyles()
	styles.Cursor.Color = lipgloss.Color(t.Secondary)
	styles.Cursor.Shape = tea.CursorBlock
	styles.Cursor.Blink = true
	ta.SetStyles(styles)

	return &PlanPanel{textarea: ta, keys: defaultKeyMap(), width: 64}
}

// Show displays the follow-up. The draft is kept while the same plan item
// stays current and cleared when a new plan arrives.
func (p *PlanPanel) Show(fu feed.PlanFollowUp) {
	if !p.visible || fu.ItemID != p.followUp.ItemID {
		p.textarea.Reset()
		p.focus = planFocusText
	}
	p.followUp = fu
	p.visible = true
}

func (p *PlanPanel) Hide() {
	p.visible = false
	p.Blur()
}

func (p *PlanPanel) Visible() bool { return p.visible }

// ItemID returns the plan item the panel refers to.
func (p *PlanPanel) ItemID() string { return p.followUp.ItemID }

// CanExecute reports whether the execute action is enabled.
func (p *PlanPanel) CanExecute() bool { return p.visible }

// CanSend reports whether the send-changes action is enabled. It needs
// non-blank change text.
func (p *PlanPanel) CanSend() bool {
	return p.visible && strings.TrimSpace(p.textarea.Value()) != ""
}

// SetText replaces the change text.
func (p *PlanPanel) SetText(text string) {
	p.textarea.SetValue(text)
}

func (p *PlanPanel) Text() string { return p.textarea.Value() }

func (p *PlanPanel) SetWidth(width int) {
	p.width = width
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	p.textarea.SetWidth(inner)
}

// Focus gives the panel keyboard focus, starting at the text area.
func (p *PlanPanel) Focus() tea.Cmd {
	p.focused = true
	p.focus = planFocusText
	return p.textarea.Focus()
}

// FocusLast focuses the last control, used when tabbing backwards.
func (p *PlanPanel) FocusLast() {
	p.focused = true
	p.focus = planFocusSend
	p.textarea.Blur()
}

func (p *PlanPanel) Blur() {
	p.focused = false
	p.textarea.Blur()
}

func (p *PlanPanel) IsFocused() bool { return p.focused }

// Update handles a message while the panel is focused and reports the
// action the feed should take.
func (p *PlanPanel) Update(msg tea.Msg) (tea.Cmd, planAction) {
	switch msg := msg.(type) {
	case planEditedMsg:
		if msg.itemID == p.followUp.ItemID {
			p.textarea.SetValue(strings.TrimRight(msg.text, "\n"))
		}
		return nil, planAction{}
	case tea.KeyPressMsg:
		return p.handleKey(msg)
	}
	if p.focus == planFocusText {
		var cmd tea.Cmd
		p.textarea, cmd = p.textarea.Update(msg)
		return cmd, planAction{}
	}
	return nil, planAction{}
}

func (p *PlanPanel) handleKey(msg tea.KeyPressMsg) (tea.Cmd, planAction) {
	switch {
	case key.Matches(msg, p.keys.Edit):
		return p.openEditor(), planAction{}
	case key.Matches(msg, p.keys.Focus):
		return p.move(1)
	case msg.String() == "shift+tab" || msg.String() == "esc":
		return p.move(-1)
	}

	switch p.focus {
	case planFocusExecute:
		if msg.String() == "enter" || msg.String() == "space" {
			return nil, planAction{kind: planExecute}
		}
		return nil, planAction{}
	case planFocusSend:
		if (msg.String() == "enter" || msg.String() == "space") && p.CanSend() {
			return nil, planAction{kind: planSend, text: strings.TrimSpace(p.textarea.Value())}
		}
		return nil, planAction{}
	}

	var cmd tea.Cmd
	p.textarea, cmd = p.textarea.Update(msg)
	return cmd, planAction{}
}

// move shifts focus between controls. Moving past either end hands focus
// back to the feed.
func (p *PlanPanel) move(delta int) (tea.Cmd, planAction) {
	next := int(p.focus) + delta
	if next < int(planFocusText) {
		p.Blur()
		return nil, planAction{kind: planBack}
	}
	if next > int(planFocusSend) {
		p.Blur()
		return nil, planAction{kind: planLeave}
	}
	p.focus = planFocus(next)
	if p.focus == planFocusText {
		return p.textarea.Focus(), planAction{}
	}
	p.textarea.Blur()
	return nil, planAction{}
}

// openEditor edits the change text in $EDITOR.
func (p *PlanPanel) openEditor() tea.Cmd {
	tmp, err := os.CreateTemp("", "threadfeed_plan_*.md")
	if err != nil {
		logger.Warn("creating plan draft: %v", err)
		return nil
	}
	path := tmp.Name()
	if _, err := tmp.WriteString(p.textarea.Value()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil
	}
	_ = tmp.Close()

	cmd, err := editor.Command("threadfeed", path)
	if err != nil {
		logger.Warn("opening editor: %v", err)
		_ = os.Remove(path)
		return nil
	}
	itemID := p.followUp.ItemID
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			logger.Warn("editor exited: %v", err)
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return planEditedMsg{itemID: itemID, text: string(content)}
	})
}

// View renders the panel, or nothing when hidden.
func (p *PlanPanel) View() string {
	if !p.visible {
		return ""
	}
	s := theme.Current().S()

	title := s.PanelTitle.Render("Plan ready") + " " +
		s.PanelMeta.Render("execute it or ask for changes")

	execute := s.Button
	if p.focused && p.focus == planFocusExecute {
		execute = s.ButtonFocused
	}
	send := s.Button
	switch {
	case !p.CanSend():
		send = s.ButtonDisabled
	case p.focused && p.focus == planFocusSend:
		send = s.ButtonFocused
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		execute.Render("Execute plan"), "  ", send.Render("Send changes"))

	hints := bindingHints(p.keys.Focus, p.keys.Edit)
	body := strings.Join([]string{title, p.textarea.View(), buttons, hints}, "\n")

	border := s.PanelBorder
	if p.focused {
		border = s.PanelBorderFocused
	}
	return border.Width(p.width).Render(body)
}
