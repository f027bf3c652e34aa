package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

type inputFocus int

const (
	inputFocusOptions inputFocus = iota
	inputFocusNote
	inputFocusSubmit
)

type inputActionKind int

const (
	inputNone inputActionKind = iota
	inputSubmit
	inputLeave
	inputBack
)

type inputAction struct {
	kind    inputActionKind
	request conversation.InputRequest
	answers map[string][]string
}

// InputPanel shows the agent's pending questions for the active thread, one
// question at a time.
type InputPanel struct {
	sel      feed.InputSelection
	visible  bool
	focused  bool
	focus    inputFocus
	question int
	cursor   int
	answers  map[string]feed.Answer
	note     textinput.Model
	keys     keyMap
	width    int
}

// NewInputPanel creates a hidden input panel.
func NewInputPanel() *InputPanel {
	t := theme.Current()
	ti := textinput.New()
	ti.Placeholder = "Add a note (optional)..."
	ti.Prompt = "› "
	ti.CharLimit = 500
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	ti.SetWidth(56)

	return &InputPanel{
		note:    ti,
		keys:    defaultKeyMap(),
		answers: make(map[string]feed.Answer),
		width:   64,
	}
}

// Show displays sel. Progress is kept while the same request stays current.
func (p *InputPanel) Show(sel feed.InputSelection) {
	if !p.visible || sel.Request.ID != p.sel.Request.ID {
		p.answers = make(map[string]feed.Answer)
		p.question = 0
		p.focus = inputFocusOptions
		p.loadQuestion()
	}
	p.sel = sel
	p.visible = true
}

func (p *InputPanel) Hide() {
	p.visible = false
	p.Blur()
}

func (p *InputPanel) Visible() bool { return p.visible }

// RequestID returns the request on display.
func (p *InputPanel) RequestID() string { return p.sel.Request.ID }

func (p *InputPanel) SetWidth(width int) {
	p.width = width
	if w := width - 8; w > 10 {
		p.note.SetWidth(w)
	}
}

func (p *InputPanel) Focus() tea.Cmd {
	p.focused = true
	p.focus = inputFocusOptions
	return nil
}

func (p *InputPanel) FocusLast() {
	p.focused = true
	p.focus = inputFocusSubmit
	p.note.Blur()
}

func (p *InputPanel) Blur() {
	p.focused = false
	p.note.Blur()
}

func (p *InputPanel) IsFocused() bool { return p.focused }

func (p *InputPanel) questions() []conversation.Question {
	return p.sel.Request.Questions
}

func (p *InputPanel) current() (conversation.Question, bool) {
	qs := p.questions()
	if p.question < 0 || p.question >= len(qs) {
		return conversation.Question{}, false
	}
	return qs[p.question], true
}

// loadQuestion restores the cursor and note of the current question.
func (p *InputPanel) loadQuestion() {
	p.cursor = 0
	p.note.SetValue("")
	q, ok := p.current()
	if !ok {
		return
	}
	if a, ok := p.answers[q.ID]; ok {
		if a.Option >= 0 {
			p.cursor = a.Option
		}
		p.note.SetValue(a.Note)
	}
}

// saveNote stores the note for the current question.
func (p *InputPanel) saveNote() {
	q, ok := p.current()
	if !ok || q.ID == "" {
		return
	}
	a, ok := p.answers[q.ID]
	if !ok {
		a.Option = feed.NoOption
	}
	a.Note = p.note.Value()
	p.answers[q.ID] = a
}

// choose toggles the option under the cursor for the current question.
func (p *InputPanel) choose() {
	q, ok := p.current()
	if !ok || q.ID == "" || len(q.Options) == 0 {
		return
	}
	a, ok := p.answers[q.ID]
	if ok && a.Option == p.cursor {
		a.Option = feed.NoOption
	} else {
		a.Option = p.cursor
	}
	p.answers[q.ID] = a
}

// Selection returns the chosen option of question i, or NoOption.
func (p *InputPanel) Selection(questionID string) int {
	if a, ok := p.answers[questionID]; ok {
		return a.Option
	}
	return feed.NoOption
}

// Answers builds the answer map for the request on display.
func (p *InputPanel) Answers() map[string][]string {
	p.saveNote()
	return feed.BuildAnswers(p.sel.Request, p.answers)
}

func (p *InputPanel) Update(msg tea.Msg) (tea.Cmd, inputAction) {
	if pm, ok := msg.(tea.PasteMsg); ok {
		msg = tea.PasteMsg{Content: collapseNewlines(pm.Content)}
	}
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if p.focus == inputFocusNote {
			var cmd tea.Cmd
			p.note, cmd = p.note.Update(msg)
			return cmd, inputAction{}
		}
		return nil, inputAction{}
	}

	switch {
	case key.Matches(km, p.keys.Focus):
		return p.move(1)
	case km.String() == "shift+tab" || km.String() == "esc":
		return p.move(-1)
	}

	switch p.focus {
	case inputFocusOptions:
		return p.handleOptionKey(km), inputAction{}
	case inputFocusNote:
		if km.String() == "enter" {
			return p.move(1)
		}
		var cmd tea.Cmd
		p.note, cmd = p.note.Update(km)
		return cmd, inputAction{}
	case inputFocusSubmit:
		if km.String() == "enter" || km.String() == "space" {
			return nil, inputAction{kind: inputSubmit, request: p.sel.Request, answers: p.Answers()}
		}
	}
	return nil, inputAction{}
}

func (p *InputPanel) handleOptionKey(km tea.KeyPressMsg) tea.Cmd {
	q, _ := p.current()
	switch {
	case key.Matches(km, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, p.keys.Down):
		if p.cursor < len(q.Options)-1 {
			p.cursor++
		}
	case km.String() == "left" || km.String() == "h":
		p.switchQuestion(-1)
	case km.String() == "right" || km.String() == "l":
		p.switchQuestion(1)
	case km.String() == "enter" || km.String() == "space":
		p.choose()
	}
	return nil
}

func (p *InputPanel) switchQuestion(delta int) bool {
	next := p.question + delta
	if next < 0 || next >= len(p.questions()) {
		return false
	}
	p.saveNote()
	p.question = next
	p.loadQuestion()
	return true
}

// move walks options → note → next question … → submit, and hands focus
// back to the feed past either end.
func (p *InputPanel) move(delta int) (tea.Cmd, inputAction) {
	if delta > 0 {
		switch p.focus {
		case inputFocusOptions:
			p.focus = inputFocusNote
			return p.note.Focus(), inputAction{}
		case inputFocusNote:
			p.note.Blur()
			if p.switchQuestion(1) {
				p.focus = inputFocusOptions
				return nil, inputAction{}
			}
			p.saveNote()
			p.focus = inputFocusSubmit
			return nil, inputAction{}
		default:
			p.Blur()
			return nil, inputAction{kind: inputLeave}
		}
	}

	switch p.focus {
	case inputFocusSubmit:
		p.focus = inputFocusNote
		return p.note.Focus(), inputAction{}
	case inputFocusNote:
		p.note.Blur()
		p.focus = inputFocusOptions
		return nil, inputAction{}
	default:
		if p.switchQuestion(-1) {
			p.focus = inputFocusNote
			return p.note.Focus(), inputAction{}
		}
		p.Blur()
		return nil, inputAction{kind: inputBack}
	}
}

// View renders the panel, or nothing when hidden.
func (p *InputPanel) View() string {
	if !p.visible {
		return ""
	}
	s := theme.Current().S()

	title := s.PanelTitle.Render("Input requested")
	if p.sel.Total > 1 {
		title += " " + s.PanelMeta.Render(fmt.Sprintf("request %d / %d", p.sel.Position, p.sel.Total))
	}
	lines := []string{title}

	q, ok := p.current()
	if ok {
		if n := len(p.questions()); n > 1 {
			lines = append(lines, s.PanelMeta.Render(fmt.Sprintf("question %d of %d · ←/→ switch", p.question+1, n)))
		}
		if q.Header != "" {
			lines = append(lines, s.HeaderTitle.Render(q.Header))
		}
		lines = append(lines, wrapText(q.Question, p.width-4))

		chosen := p.Selection(q.ID)
		for i, opt := range q.Options {
			mark := "○"
			style := s.Option
			if i == chosen {
				mark = "◉"
				style = s.OptionSelected
			}
			prefix := "  "
			if p.focused && p.focus == inputFocusOptions && i == p.cursor {
				prefix = s.Cursor.Render("› ")
			}
			label := opt.Label
			if label == "" {
				label = opt.Description
			}
			line := prefix + style.Render(mark+" "+label)
			if opt.Label != "" && opt.Description != "" {
				line += " " + s.OptionDescription.Render(opt.Description)
			}
			lines = append(lines, truncateLine(line, p.width-4))
		}
	}
	lines = append(lines, p.note.View())

	submit := s.Button
	if p.focused && p.focus == inputFocusSubmit {
		submit = s.ButtonFocused
	}
	lines = append(lines, submit.Render("Submit answers"))

	border := s.PanelBorder
	if p.focused {
		border = s.PanelBorderFocused
	}
	return border.Width(p.width).Render(strings.Join(lines, "\n"))
}
