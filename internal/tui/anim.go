package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

// Spinner wraps bubbles spinner with convenience methods
type Spinner struct {
	model spinner.Model
}

// NewSpinner creates a new spinner with the given style
func NewSpinner(style spinner.Spinner) Spinner {
	t := theme.Current()
	s := spinner.New(
		spinner.WithSpinner(style),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
	)
	return Spinner{model: s}
}

// NewDefaultSpinner creates a spinner with MiniDot style
func NewDefaultSpinner() Spinner {
	return NewSpinner(spinner.MiniDot)
}

// Update advances the frame on this spinner's own tick messages.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return cmd
}

func (s *Spinner) View() string {
	return s.model.View()
}

// Tick returns the tick command to start animation
func (s *Spinner) Tick() tea.Cmd {
	return s.model.Tick
}

// gradientText colors each rune of text along a gradient that shifts with
// frame.
func gradientText(text, colorA, colorB string, frame int) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	var out string
	n := len(runes)
	for i, r := range runes {
		pos := float64((i+frame)%n) / float64(n)
		if pos > 0.5 {
			pos = 1 - pos
		}
		hex := theme.InterpolateColor(colorA, colorB, pos*2)
		out += lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(r))
	}
	return out
}
