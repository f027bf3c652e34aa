package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

const flashDuration = 1500 * time.Millisecond

type flashDismissMsg struct {
	seq int
}

// Flash is a short-lived status message, e.g. "copied".
type Flash struct {
	message string
	seq     int
}

// Show displays msg and schedules its dismissal. A newer message replaces an
// older one, and the older dismissal is ignored.
func (f *Flash) Show(msg string) tea.Cmd {
	f.seq++
	f.message = msg
	seq := f.seq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashDismissMsg{seq: seq}
	})
}

func (f *Flash) Update(msg tea.Msg) tea.Cmd {
	if m, ok := msg.(flashDismissMsg); ok && m.seq == f.seq {
		f.message = ""
	}
	return nil
}

// Message returns the visible message, empty when hidden.
func (f *Flash) Message() string {
	return f.message
}

func (f *Flash) View() string {
	if f.message == "" {
		return ""
	}
	return theme.Current().S().Flash.Render(f.message)
}
