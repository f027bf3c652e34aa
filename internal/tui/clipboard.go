package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/threadfeed/threadfeed/internal/logger"
)

type copyResultMsg struct {
	ok bool
}

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// copyCmd copies text off the update loop. Failures are logged and
// otherwise ignored.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			logger.Debug("clipboard copy failed: %v", err)
			return copyResultMsg{ok: false}
		}
		return copyResultMsg{ok: true}
	}
}
