package tui

import (
	"strings"

	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/ansi"
)

const maxMarkdownWidth = 120

// markdownRenderer keeps one glamour renderer per wrap width. Building a
// renderer parses the style sheet, so it is reused across rows.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (m *markdownRenderer) get(width int) *glamour.TermRenderer {
	if m.renderer != nil && m.width == width {
		return m.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.width, m.renderer = width, r
	return r
}

// render renders markdown content, falling back to plain wrapped text if
// glamour fails.
func (m *markdownRenderer) render(content string, width int) string {
	if width > maxMarkdownWidth {
		width = maxMarkdownWidth
	}
	if width < 1 {
		width = 1
	}
	r := m.get(width)
	if r == nil {
		return wrapText(content, width)
	}
	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	// glamour pads with blank lines above and below
	return strings.Trim(rendered, "\n")
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wrap(text, width, "")
}
