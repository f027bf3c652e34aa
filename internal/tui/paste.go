package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SanitizePaste cleans pasted text before it reaches a panel: escape
// sequences and control characters other than tab and newline are dropped,
// CRLF becomes LF and trailing whitespace is trimmed.
func SanitizePaste(content string) string {
	content = ansi.Strip(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var b strings.Builder
	for _, r := range content {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 32 || r == 127:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " \t\n")
}

// collapseNewlines joins lines with a single space for single-line inputs.
func collapseNewlines(content string) string {
	lines := strings.FieldsFunc(content, func(r rune) bool { return r == '\n' })
	return strings.Join(lines, " ")
}
