package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// DrawStyled renders lipgloss-styled content sized to the area
func DrawStyled(scr uv.Screen, area uv.Rectangle, style lipgloss.Style, text string) {
	content := style.Width(area.Dx()).MaxHeight(area.Dy()).Render(text)
	uv.NewStyledString(content).Draw(scr, area)
}

// DrawRule renders "title ────" across the area's first row.
func DrawRule(scr uv.Screen, area uv.Rectangle, title string, titleStyle, ruleStyle lipgloss.Style) {
	styled := titleStyle.Render(title)
	width := area.Dx() - lipgloss.Width(styled) - 1
	if width < 0 {
		width = 0
	}
	row := uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1)
	uv.NewStyledString(styled + " " + ruleStyle.Render(strings.Repeat("─", width))).Draw(scr, row)
}
