package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

// RenderHint renders a single key-description pair.
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}

// RenderHintBar renders pairs of key and description separated by dots.
// An odd number of arguments renders nothing.
func RenderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	s := theme.Current().S()
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, RenderHint(pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, " "+s.HintSeparator.Render(".")+" ")
}

// bindingHints renders the help text of enabled bindings.
func bindingHints(bindings ...key.Binding) string {
	var pairs []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		pairs = append(pairs, h.Key, h.Desc)
	}
	return RenderHintBar(pairs...)
}
