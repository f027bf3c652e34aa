package tui

import (
	"bytes"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

// syntaxHighlight applies syntax highlighting to source code and returns
// a string with ANSI color codes for terminal display.
//
// The lexer comes from fileName, then from content analysis, then plain
// text. Token backgrounds are replaced with the code block background.
func syntaxHighlight(source, fileName string) string {
	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return highlightWith(lexer, source)
}

// highlightDiff colors a unified diff.
func highlightDiff(diff string) string {
	lexer := lexers.Get("diff")
	if lexer == nil {
		return diff
	}
	return highlightWith(lexer, diff)
}

func highlightWith(lexer chroma.Lexer, source string) string {
	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	bg := chroma.MustParseColour(theme.Current().BgSurface0)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bg
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}

// changeDiff returns the unified diff for a file change, computing it from
// the before and after contents when the producer sent none.
func changeDiff(fc conversation.FileChange) string {
	if strings.TrimSpace(fc.Diff) != "" {
		return strings.TrimRight(fc.Diff, "\n")
	}
	if fc.Before == "" && fc.After == "" {
		return ""
	}
	return strings.TrimRight(udiff.Unified("a/"+fc.Path, "b/"+fc.Path, fc.Before, fc.After), "\n")
}

// diffStat counts added and removed lines, ignoring file headers.
func diffStat(diff string) (added, removed int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
