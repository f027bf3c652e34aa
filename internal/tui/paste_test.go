package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePaste(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "color codes", input: "\x1b[31mred text\x1b[0m", want: "red text"},
		{name: "256 colors", input: "\x1b[38;5;196mred\x1b[0m", want: "red"},
		{name: "cursor control", input: "\x1b[2K\x1b[1Gclear line", want: "clear line"},
		{name: "null bytes", input: "hello\x00world\x00", want: "helloworld"},
		{name: "control chars", input: "a\x01b\x07c\x0bd\x7f", want: "abcd"},
		{name: "tabs and newlines kept", input: "a\tb\nc", want: "a\tb\nc"},
		{name: "crlf", input: "one\r\ntwo\r\n", want: "one\ntwo"},
		{name: "trailing whitespace", input: "text  \n\n\t", want: "text"},
		{name: "plain", input: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizePaste(tt.input))
		})
	}
}

func TestCollapseNewlines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "one two three", collapseNewlines("one\ntwo\n\n\nthree"))
	assert.Equal(t, "keep  spacing", collapseNewlines("keep  spacing"))
	assert.Equal(t, "lead", collapseNewlines("\nlead\n"))
}
