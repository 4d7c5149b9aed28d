package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownNormalizesTrailingNewline(t *testing.T) {
	out, err := RenderMarkdown("# Heading", 80)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
	assert.Contains(t, out, "Heading")
}

func TestRenderMarkdownDefaultsWidthWhenNonPositive(t *testing.T) {
	out, err := RenderMarkdown("hello", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestConfigureMarkdownCodeTheme(t *testing.T) {
	orig := markdownCodeTheme
	t.Cleanup(func() { markdownCodeTheme = orig })

	ConfigureMarkdownCodeTheme("DrAcUlA")
	assert.Equal(t, "dracula", markdownCodeTheme)
	assert.Equal(t, "dracula", tagMarkdownStyle().CodeBlock.Theme)

	ConfigureMarkdownCodeTheme("not-a-real-theme")
	assert.Equal(t, defaultCodeTheme, markdownCodeTheme)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"emphasis", "**hello** _there_", "hello there"},
		{"heading and body", "# Title\n\nbody text", "Title\nbody text"},
		{"list", "- a\n- b", "a\nb"},
		{"paragraph then list", "intro\n\n- a\n- b", "intro\na\nb"},
		{"link", "see [docs](https://example.com)", "see docs"},
		{"inline code", "run `tag list`", "run tag list"},
		{"fenced code", "```\nx := 1\n```", "x := 1"},
		{"soft break", "one\ntwo", "one\ntwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.input))
		})
	}
}
