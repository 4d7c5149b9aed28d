package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayMarkdownPlainWhenNotTTY(t *testing.T) {
	d := &DisplayContext{TermWidth: 80}
	assert.Equal(t, "bold words\n", d.Markdown("**bold** words"))
}

func TestDisplayMarkdownStyledOnTTY(t *testing.T) {
	d := &DisplayContext{TermWidth: 80, IsTTY: true}
	out := d.Markdown("**bold** words")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "words")
}
