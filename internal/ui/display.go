package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is the fallback terminal width when detection fails.
const DefaultTermWidth = 100

// DisplayContext holds display parameters, auto-detecting terminal width.
type DisplayContext struct {
	TermWidth int  // detected or fallback terminal width
	IsTTY     bool // whether the output is a terminal
}

// NewDisplayContext detects the terminal behind f.
func NewDisplayContext(f *os.File) *DisplayContext {
	fd := f.Fd()
	isTTY := term.IsTerminal(fd)

	width := DefaultTermWidth
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	return &DisplayContext{
		TermWidth: width,
		IsTTY:     isTTY,
	}
}

// Markdown renders content for this display: styled on a terminal, plain
// text otherwise. Rendering failures fall back to plain text.
func (d *DisplayContext) Markdown(content string) string {
	if !d.IsTTY {
		return PlainText(content) + "\n"
	}
	out, err := RenderMarkdown(content, d.TermWidth)
	if err != nil {
		return PlainText(content) + "\n"
	}
	return out
}
