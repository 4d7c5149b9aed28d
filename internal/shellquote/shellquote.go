// Package shellquote splits command and route text into words and renders
// words back into the same quoting dialect.
package shellquote

import (
	"errors"
	"fmt"
	"strings"

	kshellquote "github.com/kballard/go-shellquote"
)

// ErrMalformed is returned when text has unmatched quoting or a dangling escape.
var ErrMalformed = errors.New("shellquote: malformed input")

// Split breaks text into words on whitespace. A quoted run, including any
// whitespace inside it, becomes a single word with the quotes removed.
func Split(text string) ([]string, error) {
	words, err := kshellquote.Split(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return words, nil
}

// Quote wraps s in double quotes, escaping any internal backslashes and double quotes.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\', '$', '`':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteIfNeeded quotes words that Split would otherwise break apart or reinterpret.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\r\"'\\") {
		return Quote(s)
	}
	return s
}

// Join renders words so that Split(Join(words)) returns the same words.
func Join(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = QuoteIfNeeded(w)
	}
	return strings.Join(quoted, " ")
}
