// Package route compiles route templates into token sequences and matches
// command words against them.
//
// A template is a whitespace-separated list of words. A word of the form
// <name> or <name:converter> is a capture; every other word is a literal.
// Quoting follows the shellquote dialect, so "two words" is one literal.
package route

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scubot/tagbot/internal/shellquote"
)

var captureRe = regexp.MustCompile(`^<([A-Za-z0-9_]+)(?::([^>]+))?>$`)

// Route is a compiled template. Its length never changes after compilation.
type Route struct {
	tokens []Token
}

// Compile tokenizes template and resolves every typed capture against converters.
func Compile(template string, converters *Converters) (Route, error) {
	words, err := shellquote.Split(template)
	if err != nil {
		return Route{}, fmt.Errorf("route %q: %w", template, err)
	}
	if len(words) == 0 {
		return Route{}, fmt.Errorf("%w: %q", ErrEmptyRoute, template)
	}

	tokens := make([]Token, 0, len(words))
	seen := make(map[string]bool)
	for _, word := range words {
		m := captureRe.FindStringSubmatch(word)
		if m == nil {
			tokens = append(tokens, Literal(word))
			continue
		}

		name, conv := m[1], m[2]
		if seen[name] {
			return Route{}, fmt.Errorf("%w: %q in %q", ErrDuplicateCapture, name, template)
		}
		seen[name] = true

		tok := Token{Kind: KindCapture, Name: name, Converter: conv}
		if conv != "" {
			var fn ConvertFunc
			var ok bool
			if converters != nil {
				fn, ok = converters.Lookup(conv)
			}
			if !ok {
				return Route{}, &UnknownConverterError{Template: template, Converter: conv}
			}
			tok.convert = fn
		}
		tokens = append(tokens, tok)
	}

	return Route{tokens: tokens}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string, converters *Converters) Route {
	r, err := Compile(template, converters)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of words the route matches.
func (r Route) Len() int {
	return len(r.tokens)
}

// Tokens returns a copy of the route's tokens.
func (r Route) Tokens() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// Captures returns the capture names in route order.
func (r Route) Captures() []string {
	var names []string
	for _, t := range r.tokens {
		if t.IsCapture() {
			names = append(names, t.Name)
		}
	}
	return names
}

// Key returns the route's specificity key.
func (r Route) Key() SpecificityKey {
	var k SpecificityKey
	for _, t := range r.tokens {
		if !t.IsCapture() {
			continue
		}
		k.Captures++
		if !t.IsTyped() {
			k.Untyped++
		}
	}
	return k
}

// ShapeEqual reports whether two routes have the same length, captures at
// the same positions, and the same converter id at each capture position.
// An untyped capture never equals a typed one, so "<foo>" and "<foo:int>"
// can coexist and the typed one is tried first.
//
// Literal text and capture names are not compared, so "new <a>" and
// "drop <b>" are equal under this relation. Registries use it for duplicate
// detection unless configured otherwise.
func (r Route) ShapeEqual(o Route) bool {
	if len(r.tokens) != len(o.tokens) {
		return false
	}
	for i, a := range r.tokens {
		b := o.tokens[i]
		if a.IsCapture() != b.IsCapture() {
			return false
		}
		if a.IsCapture() && a.Converter != b.Converter {
			return false
		}
	}
	return true
}

// ExactEqual is ShapeEqual plus equal text at every literal position.
func (r Route) ExactEqual(o Route) bool {
	if !r.ShapeEqual(o) {
		return false
	}
	for i, a := range r.tokens {
		if a.Kind == KindLiteral && a.Text != o.tokens[i].Text {
			return false
		}
	}
	return true
}

// Equal reports token-for-token identity, including capture names.
func (r Route) Equal(o Route) bool {
	if len(r.tokens) != len(o.tokens) {
		return false
	}
	for i, a := range r.tokens {
		b := o.tokens[i]
		if a.Kind != b.Kind || a.Text != b.Text || a.Name != b.Name || a.Converter != b.Converter {
			return false
		}
	}
	return true
}

// String renders the route as a template that compiles back to an equal route.
func (r Route) String() string {
	words := make([]string, len(r.tokens))
	for i, t := range r.tokens {
		if t.IsCapture() {
			words[i] = t.String()
			continue
		}
		words[i] = shellquote.QuoteIfNeeded(t.Text)
	}
	return strings.Join(words, " ")
}

// Match walks the route and words pairwise. On success it returns the bound
// captures: raw words for untyped captures, converted values for typed ones.
func (r Route) Match(words []string) (map[string]any, error) {
	if len(words) != len(r.tokens) {
		return nil, ErrLengthMismatch
	}

	values := make(map[string]any)
	for i, t := range r.tokens {
		v, err := t.match(words[i])
		if err != nil {
			return nil, err
		}
		if t.IsCapture() {
			values[t.Name] = v
		}
	}
	return values, nil
}
