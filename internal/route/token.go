package route

// Kind distinguishes literal words from capture placeholders.
type Kind int

const (
	// KindLiteral must match the input word exactly.
	KindLiteral Kind = iota
	// KindCapture binds the input word to a name, optionally through a converter.
	KindCapture
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// Token is one compiled word of a route.
type Token struct {
	Kind Kind

	// Text is the literal word (KindLiteral only).
	Text string

	// Name is the capture name (KindCapture only).
	Name string

	// Converter is the converter id, empty for untyped captures.
	Converter string

	convert ConvertFunc
}

// Literal returns a literal token.
func Literal(text string) Token {
	return Token{Kind: KindLiteral, Text: text}
}

// IsCapture reports whether the token is a capture placeholder.
func (t Token) IsCapture() bool {
	return t.Kind == KindCapture
}

// IsTyped reports whether the token is a capture bound to a converter.
func (t Token) IsTyped() bool {
	return t.Kind == KindCapture && t.Converter != ""
}

// String renders the token in template syntax.
func (t Token) String() string {
	if t.Kind == KindLiteral {
		return t.Text
	}
	if t.Converter == "" {
		return "<" + t.Name + ">"
	}
	return "<" + t.Name + ":" + t.Converter + ">"
}

// match checks one input word against the token. For captures it returns the
// bound value: the raw word when untyped, the converted value otherwise.
func (t Token) match(word string) (any, error) {
	if t.Kind == KindLiteral {
		if word != t.Text {
			return nil, ErrLiteralMismatch
		}
		return nil, nil
	}
	if t.convert == nil {
		return word, nil
	}
	v, err := t.convert(word)
	if err != nil {
		return nil, &ConversionError{Converter: t.Converter, Word: word, Err: err}
	}
	return v, nil
}
