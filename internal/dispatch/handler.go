package dispatch

import (
	"context"
	"fmt"
	"sort"
)

// Args holds the captures bound for one invocation: raw strings for untyped
// captures, converted values for typed ones.
type Args map[string]any

// Has reports whether name was captured.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the capture as a string, formatting non-string values.
func (a Args) String(name string) string {
	v, ok := a[name]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns an int capture, or 0 when absent or of another type.
func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// Float returns a float64 capture, or 0 when absent or of another type.
func (a Args) Float(name string) float64 {
	v, _ := a[name].(float64)
	return v
}

// Bool returns a bool capture, or false when absent or of another type.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// Params is a handler's declared parameter contract.
type Params struct {
	Required []string
	Optional []string
}

// Required is shorthand for a contract with only required names.
func Required(names ...string) Params {
	return Params{Required: names}
}

// Bind accepts args iff every required name is present and every present
// name is either required or optional.
func (p Params) Bind(args Args) error {
	known := make(map[string]bool, len(p.Required)+len(p.Optional))
	var missing []string
	for _, name := range p.Required {
		known[name] = true
		if !args.Has(name) {
			missing = append(missing, name)
		}
	}
	for _, name := range p.Optional {
		known[name] = true
	}

	var unexpected []string
	for name := range args {
		if !known[name] {
			unexpected = append(unexpected, name)
		}
	}

	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return &BindingError{Missing: missing, Unexpected: unexpected}
}

// Handler is invoked with the captures of a matched rule. The dispatcher
// returns whatever Handle returns without inspecting it.
type Handler interface {
	Params() Params
	Handle(ctx context.Context, args Args) (any, error)
}

// HandlerFunc adapts a function and its contract to the Handler interface.
type HandlerFunc struct {
	params Params
	fn     func(ctx context.Context, args Args) (any, error)
}

// NewHandlerFunc creates a Handler from a function.
func NewHandlerFunc(params Params, fn func(ctx context.Context, args Args) (any, error)) *HandlerFunc {
	return &HandlerFunc{params: params, fn: fn}
}

// Params returns the declared contract.
func (h *HandlerFunc) Params() Params {
	return h.params
}

// Handle calls the wrapped function.
func (h *HandlerFunc) Handle(ctx context.Context, args Args) (any, error) {
	return h.fn(ctx, args)
}
