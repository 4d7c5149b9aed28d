package bot

import "context"

// Caller identifies who sent a message. The transport fills it in.
type Caller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type callerKey struct{}

// WithCaller attaches the caller to ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller attached to ctx.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok && c.ID != ""
}

// DisplayName returns the caller's name, falling back to the id.
func (c Caller) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
