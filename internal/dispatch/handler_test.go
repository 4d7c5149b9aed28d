package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsBind(t *testing.T) {
	p := Params{Required: []string{"name"}, Optional: []string{"page"}}

	tests := []struct {
		name       string
		args       Args
		missing    []string
		unexpected []string
	}{
		{name: "exact", args: Args{"name": "x"}},
		{name: "with optional", args: Args{"name": "x", "page": 2}},
		{name: "missing required", args: Args{"page": 2}, missing: []string{"name"}},
		{name: "unexpected extra", args: Args{"name": "x", "zed": 1, "alpha": 2}, unexpected: []string{"alpha", "zed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Bind(tt.args)
			if tt.missing == nil && tt.unexpected == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrBindingMismatch)
			var be *BindingError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.missing, be.Missing)
			assert.Equal(t, tt.unexpected, be.Unexpected)
		})
	}
}

func TestEmptyParamsAcceptOnlyNoCaptures(t *testing.T) {
	assert.NoError(t, Params{}.Bind(Args{}))
	assert.ErrorIs(t, Params{}.Bind(Args{"x": "y"}), ErrBindingMismatch)
}

func TestArgsGetters(t *testing.T) {
	args := Args{"s": "word", "n": 3, "f": 1.5, "b": true}

	assert.Equal(t, "word", args.String("s"))
	assert.Equal(t, "3", args.String("n"))
	assert.Equal(t, "", args.String("missing"))
	assert.Equal(t, 3, args.Int("n"))
	assert.Equal(t, 0, args.Int("s"))
	assert.Equal(t, 1.5, args.Float("f"))
	assert.True(t, args.Bool("b"))
	assert.False(t, args.Has("missing"))
}
