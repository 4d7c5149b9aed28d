package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scubot/tagbot/internal/route"
	"github.com/scubot/tagbot/internal/shellquote"
)

// recorder returns a handler that reports which rule ran and with what args.
func recorder(tag string, params Params) Handler {
	return NewHandlerFunc(params, func(_ context.Context, args Args) (any, error) {
		return fmt.Sprintf("%s %v", tag, map[string]any(args)), nil
	})
}

func TestDispatchBindsSingleCapture(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("<name>", recorder("name", Required("name"))))

	for _, word := range []string{"foo", "9", "hello,"} {
		got, err := reg.Dispatch(context.Background(), word)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("name map[name:%s]", word), got)
	}
}

func TestRegisterRejectsShapeDuplicates(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("<a>", recorder("a", Required("a"))))

	err := reg.Register("<b>", recorder("b", Required("b")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRoute)

	var dup *DuplicateRouteError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "<a>", dup.Existing)
	assert.Equal(t, 1, reg.Len())

	err = reg.Register("drop <x>", recorder("drop", Required("x")))
	require.NoError(t, err)
	err = reg.Register("new <x>", recorder("new", Required("x")))
	assert.ErrorIs(t, err, ErrDuplicateRoute, "literal text is not compared in shape mode")
}

func TestRegisterExactModeAllowsDistinctLiterals(t *testing.T) {
	reg := New(WithDuplicateMode(DuplicateModeExact))
	require.NoError(t, reg.Register("new <x>", recorder("new", Required("x"))))
	require.NoError(t, reg.Register("drop <x>", recorder("drop", Required("x"))))
	assert.ErrorIs(t, reg.Register("new <y>", recorder("new2", Required("y"))), ErrDuplicateRoute)

	got, err := reg.Dispatch(context.Background(), "drop it")
	require.NoError(t, err)
	assert.Equal(t, "drop map[x:it]", got)
}

func TestTypedCaptureWinsOverUntyped(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("<foo>", recorder("untyped", Required("foo"))))
	require.NoError(t, reg.Register("<foo:int>", recorder("int", Required("foo"))))

	got, err := reg.Dispatch(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "int map[foo:9]", got)

	got, err = reg.Dispatch(context.Background(), "nine")
	require.NoError(t, err)
	assert.Equal(t, "untyped map[foo:nine]", got)
}

func TestLiteralWinsOverCapture(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("<foo>", recorder("capture", Required("foo"))))
	require.NoError(t, reg.Register("bar", recorder("literal", Params{})))

	got, err := reg.Dispatch(context.Background(), "bar")
	require.NoError(t, err)
	assert.Equal(t, "literal map[]", got)

	rules := reg.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "bar", rules[0].Template())
	assert.Equal(t, route.SpecificityKey{Captures: 0, Untyped: 0}, rules[0].Key())
}

func TestQuotedPhraseBindsAsOneWord(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("new <name> <value>", recorder("new", Required("name", "value"))))

	rule, args, err := reg.Resolve(`new db "leave a message after the lionfish"`)
	require.NoError(t, err)
	assert.Equal(t, "new <name> <value>", rule.Template())
	assert.Equal(t, "db", args.String("name"))
	assert.Equal(t, "leave a message after the lionfish", args.String("value"))
}

func TestConversionFailureYieldsNoMatch(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("<foo:int>", recorder("int", Required("foo"))))

	got, err := reg.Dispatch(context.Background(), "notanumber")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMalformedCommandYieldsNoMatch(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("<foo>", recorder("foo", Required("foo"))))

	_, err := reg.Dispatch(context.Background(), `"unterminated`)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestBindingMismatchSkipsToNextRule(t *testing.T) {
	reg := New()
	// Same specificity, registered first, but its handler wants "bar".
	require.NoError(t, reg.Register("<foo>", recorder("bad", Required("bar"))))
	require.NoError(t, reg.Register("x <foo>", recorder("other", Required("foo"))))

	_, err := reg.Dispatch(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoMatch)

	reg2 := New(WithDuplicateMode(DuplicateModeExact))
	require.NoError(t, reg2.Register("<foo:int>", recorder("bad", Required("bar"))))
	require.NoError(t, reg2.Register("<foo>", recorder("good", Required("foo"))))
	got, err := reg2.Dispatch(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "good map[foo:9]", got)
}

func TestEqualKeysKeepRegistrationOrder(t *testing.T) {
	reg := New(WithDuplicateMode(DuplicateModeExact))
	require.NoError(t, reg.Register("<a> x", recorder("first", Required("a"))))
	require.NoError(t, reg.Register("<b> <c:int>", recorder("typed", Required("b", "c"))))
	require.NoError(t, reg.Register("y <a>", recorder("second", Required("a"))))
	require.NoError(t, reg.Register("<a> <b>", recorder("third", Required("a", "b"))))

	var templates []string
	for _, r := range reg.Rules() {
		templates = append(templates, r.Template())
	}
	assert.Equal(t, []string{"<a> x", "y <a>", "<b> <c:int>", "<a> <b>"}, templates)

	// "y x" matches both single-capture rules; the earlier registration wins.
	got, err := reg.Dispatch(context.Background(), "y x")
	require.NoError(t, err)
	assert.Equal(t, "first map[a:y]", got)
}

func TestRegisterErrorsLeaveRegistryUnchanged(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("ok", recorder("ok", Params{})))

	assert.ErrorIs(t, reg.Register("<x:nope>", recorder("x", Required("x"))), route.ErrUnknownConverter)
	assert.ErrorIs(t, reg.Register(`"broken`, recorder("x", Params{})), shellquote.ErrMalformed)
	assert.ErrorIs(t, reg.Register("fine", nil), ErrNilHandler)
	var typedNil *HandlerFunc
	assert.ErrorIs(t, reg.Register("fine", typedNil), ErrNilHandler)
	assert.Equal(t, 1, reg.Len())
}

func TestCustomConverter(t *testing.T) {
	conv := route.NewConverters()
	require.NoError(t, conv.Define("even", func(word string) (any, error) {
		var n int
		if _, err := fmt.Sscanf(word, "%d", &n); err != nil || n%2 != 0 {
			return nil, fmt.Errorf("not even: %s", word)
		}
		return n, nil
	}))

	reg := New(WithConverters(conv))
	require.NoError(t, reg.Register("<n:even>", recorder("even", Required("n"))))

	got, err := reg.Dispatch(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, "even map[n:4]", got)

	_, err = reg.Dispatch(context.Background(), "3")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestHandlerResultPropagatesUnchanged(t *testing.T) {
	reg := New()
	boom := errors.New("boom")
	pending := make(chan string, 1)
	require.NoError(t, reg.Register("fail", NewHandlerFunc(Params{}, func(context.Context, Args) (any, error) {
		return "partial", boom
	})))
	require.NoError(t, reg.Register("later", NewHandlerFunc(Params{}, func(context.Context, Args) (any, error) {
		return (<-chan string)(pending), nil
	})))

	got, err := reg.Dispatch(context.Background(), "fail")
	assert.Equal(t, "partial", got)
	assert.ErrorIs(t, err, boom)

	got, err = reg.Dispatch(context.Background(), "later")
	require.NoError(t, err)
	ch, ok := got.(<-chan string)
	require.True(t, ok)
	pending <- "done"
	assert.Equal(t, "done", <-ch)
}

func TestContextReachesHandler(t *testing.T) {
	type key struct{}
	reg := New()
	require.NoError(t, reg.Register("who", NewHandlerFunc(Params{}, func(ctx context.Context, _ Args) (any, error) {
		return ctx.Value(key{}), nil
	})))

	ctx := context.WithValue(context.Background(), key{}, "caller-1")
	got, err := reg.Dispatch(ctx, "who")
	require.NoError(t, err)
	assert.Equal(t, "caller-1", got)
}

func TestRegisterWarnsOnUnbindableRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	reg := New(WithLogger(logger))
	require.NoError(t, reg.Register("<foo>", recorder("bad", Required("bar"))))
	assert.Contains(t, buf.String(), "can never bind")
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	rules    int
}

func (o *countingObserver) ObserveDispatch(outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func (o *countingObserver) ObserveRules(count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rules = count
}

func TestObserverSeesOutcomes(t *testing.T) {
	obs := &countingObserver{outcomes: make(map[Outcome]int)}
	reg := New(WithObserver(obs))
	require.NoError(t, reg.Register("ping", recorder("ping", Params{})))

	_, _ = reg.Dispatch(context.Background(), "ping")
	_, _ = reg.Dispatch(context.Background(), "pong")
	_, _ = reg.Dispatch(context.Background(), `"bad`)

	assert.Equal(t, 1, obs.outcomes[OutcomeMatched])
	assert.Equal(t, 1, obs.outcomes[OutcomeNoMatch])
	assert.Equal(t, 1, obs.outcomes[OutcomeMalformed])
	assert.Equal(t, 1, obs.rules)
}

func TestConcurrentRegisterAndDispatch(t *testing.T) {
	reg := New(WithDuplicateMode(DuplicateModeExact))
	require.NoError(t, reg.Register("ping", recorder("ping", Params{})))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = reg.Register(fmt.Sprintf("cmd%d_%d <x>", i, j), recorder("c", Required("x")))
				got, err := reg.Dispatch(context.Background(), "ping")
				if assert.NoError(t, err) {
					assert.Equal(t, "ping map[]", got)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1+8*50, reg.Len())
}

func TestRegistriesAreIsolated(t *testing.T) {
	a := New()
	b := New()
	require.NoError(t, a.Register("only", recorder("a", Params{})))

	_, err := b.Dispatch(context.Background(), "only")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestParseDuplicateMode(t *testing.T) {
	m, err := ParseDuplicateMode("")
	require.NoError(t, err)
	assert.Equal(t, DuplicateModeShape, m)

	m, err = ParseDuplicateMode(" Exact ")
	require.NoError(t, err)
	assert.Equal(t, DuplicateModeExact, m)

	_, err = ParseDuplicateMode("loose")
	assert.Error(t, err)
}
