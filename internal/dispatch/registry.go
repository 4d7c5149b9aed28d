// Package dispatch holds compiled rules in specificity order and routes
// command strings to the first rule that fully matches.
//
// Lifecycle: New, then Register during setup, then Dispatch for every
// incoming command. Register may also run while dispatches are in flight;
// each successful registration publishes a new immutable snapshot, so
// Dispatch never takes a lock.
package dispatch

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scubot/tagbot/internal/route"
	"github.com/scubot/tagbot/internal/shellquote"
)

// Rule is a compiled route bound to its handler. Rules are immutable.
type Rule struct {
	template string
	route    route.Route
	handler  Handler
	key      route.SpecificityKey
}

// Template returns the template the rule was registered with.
func (r *Rule) Template() string { return r.template }

// Route returns the compiled route.
func (r *Rule) Route() route.Route { return r.route }

// Handler returns the rule's handler.
func (r *Rule) Handler() Handler { return r.handler }

// Key returns the rule's specificity key.
func (r *Rule) Key() route.SpecificityKey { return r.key }

// Registry is an ordered set of rules.
type Registry struct {
	mu    sync.Mutex // serializes writers
	rules atomic.Pointer[[]*Rule]

	converters *route.Converters
	mode       DuplicateMode
	logger     *log.Logger
	observer   Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithConverters sets the converter registry used to compile templates.
func WithConverters(c *route.Converters) Option {
	return func(r *Registry) { r.converters = c }
}

// WithDuplicateMode selects the duplicate detection relation.
func WithDuplicateMode(m DuplicateMode) Option {
	return func(r *Registry) { r.mode = m.normalize() }
}

// WithLogger sets the logger for registration and per-rule skip events.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithObserver sets an observer for dispatch outcomes.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{mode: DuplicateModeShape}
	for _, opt := range opts {
		opt(r)
	}
	if r.converters == nil {
		r.converters = route.NewConverters()
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	empty := []*Rule{}
	r.rules.Store(&empty)
	return r
}

// Converters returns the registry's converter set, for defining converters
// before templates that use them are registered.
func (r *Registry) Converters() *route.Converters {
	return r.converters
}

// Mode returns the duplicate detection mode.
func (r *Registry) Mode() DuplicateMode {
	return r.mode
}

// Rules returns the current rules in match order.
func (r *Registry) Rules() []*Rule {
	current := *r.rules.Load()
	out := make([]*Rule, len(current))
	copy(out, current)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(*r.rules.Load())
}

// Register compiles template and inserts it with h. It fails without
// changing the registry if the template does not compile or an equal route
// is already registered.
func (r *Registry) Register(template string, h Handler) error {
	if isNilHandler(h) {
		return ErrNilHandler
	}

	rt, err := route.Compile(template, r.converters)
	if err != nil {
		return err
	}
	rule := &Rule{template: template, route: rt, handler: h, key: rt.Key()}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.rules.Load()
	for _, existing := range current {
		if r.mode.equal(existing.route, rt) {
			return &DuplicateRouteError{Template: template, Existing: existing.template, Mode: r.mode}
		}
	}

	// Upper bound keeps equal keys in registration order.
	idx := sort.Search(len(current), func(i int) bool {
		return rule.key.Less(current[i].key)
	})
	next := make([]*Rule, 0, len(current)+1)
	next = append(next, current[:idx]...)
	next = append(next, rule)
	next = append(next, current[idx:]...)
	r.rules.Store(&next)

	r.logger.Debug("registered route", "template", template, "key", rule.key, "position", idx)
	if err := h.Params().Bind(placeholderArgs(rt)); err != nil {
		r.logger.Warn("route captures can never bind to its handler", "template", template, "err", err)
	}
	r.observer.ObserveRules(len(next))
	return nil
}

// Resolve finds the first rule that fully matches command and binds its
// captures, without invoking the handler.
func (r *Registry) Resolve(command string) (*Rule, Args, error) {
	rule, args, _, err := r.resolve(command)
	return rule, args, err
}

// Dispatch invokes the handler of the first rule that fully matches command
// and returns its result unchanged. It returns ErrNoMatch when no rule
// matches, including when command cannot be tokenized.
func (r *Registry) Dispatch(ctx context.Context, command string) (any, error) {
	start := time.Now()
	rule, args, outcome, err := r.resolve(command)
	r.observer.ObserveDispatch(outcome, time.Since(start))
	if err != nil {
		return nil, err
	}
	return rule.handler.Handle(ctx, args)
}

func (r *Registry) resolve(command string) (*Rule, Args, Outcome, error) {
	words, err := shellquote.Split(command)
	if err != nil {
		r.logger.Debug("command not tokenizable", "command", command, "err", err)
		return nil, nil, OutcomeMalformed, ErrNoMatch
	}

	for _, rule := range *r.rules.Load() {
		if rule.route.Len() != len(words) {
			continue
		}
		values, err := rule.route.Match(words)
		if err != nil {
			if errors.Is(err, route.ErrConversion) {
				r.logger.Debug("skipping route", "template", rule.template, "err", err)
			}
			continue
		}
		args := Args(values)
		if err := rule.handler.Params().Bind(args); err != nil {
			r.logger.Debug("skipping route", "template", rule.template, "err", err)
			continue
		}
		return rule, args, OutcomeMatched, nil
	}
	return nil, nil, OutcomeNoMatch, ErrNoMatch
}

// isNilHandler also catches a nil pointer stored in a non-nil interface.
func isNilHandler(h Handler) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func placeholderArgs(rt route.Route) Args {
	args := make(Args)
	for _, name := range rt.Captures() {
		args[name] = nil
	}
	return args
}
