package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/scubot/tagbot/internal/bot"
	"github.com/scubot/tagbot/internal/dispatch"
	"github.com/scubot/tagbot/internal/metrics"
	"github.com/scubot/tagbot/internal/tags"
)

// app is the wired runtime behind the bot commands.
type app struct {
	store     *tags.Store
	registry  *dispatch.Registry
	collector *metrics.Collector
	bot       *bot.Bot
}

// codedError carries the CLI error code for a wiring failure.
type codedError struct {
	code       string
	suggestion string
	err        error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func (o *rootOptions) openApp() (*app, error) {
	store, err := tags.Open(o.cfg.DatabasePath())
	if err != nil {
		return nil, &codedError{code: ErrDatabaseError, err: err}
	}

	mode, err := o.cfg.DuplicateMode()
	if err != nil {
		store.Close()
		return nil, &codedError{code: ErrConfigInvalid, err: err}
	}

	collector := metrics.NewCollector()
	registry := dispatch.New(
		dispatch.WithDuplicateMode(mode),
		dispatch.WithLogger(o.logger),
		dispatch.WithObserver(collector),
	)

	b, err := bot.New(store, registry, bot.Options{
		Prefix:   o.cfg.Prefix(),
		PageSize: o.cfg.PageSize(),
		Logger:   o.logger,
	})
	if err != nil {
		store.Close()
		if errors.Is(err, dispatch.ErrDuplicateRoute) {
			return nil, &codedError{
				code:       ErrRouteConflict,
				suggestion: fmt.Sprintf("The tag commands need duplicate_mode %q; set it under [router] or pass --duplicate-mode exact", dispatch.DuplicateModeExact),
				err:        err,
			}
		}
		return nil, &codedError{code: ErrInternal, err: err}
	}

	return &app{store: store, registry: registry, collector: collector, bot: b}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// appError reports an openApp failure through handleError.
func (o *rootOptions) appError(w io.Writer, err error) error {
	var ce *codedError
	if errors.As(err, &ce) {
		return o.handleError(w, ce.code, ce.err, ce.suggestion)
	}
	return o.handleError(w, ErrInternal, err, "")
}
