package dispatch

import "time"

// Outcome classifies a dispatch for observers.
type Outcome string

const (
	OutcomeMatched   Outcome = "matched"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeMalformed Outcome = "malformed"
)

// Observer receives dispatch and registration events. Elapsed covers
// tokenizing and matching only, not the handler.
type Observer interface {
	ObserveDispatch(outcome Outcome, elapsed time.Duration)
	ObserveRules(count int)
}

type nopObserver struct{}

func (nopObserver) ObserveDispatch(Outcome, time.Duration) {}
func (nopObserver) ObserveRules(int)                       {}
