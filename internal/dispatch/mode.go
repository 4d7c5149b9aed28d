package dispatch

import (
	"fmt"
	"strings"

	"github.com/scubot/tagbot/internal/route"
)

// DuplicateMode controls which routes Register treats as duplicates.
type DuplicateMode string

const (
	// DuplicateModeShape compares length, capture positions and the
	// converter at each capture only. Two routes that differ only in literal
	// words, such as "tag new <name>" and "tag edit <name>", collide. This is
	// the default.
	//
	// NOTE: this rejects routes that are distinguishable at match time. It is
	// kept as the default on purpose; integrators who need literal-distinct
	// routes of the same shape opt into DuplicateModeExact.
	DuplicateModeShape DuplicateMode = "shape"

	// DuplicateModeExact additionally compares literal text, so only routes
	// that no command could ever tell apart collide.
	DuplicateModeExact DuplicateMode = "exact"
)

// ParseDuplicateMode parses a mode name. The empty string selects the default.
func ParseDuplicateMode(s string) (DuplicateMode, error) {
	switch DuplicateMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicateModeShape:
		return DuplicateModeShape, nil
	case DuplicateModeExact:
		return DuplicateModeExact, nil
	default:
		return "", fmt.Errorf("unknown duplicate mode %q (want %q or %q)", s, DuplicateModeShape, DuplicateModeExact)
	}
}

func (m DuplicateMode) normalize() DuplicateMode {
	if m == DuplicateModeExact {
		return DuplicateModeExact
	}
	return DuplicateModeShape
}

func (m DuplicateMode) String() string {
	return string(m.normalize())
}

func (m DuplicateMode) equal(a, b route.Route) bool {
	if m.normalize() == DuplicateModeExact {
		return a.ExactEqual(b)
	}
	return a.ShapeEqual(b)
}
