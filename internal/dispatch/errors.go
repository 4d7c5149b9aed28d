package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch indicates no registered rule accepted the command.
	ErrNoMatch = errors.New("dispatch: no matching route")

	// ErrDuplicateRoute indicates an equal route is already registered.
	ErrDuplicateRoute = errors.New("dispatch: duplicate route")

	// ErrBindingMismatch indicates captured names do not satisfy a handler's parameters.
	ErrBindingMismatch = errors.New("dispatch: handler binding mismatch")

	// ErrNilHandler indicates Register was called without a handler.
	ErrNilHandler = errors.New("dispatch: nil handler")
)

// DuplicateRouteError names the already-registered route that conflicts.
type DuplicateRouteError struct {
	Template string
	Existing string
	Mode     DuplicateMode
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("dispatch: route %q duplicates %q (%s equality)", e.Template, e.Existing, e.Mode)
}

func (e *DuplicateRouteError) Is(target error) bool {
	return target == ErrDuplicateRoute
}

// BindingError lists the names that kept captures from binding to a handler.
type BindingError struct {
	Missing    []string
	Unexpected []string
}

func (e *BindingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return "dispatch: handler binding mismatch: " + strings.Join(parts, "; ")
}

func (e *BindingError) Is(target error) bool {
	return target == ErrBindingMismatch
}
