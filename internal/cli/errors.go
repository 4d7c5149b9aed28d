// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// Routing errors
	ErrNoMatch        = "NO_MATCH"
	ErrRouteConflict  = "ROUTE_CONFLICT"
	ErrDispatchFailed = "DISPATCH_FAILED"

	// File errors
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Server errors
	ErrServerFailed = "SERVER_FAILED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
