// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"tasksync/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3

	// DataError indicates corrupted, undecryptable or malformed server data.
	DataError = 4

	// ConflictError indicates a write lost to a concurrent one after all retries.
	ConflictError = 5
)

// FromError maps a backend error to an exit code.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case service.IsUnauthorized(err):
		return AuthError
	case errors.Is(err, service.ErrDataCorrupted), errors.Is(err, service.ErrMalformedResponse):
		return DataError
	case service.IsConflict(err):
		return ConflictError
	default:
		return BackendError
	}
}
