// Package apperror defines the application's error taxonomy.
//
// Every failure that crosses a layer boundary is one of the sentinel errors
// below, wrapped in an AppError that carries the human-readable message (and
// optionally the offending field). Services return these; the HTTP layer maps
// them to status codes and machine-readable codes with errors.Is/As. Nothing
// outside the handler package ever sees an HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication failed")
	ErrTokenExpired    = errors.New("token expired")
	ErrInternal        = errors.New("internal error")
)

// AppError is the carrier type for every domain error.
//
// Err is one of the sentinels above so callers can branch with errors.Is.
// Message is safe to show to an API client. Field is set for validation
// errors so the client can highlight the offending input.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a record doesn't exist — or, by this application's
// convention, that it exists but belongs to another user. The two cases are
// deliberately indistinguishable so a response never confirms the existence
// of someone else's record.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports malformed or out-of-range input on a single field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a unique-constraint violation, e.g. a taken email address.
func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s: %s", resource, message),
	}
}

// Forbidden reports that the caller is known but lacks permission. Resource
// ownership mismatches do NOT use this — they return NotFound (see above) —
// but the taxonomy keeps the kind for paths where existence isn't a secret.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated reports missing, invalid, or forged credentials. The
// message is deliberately generic on login paths ("invalid email or
// password" regardless of which half was wrong) so accounts can't be
// enumerated.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// TokenExpired reports a token whose signature verified but whose expiry has
// passed. Kept distinct from Unauthenticated so clients know to refresh
// rather than re-login.
func TokenExpired() *AppError {
	return &AppError{
		Err:     ErrTokenExpired,
		Message: "token has expired",
	}
}

// Internal wraps an unexpected failure (database down, etc.). The message
// shown to clients is fixed; the underlying error is preserved for logs.
func Internal(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, err),
		Message: "an internal error occurred",
	}
}
