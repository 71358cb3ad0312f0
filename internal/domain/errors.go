package domain

import "errors"

var (
	// ErrAlreadySubscribed is returned when a signup collides with an
	// existing subscriber for the same normalized email. Both the pre-check
	// and the unique index on subscribers.email map to this error.
	ErrAlreadySubscribed = errors.New("email already subscribed")

	// ErrNotFound is returned when no subscriber matches the given ID.
	ErrNotFound = errors.New("subscriber not found")
)

// ValidationError marks user-correctable input problems (missing or
// malformed fields). Handlers translate it to HTTP 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
