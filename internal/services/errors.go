package services

import "errors"

// ValidationError carries the first offending field's message, surfaced to
// the client verbatim with a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNotFound covers both a missing resource and one owned by someone else.
// Handlers map it to 404 without distinguishing the two cases.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized covers missing or invalid credentials and sessions.
var ErrUnauthorized = errors.New("unauthorized")
