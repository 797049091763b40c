package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError is a user-correctable failure attributable to a single
// field of the draft order. It is returned, never panicked, so callers can
// render it inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError constructs a field-attributable validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ReferenceDataError signals a failure to load customers, products or an
// order number. The whole form is blocked; the fetch is retryable.
type ReferenceDataError struct {
	Op  string
	Err error
}

func (e *ReferenceDataError) Error() string {
	return fmt.Sprintf("reference data: %s: %v", e.Op, e.Err)
}

func (e *ReferenceDataError) Unwrap() error { return e.Err }

// PersistenceError signals a failure during the final insert. The draft is
// preserved unmodified so the user can retry without re-entering data.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
