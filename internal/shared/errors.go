package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across domain packages. Handlers map these to
// transport responses via platform/httpx.
var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate unique value.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports missing or malformed input fields. It is never
// retried and always surfaced to the caller with the deficient fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError listing the given fields.
func NewValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
