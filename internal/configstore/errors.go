package configstore

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the owner has no entry for the requested key.
var ErrNotFound = errors.New("not found")

// ValidationError represents an unprocessable input (HTTP 422). Field names
// the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
