package news

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested story or article does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a bad request parameter. It is always returned
// before any query runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
