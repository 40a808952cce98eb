package crowd

import (
	"errors"
	"fmt"
)

// ValidationError marks a client-input failure (bad day-for-month,
// malformed clock, reversed date range). Handlers map it to 400;
// every other error in this package is internal.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
