package sba

import (
	"errors"
	"fmt"
)

// ErrNoWorkingCapitalData is wrapped by the ValidationError returned when
// neither balance-sheet line items nor a revenue benchmark can be used.
var ErrNoWorkingCapitalData = errors.New("cannot estimate working capital with no data")

// ValidationError reports an input that is missing, zero or negative where
// the calculator requires otherwise. It is never produced for a deal that
// merely fails eligibility.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
