package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrMissingProductID = errors.New("missing product id")
	ErrMissingName      = errors.New("missing material name")
	ErrMissingUnitPrice = errors.New("missing unit price")
	ErrNegativeQuality  = errors.New("negative quality score")
	ErrNegativeArea     = errors.New("negative area")
	ErrInvalidUserType  = errors.New("invalid user type")
	ErrMissingTaskID    = errors.New("missing task id")
	ErrMissingQuoteID   = errors.New("missing quote id")
	ErrMissingVerdict   = errors.New("missing verdict")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
