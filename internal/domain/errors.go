package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrInvalidStatus is returned when a matching is not in a source status
	// allowed for the requested transition. Under concurrency this is also what
	// the losing side of a race receives; callers should refresh and retry.
	ErrInvalidStatus = errors.New("invalid matching status")

	// ErrQuotaExceeded is returned when a per-profile allowance (rejections,
	// cancellations, concurrent matches) has been used up.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrCounterpartUnavailable is returned by manual matching when the named
	// profile is not currently waiting in the opposite role.
	ErrCounterpartUnavailable = errors.New("counterpart not available")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
