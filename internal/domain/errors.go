// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a quality rating lies outside [0,5].
	// It is always raised before any storage is touched.
	ErrInvalidRating = errors.New("invalid quality rating")

	// ErrInvalidResponseTime is returned when a response time is negative.
	ErrInvalidResponseTime = errors.New("invalid response time")

	// ErrCardNotSchedulable is returned when a review targets a card that is
	// suspended, archived or does not exist.
	ErrCardNotSchedulable = errors.New("card not schedulable")

	// ErrScheduleConflict is returned when a concurrent mutation of the same
	// card was detected. Callers should retry the whole review.
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrPersistenceFailure is returned when the underlying storage failed.
	// The surrounding transaction has been rolled back.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrInvalidStatusTransition is returned when an operator action is not
	// legal from the card's current status.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
