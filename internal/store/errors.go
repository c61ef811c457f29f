package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrCardNotFound, ErrVocabularyNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second card of one type for a vocabulary item).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConflict is returned when a write lost a race against a concurrent
	// transaction: serialization failures, deadlocks and lock timeouts.
	ErrConflict = errors.New("concurrent modification")

	// ErrVersionConflict is returned when an optimistic version check fails
	// because the row changed since it was read.
	ErrVersionConflict = fmt.Errorf("%w: version mismatch", ErrConflict)

	// ErrReferenceMissing is returned when a row references a parent that does not exist.
	ErrReferenceMissing = fmt.Errorf("%w: referenced entity does not exist", ErrInvalidEntity)

	// Entity-specific "not found" errors

	// ErrCardNotFound indicates that the requested card does not exist in the store.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrVocabularyNotFound indicates that the requested vocabulary item does not exist.
	ErrVocabularyNotFound = fmt.Errorf("%w: vocabulary", ErrNotFound)

	// ErrReviewEventNotFound indicates that no matching review event exists.
	ErrReviewEventNotFound = fmt.Errorf("%w: review event", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrCardExists indicates that the vocabulary item already has a card of that type.
	ErrCardExists = fmt.Errorf("%w: card", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// Transient SQLSTATE codes that signal a lost race rather than a broken request.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// sqlStateError is implemented by driver errors that expose a SQLSTATE code,
// such as *pgconn.PgError.
type sqlStateError interface {
	SQLState() string
}

// IsConflictError reports whether err signals a concurrent modification, either
// as one of the conflict sentinels or as a driver error carrying a serialization,
// deadlock or lock-timeout SQLSTATE.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) {
		return true
	}

	var stateErr sqlStateError
	if errors.As(err, &stateErr) {
		switch stateErr.SQLState() {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return true
		}
	}
	return false
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "card", "review_event")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
