package card_review

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
)

// ReviewRequest carries one learner response to a card.
type ReviewRequest struct {
	CardID        uuid.UUID            `json:"card_id"`
	SessionID     uuid.UUID            `json:"session_id"`
	QualityRating domain.QualityRating `json:"quality_rating"`
	UserAnswer    *string              `json:"user_answer,omitempty"`
	// ResponseTimeMs is optional; when present it must not be negative.
	ResponseTimeMs *int64 `json:"response_time_ms,omitempty"`
}

// CardReviewService provides the due queue and records reviews
// using a spaced repetition algorithm.
type CardReviewService interface {
	// NextDue lazily yields cards in status learning or reviewing whose next
	// review time is at or before asOf, at most limit of them.
	//
	// Cards are ordered by next review time, then ease factor (hardest first),
	// then vocabulary ID, then card ID. Pages are fetched from storage only as
	// the sequence is consumed, so breaking out of the loop early performs no
	// further queries. Each range over the returned sequence starts afresh.
	//
	// A storage failure is yielded once as a non-nil error wrapping
	// domain.ErrPersistenceFailure, after which the sequence ends.
	// A limit of zero or less yields nothing.
	//
	// NextDue never locks rows and never modifies data.
	NextDue(ctx context.Context, limit int, asOf time.Time) iter.Seq2[*domain.Card, error]

	// RecordReview applies one review to a card and appends its audit event.
	//
	// This method performs several operations within a single transaction:
	// 1. Locks the card row and checks that the card is schedulable
	// 2. Loads the card's latest review event
	// 3. Computes the next scheduling state
	// 4. Appends the review event and persists the card with a version check
	//
	// Returns:
	//   - (*domain.ReviewEvent, nil): the stored audit event
	//   - domain.ErrInvalidRating / domain.ErrInvalidResponseTime: rejected before storage is touched
	//   - domain.ErrCardNotSchedulable: the card is missing, suspended or archived
	//   - domain.ErrScheduleConflict: a concurrent review of the same card won; retry the review
	//   - domain.ErrPersistenceFailure: storage failed and nothing was written
	RecordReview(ctx context.Context, req ReviewRequest) (*domain.ReviewEvent, error)
}

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "next_due", "record_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewRecordReviewError returns a new ServiceError for the record_review operation.
func NewRecordReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "record_review",
		Message:   message,
		Err:       err,
	}
}

// NewNextDueError returns a new ServiceError for the next_due operation.
func NewNextDueError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "next_due",
		Message:   message,
		Err:       err,
	}
}
