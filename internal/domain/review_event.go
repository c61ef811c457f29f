package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// QualityRating is the learner's self-reported recall quality, 0 (blackout) to 5 (perfect).
type QualityRating int

// Rating bounds and the passing threshold.
const (
	MinQualityRating QualityRating = 0
	MaxQualityRating QualityRating = 5

	// PassingRating is the lowest rating that counts as a correct recall.
	PassingRating QualityRating = 3
)

// IsValid reports whether r lies within [0,5].
func (r QualityRating) IsValid() bool {
	return r >= MinQualityRating && r <= MaxQualityRating
}

// IsCorrect reports whether r counts as a successful recall.
func (r QualityRating) IsCorrect() bool {
	return r >= PassingRating
}

// Review event validation errors
var (
	ErrReviewEventIDEmpty   = errors.New("review event ID cannot be empty")
	ErrReviewCardIDEmpty    = errors.New("review event card ID cannot be empty")
	ErrReviewSessionIDEmpty = errors.New("review event session ID cannot be empty")
	ErrReviewTimeMissing    = errors.New("review time must be set")
	ErrReviewCorrectness    = errors.New("correct flag does not match quality rating")
)

// ReviewEvent is the immutable audit record of one review. The before/after
// snapshots make every scheduling decision reproducible.
type ReviewEvent struct {
	ID             uuid.UUID     `json:"id"`
	CardID         uuid.UUID     `json:"card_id"`
	SessionID      uuid.UUID     `json:"session_id"`
	ReviewedAt     time.Time     `json:"reviewed_at"`
	QualityRating  QualityRating `json:"quality_rating"`
	UserAnswer     *string       `json:"user_answer,omitempty"`
	Correct        bool          `json:"correct"`
	ResponseTimeMs *int64        `json:"response_time_ms,omitempty"`

	IntervalBeforeDays float64    `json:"interval_before_days"`
	IntervalAfterDays  float64    `json:"interval_after_days"`
	EaseFactorBefore   float64    `json:"ease_factor_before"`
	EaseFactorAfter    float64    `json:"ease_factor_after"`
	StatusBefore       CardStatus `json:"status_before"`
	StatusAfter        CardStatus `json:"status_after"`
}

// NewReviewEvent builds the event for a review that moved a card from before to after.
func NewReviewEvent(
	before, after *Card,
	sessionID uuid.UUID,
	rating QualityRating,
	userAnswer *string,
	responseTimeMs *int64,
	reviewedAt time.Time,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:                 uuid.New(),
		CardID:             before.ID,
		SessionID:          sessionID,
		ReviewedAt:         reviewedAt.UTC(),
		QualityRating:      rating,
		UserAnswer:         userAnswer,
		Correct:            rating.IsCorrect(),
		ResponseTimeMs:     responseTimeMs,
		IntervalBeforeDays: before.IntervalDays,
		IntervalAfterDays:  after.IntervalDays,
		EaseFactorBefore:   before.EaseFactor,
		EaseFactorAfter:    after.EaseFactor,
		StatusBefore:       before.Status,
		StatusAfter:        after.Status,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks the event's invariants.
func (e *ReviewEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrReviewEventIDEmpty
	}

	if e.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}

	if e.SessionID == uuid.Nil {
		return ErrReviewSessionIDEmpty
	}

	if e.ReviewedAt.IsZero() {
		return ErrReviewTimeMissing
	}

	if !e.QualityRating.IsValid() {
		return ErrInvalidRating
	}

	if e.Correct != e.QualityRating.IsCorrect() {
		return ErrReviewCorrectness
	}

	if e.ResponseTimeMs != nil && *e.ResponseTimeMs < 0 {
		return ErrInvalidResponseTime
	}

	return nil
}

// EaseNotDecreased reports whether this review left the ease factor at or above its prior value.
func (e *ReviewEvent) EaseNotDecreased() bool {
	return e.EaseFactorAfter >= e.EaseFactorBefore
}
