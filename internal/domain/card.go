package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Scheduling constants every card starts from.
const (
	// MinEaseFactor is the hard floor for a card's ease factor.
	MinEaseFactor = 1.3

	// DefaultEaseFactor is the ease factor of a newly introduced card.
	DefaultEaseFactor = 2.5

	// MinDifficultyRating and MaxDifficultyRating bound the optional user rating.
	MinDifficultyRating = 1
	MaxDifficultyRating = 5
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardVocabularyIDEmpty is returned when a card's vocabulary ID is empty or nil.
	ErrCardVocabularyIDEmpty = errors.New("card vocabulary ID cannot be empty")

	// ErrInvalidCardType is returned when a card type is not one of the declared modalities.
	ErrInvalidCardType = errors.New("invalid card type")

	// ErrInvalidCardStatus is returned when a card status is not one of the declared states.
	ErrInvalidCardStatus = errors.New("invalid card status")

	// ErrInvalidEaseFactor is returned when an ease factor is below MinEaseFactor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidInterval is returned when an interval is negative.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidCounter is returned when a review counter is negative.
	ErrInvalidCounter = errors.New("review counters cannot be negative")

	// ErrInvalidDifficultyRating is returned when a difficulty rating lies outside 1–5.
	ErrInvalidDifficultyRating = errors.New("difficulty rating must be between 1 and 5")

	// ErrNextReviewMissing is returned when a card that left "new" has no next review time.
	ErrNextReviewMissing = errors.New("next review time must be set")
)

// Card is the scheduling state of one vocabulary item under one review modality.
// A vocabulary item has at most one card per CardType.
type Card struct {
	ID                 uuid.UUID  `json:"id"`
	VocabularyID       uuid.UUID  `json:"vocabulary_id"`
	CardType           CardType   `json:"card_type"`
	Status             CardStatus `json:"status"`
	EaseFactor         float64    `json:"ease_factor"`
	IntervalDays       float64    `json:"interval_days"`
	ReviewCount        int        `json:"review_count"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	Lapses             int        `json:"lapses"`
	NextReviewAt       time.Time  `json:"next_review_at"`
	LastReviewedAt     *time.Time `json:"last_reviewed_at,omitempty"`
	DifficultyRating   *int       `json:"difficulty_rating,omitempty"`

	// Version is incremented by every persisted write and guards against
	// concurrent read-modify-write cycles.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a card in status new with the default scheduling state.
// The card is due immediately.
func NewCard(vocabularyID uuid.UUID, cardType CardType, now time.Time) (*Card, error) {
	now = now.UTC()
	card := &Card{
		ID:           uuid.New(),
		VocabularyID: vocabularyID,
		CardType:     cardType,
		Status:       CardStatusNew,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		NextReviewAt: now,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks the invariants that hold for every card at rest.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.VocabularyID == uuid.Nil {
		return ErrCardVocabularyIDEmpty
	}

	if !c.CardType.IsValid() {
		return ErrInvalidCardType
	}

	if !c.Status.IsValid() {
		return ErrInvalidCardStatus
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if c.ReviewCount < 0 || c.ConsecutiveCorrect < 0 || c.Lapses < 0 {
		return ErrInvalidCounter
	}

	if c.Status != CardStatusNew && c.NextReviewAt.IsZero() {
		return ErrNextReviewMissing
	}

	if c.DifficultyRating != nil &&
		(*c.DifficultyRating < MinDifficultyRating || *c.DifficultyRating > MaxDifficultyRating) {
		return ErrInvalidDifficultyRating
	}

	return nil
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	clone := *c
	if c.LastReviewedAt != nil {
		t := *c.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	if c.DifficultyRating != nil {
		r := *c.DifficultyRating
		clone.DifficultyRating = &r
	}
	return &clone
}

// IsSchedulable reports whether reviews may be recorded against the card.
func (c *Card) IsSchedulable() bool {
	return c.Status.IsSchedulable()
}

// IsDue reports whether the card belongs in the due queue at asOf.
// New cards are surfaced by the introducer, not the due queue.
func (c *Card) IsDue(asOf time.Time) bool {
	if c.Status != CardStatusLearning && c.Status != CardStatusReviewing {
		return false
	}
	return !c.NextReviewAt.After(asOf)
}

// Suspend takes the card out of scheduling until it is reactivated.
// It is legal from every state.
func (c *Card) Suspend(now time.Time) {
	c.Status = CardStatusSuspended
	c.UpdatedAt = now.UTC()
}

// Archive retires the card from scheduling. It is legal from every state.
func (c *Card) Archive(now time.Time) {
	c.Status = CardStatusArchived
	c.UpdatedAt = now.UTC()
}

// Reactivate returns a suspended or archived card to learning.
// Numeric scheduling fields are left untouched.
func (c *Card) Reactivate(now time.Time) error {
	if c.Status != CardStatusSuspended && c.Status != CardStatusArchived {
		return ErrInvalidStatusTransition
	}
	c.Status = CardStatusLearning
	c.UpdatedAt = now.UTC()
	return nil
}

// SetDifficultyRating records the learner's own difficulty estimate.
// A nil rating clears it.
func (c *Card) SetDifficultyRating(rating *int) error {
	if rating != nil && (*rating < MinDifficultyRating || *rating > MaxDifficultyRating) {
		return ErrInvalidDifficultyRating
	}
	c.DifficultyRating = rating
	return nil
}
