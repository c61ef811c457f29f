package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
)

// ReviewEventStore defines the interface for the append-only review log.
type ReviewEventStore interface {
	// Create appends a review event.
	// Returns ErrReferenceMissing if the card does not exist and ErrInvalidEntity
	// if the event fails domain validation.
	Create(ctx context.Context, event *domain.ReviewEvent) error

	// LatestForCard returns the most recent review of a card.
	// Returns ErrReviewEventNotFound if the card has never been reviewed.
	LatestForCard(ctx context.Context, cardID uuid.UUID) (*domain.ReviewEvent, error)

	// ListByCard returns up to limit reviews of a card, newest first.
	ListByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]*domain.ReviewEvent, error)

	// DeleteByVocabulary removes the review events of every card of a
	// vocabulary item and returns the number of rows removed.
	DeleteByVocabulary(ctx context.Context, vocabularyID uuid.UUID) (int64, error)

	// WithTx returns a new ReviewEventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewEventStore
}
