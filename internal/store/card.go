package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
)

// DueCursor marks the position of the last card returned by ListDue.
// The fields mirror the due queue ordering key.
type DueCursor struct {
	NextReviewAt time.Time
	EaseFactor   float64
	VocabularyID uuid.UUID
	CardID       uuid.UUID
}

// CursorAfter returns the cursor positioned on card.
func CursorAfter(card *domain.Card) *DueCursor {
	return &DueCursor{
		NextReviewAt: card.NextReviewAt,
		EaseFactor:   card.EaseFactor,
		VocabularyID: card.VocabularyID,
		CardID:       card.ID,
	}
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card.
	// Returns ErrCardExists if the vocabulary item already has a card of that type,
	// ErrReferenceMissing if the vocabulary item does not exist, and
	// ErrInvalidEntity if the card fails domain validation.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card and locks its row until the surrounding
	// transaction ends. It must be called on a store bound with WithTx.
	// Returns ErrCardNotFound if the card does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByVocabulary retrieves the card of one type for a vocabulary item.
	// Returns ErrCardNotFound if there is none.
	GetByVocabulary(
		ctx context.Context,
		vocabularyID uuid.UUID,
		cardType domain.CardType,
	) (*domain.Card, error)

	// ListByVocabulary returns every card of a vocabulary item ordered by card type.
	ListByVocabulary(ctx context.Context, vocabularyID uuid.UUID) ([]*domain.Card, error)

	// ListDue returns at most limit cards in status learning or reviewing whose
	// next review time is at or before asOf, ordered by next review time, ease
	// factor, vocabulary ID and card ID. When after is non-nil only cards strictly
	// beyond that position are returned.
	ListDue(
		ctx context.Context,
		asOf time.Time,
		after *DueCursor,
		limit int,
	) ([]*domain.Card, error)

	// Update persists the card's mutable fields if the stored version still equals
	// card.Version. On success card.Version is incremented and card.UpdatedAt is
	// set to the write time.
	// Returns ErrVersionConflict if the row changed since it was read and
	// ErrCardNotFound if it no longer exists.
	Update(ctx context.Context, card *domain.Card) error

	// DeleteByVocabulary removes every card of a vocabulary item and returns the
	// number of rows removed. Review events must be deleted first.
	DeleteByVocabulary(ctx context.Context, vocabularyID uuid.UUID) (int64, error)

	// WithTx returns a new CardStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       card, err := cardStore.WithTx(tx).GetForUpdate(ctx, id)
	//       ...
	//   })
	WithTx(tx *sql.Tx) CardStore
}
