package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
)

// VocabularyStore is the engine's narrow view of the externally owned dictionary.
// Apart from the orchestrated Delete it is read-only.
type VocabularyStore interface {
	// GetByID retrieves a vocabulary item.
	// Returns ErrVocabularyNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vocabulary, error)

	// ListWithoutCard returns up to limit vocabulary items that have no card of
	// cardType, oldest first.
	ListWithoutCard(
		ctx context.Context,
		cardType domain.CardType,
		limit int,
	) ([]*domain.Vocabulary, error)

	// Delete removes a vocabulary item. Its cards must be deleted first.
	// Returns ErrVocabularyNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new VocabularyStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) VocabularyStore
}
