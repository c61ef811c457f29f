package card_review

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// CardRepository defines the card operations the review service needs and
// supports transactions.
type CardRepository interface {
	// GetForUpdate retrieves a card and locks its row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListDue retrieves one page of the due queue.
	ListDue(
		ctx context.Context,
		asOf time.Time,
		after *store.DueCursor,
		limit int,
	) ([]*domain.Card, error)

	// Update persists a card with an optimistic version check.
	Update(ctx context.Context, card *domain.Card) error

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardRepository

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// ReviewEventRepository defines the review log operations the review service needs.
type ReviewEventRepository interface {
	// LatestForCard retrieves the most recent review of a card.
	LatestForCard(ctx context.Context, cardID uuid.UUID) (*domain.ReviewEvent, error)

	// Create appends a review event.
	Create(ctx context.Context, event *domain.ReviewEvent) error

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewEventRepository
}

// NewCardRepositoryAdapter creates a new adapter that allows a store.CardStore
// to be used where a CardRepository is expected.
func NewCardRepositoryAdapter(cardStore store.CardStore, db *sql.DB) CardRepository {
	return &cardRepositoryAdapter{
		cardStore: cardStore,
		db:        db,
	}
}

// cardRepositoryAdapter adapts a store.CardStore to the CardRepository interface
type cardRepositoryAdapter struct {
	cardStore store.CardStore
	db        *sql.DB
}

// GetForUpdate implements CardRepository.GetForUpdate
func (a *cardRepositoryAdapter) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return a.cardStore.GetForUpdate(ctx, id)
}

// ListDue implements CardRepository.ListDue
func (a *cardRepositoryAdapter) ListDue(
	ctx context.Context,
	asOf time.Time,
	after *store.DueCursor,
	limit int,
) ([]*domain.Card, error) {
	return a.cardStore.ListDue(ctx, asOf, after, limit)
}

// Update implements CardRepository.Update
func (a *cardRepositoryAdapter) Update(ctx context.Context, card *domain.Card) error {
	return a.cardStore.Update(ctx, card)
}

// WithTx implements CardRepository.WithTx
func (a *cardRepositoryAdapter) WithTx(tx *sql.Tx) CardRepository {
	return &cardRepositoryAdapter{
		cardStore: a.cardStore.WithTx(tx),
		db:        a.db,
	}
}

// DB implements CardRepository.DB
func (a *cardRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewReviewEventRepositoryAdapter creates a new adapter that allows a store.ReviewEventStore
// to be used where a ReviewEventRepository is expected.
func NewReviewEventRepositoryAdapter(eventStore store.ReviewEventStore) ReviewEventRepository {
	return &reviewEventRepositoryAdapter{
		eventStore: eventStore,
	}
}

// reviewEventRepositoryAdapter adapts a store.ReviewEventStore to the ReviewEventRepository interface
type reviewEventRepositoryAdapter struct {
	eventStore store.ReviewEventStore
}

// LatestForCard implements ReviewEventRepository.LatestForCard
func (a *reviewEventRepositoryAdapter) LatestForCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.ReviewEvent, error) {
	return a.eventStore.LatestForCard(ctx, cardID)
}

// Create implements ReviewEventRepository.Create
func (a *reviewEventRepositoryAdapter) Create(ctx context.Context, event *domain.ReviewEvent) error {
	return a.eventStore.Create(ctx, event)
}

// WithTx implements ReviewEventRepository.WithTx
func (a *reviewEventRepositoryAdapter) WithTx(tx *sql.Tx) ReviewEventRepository {
	return &reviewEventRepositoryAdapter{
		eventStore: a.eventStore.WithTx(tx),
	}
}
