package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// CardRepository defines the repository interface for the service layer
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetByVocabulary(ctx context.Context, vocabularyID uuid.UUID, cardType domain.CardType) (*domain.Card, error)
	ListByVocabulary(ctx context.Context, vocabularyID uuid.UUID) ([]*domain.Card, error)
	Update(ctx context.Context, card *domain.Card) error
	DeleteByVocabulary(ctx context.Context, vocabularyID uuid.UUID) (int64, error)

	// WithTx returns a new repository instance that uses the provided transaction
	// This is used for transactional operations
	WithTx(tx *sql.Tx) CardRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// ReviewEventRepository defines the review log operations the card service needs
type ReviewEventRepository interface {
	ListByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]*domain.ReviewEvent, error)
	DeleteByVocabulary(ctx context.Context, vocabularyID uuid.UUID) (int64, error)
	WithTx(tx *sql.Tx) ReviewEventRepository
}

// VocabularyRepository defines the dictionary operations the card service needs
type VocabularyRepository interface {
	ListWithoutCard(ctx context.Context, cardType domain.CardType, limit int) ([]*domain.Vocabulary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) VocabularyRepository
}

// NewCardRepositoryAdapter creates a new adapter that allows a store.CardStore
// to be used where a CardRepository is expected.
func NewCardRepositoryAdapter(cardStore store.CardStore, db *sql.DB) CardRepository {
	return &cardRepositoryAdapter{
		CardStore: cardStore,
		db:        db,
	}
}

// cardRepositoryAdapter adapts a store.CardStore to the CardRepository interface.
// Every method except WithTx and DB is promoted from the embedded store.
type cardRepositoryAdapter struct {
	store.CardStore
	db *sql.DB
}

// WithTx implements CardRepository.WithTx
func (a *cardRepositoryAdapter) WithTx(tx *sql.Tx) CardRepository {
	return &cardRepositoryAdapter{
		CardStore: a.CardStore.WithTx(tx),
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
	return &reviewEventRepositoryAdapter{ReviewEventStore: eventStore}
}

type reviewEventRepositoryAdapter struct {
	store.ReviewEventStore
}

// WithTx implements ReviewEventRepository.WithTx
func (a *reviewEventRepositoryAdapter) WithTx(tx *sql.Tx) ReviewEventRepository {
	return &reviewEventRepositoryAdapter{ReviewEventStore: a.ReviewEventStore.WithTx(tx)}
}

// NewVocabularyRepositoryAdapter creates a new adapter that allows a store.VocabularyStore
// to be used where a VocabularyRepository is expected.
func NewVocabularyRepositoryAdapter(vocabStore store.VocabularyStore) VocabularyRepository {
	return &vocabularyRepositoryAdapter{VocabularyStore: vocabStore}
}

type vocabularyRepositoryAdapter struct {
	store.VocabularyStore
}

// WithTx implements VocabularyRepository.WithTx
func (a *vocabularyRepositoryAdapter) WithTx(tx *sql.Tx) VocabularyRepository {
	return &vocabularyRepositoryAdapter{VocabularyStore: a.VocabularyStore.WithTx(tx)}
}
