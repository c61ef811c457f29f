package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockCardRepository mocks the CardRepository interface
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) GetByVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
	cardType domain.CardType,
) (*domain.Card, error) {
	args := m.Called(ctx, vocabularyID, cardType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) ListByVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
) ([]*domain.Card, error) {
	args := m.Called(ctx, vocabularyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardRepository) Update(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteByVocabulary(ctx context.Context, vocabularyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, vocabularyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) WithTx(tx *sql.Tx) CardRepository {
	args := m.Called(tx)
	return args.Get(0).(CardRepository)
}

func (m *MockCardRepository) DB() *sql.DB {
	args := m.Called()
	return args.Get(0).(*sql.DB)
}

// MockReviewEventRepository mocks the ReviewEventRepository interface
type MockReviewEventRepository struct {
	mock.Mock
}

func (m *MockReviewEventRepository) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
	limit int,
) ([]*domain.ReviewEvent, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewEvent), args.Error(1)
}

func (m *MockReviewEventRepository) DeleteByVocabulary(ctx context.Context, vocabularyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, vocabularyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewEventRepository) WithTx(tx *sql.Tx) ReviewEventRepository {
	args := m.Called(tx)
	return args.Get(0).(ReviewEventRepository)
}

// MockVocabularyRepository mocks the VocabularyRepository interface
type MockVocabularyRepository struct {
	mock.Mock
}

func (m *MockVocabularyRepository) ListWithoutCard(
	ctx context.Context,
	cardType domain.CardType,
	limit int,
) ([]*domain.Vocabulary, error) {
	args := m.Called(ctx, cardType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vocabulary), args.Error(1)
}

func (m *MockVocabularyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVocabularyRepository) WithTx(tx *sql.Tx) VocabularyRepository {
	args := m.Called(tx)
	return args.Get(0).(VocabularyRepository)
}
