package api

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/service/card_review"
	"github.com/stretchr/testify/mock"
)

// MockCardService mocks service.CardService
type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) IntroduceNew(
	ctx context.Context,
	cardType domain.CardType,
	limit int,
) ([]*domain.Card, error) {
	args := m.Called(ctx, cardType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardService) CardSnapshot(
	ctx context.Context,
	vocabularyID uuid.UUID,
	cardType domain.CardType,
) (*domain.Card, error) {
	args := m.Called(ctx, vocabularyID, cardType)
	return cardOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCardService) CardsForVocabulary(ctx context.Context, vocabularyID uuid.UUID) ([]*domain.Card, error) {
	args := m.Called(ctx, vocabularyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardService) Suspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, cardID)
	return cardOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCardService) Archive(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, cardID)
	return cardOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCardService) Reactivate(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, cardID)
	return cardOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCardService) RateDifficulty(ctx context.Context, cardID uuid.UUID, rating *int) (*domain.Card, error) {
	args := m.Called(ctx, cardID, rating)
	return cardOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCardService) ReviewHistory(
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

func (m *MockCardService) DeleteVocabulary(ctx context.Context, vocabularyID uuid.UUID, includeVocabulary bool) error {
	args := m.Called(ctx, vocabularyID, includeVocabulary)
	return args.Error(0)
}

func cardOrNil(v any) *domain.Card {
	if v == nil {
		return nil
	}
	return v.(*domain.Card)
}

// MockCardReviewService mocks card_review.CardReviewService. NextDue replays
// the configured cards, then the configured error if any.
type MockCardReviewService struct {
	mock.Mock
}

func (m *MockCardReviewService) NextDue(
	ctx context.Context,
	limit int,
	asOf time.Time,
) iter.Seq2[*domain.Card, error] {
	args := m.Called(ctx, limit, asOf)
	cards, _ := args.Get(0).([]*domain.Card)
	err := args.Error(1)
	return func(yield func(*domain.Card, error) bool) {
		for _, c := range cards {
			if !yield(c, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

func (m *MockCardReviewService) RecordReview(
	ctx context.Context,
	req card_review.ReviewRequest,
) (*domain.ReviewEvent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewEvent), args.Error(1)
}
