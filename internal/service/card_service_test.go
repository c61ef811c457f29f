package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/store"
)

var fixedNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

type serviceFixture struct {
	svc       CardService
	cardRepo  *MockCardRepository
	eventRepo *MockReviewEventRepository
	vocabRepo *MockVocabularyRepository
	sqlMock   sqlmock.Sqlmock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cardRepo := &MockCardRepository{}
	eventRepo := &MockReviewEventRepository{}
	vocabRepo := &MockVocabularyRepository{}

	cardRepo.On("DB").Return(db).Maybe()
	cardRepo.On("WithTx", mock.Anything).Return(cardRepo).Maybe()
	eventRepo.On("WithTx", mock.Anything).Return(eventRepo).Maybe()
	vocabRepo.On("WithTx", mock.Anything).Return(vocabRepo).Maybe()

	svc, err := NewCardService(cardRepo, eventRepo, vocabRepo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	t.Cleanup(func() {
		cardRepo.AssertExpectations(t)
		eventRepo.AssertExpectations(t)
		vocabRepo.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	return &serviceFixture{
		svc:       svc,
		cardRepo:  cardRepo,
		eventRepo: eventRepo,
		vocabRepo: vocabRepo,
		sqlMock:   sqlMock,
	}
}

func activeCard(t *testing.T, status domain.CardStatus) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), domain.CardTypeRecognition, fixedNow.Add(-48*time.Hour))
	require.NoError(t, err)
	card.Status = status
	return card
}

func TestNewCardService(t *testing.T) {
	tests := []struct {
		name        string
		cardRepo    CardRepository
		eventRepo   ReviewEventRepository
		vocabRepo   VocabularyRepository
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil cardRepo",
			eventRepo:   &MockReviewEventRepository{},
			vocabRepo:   &MockVocabularyRepository{},
			expectError: true,
			errorMsg:    "cardRepo",
		},
		{
			name:        "nil eventRepo",
			cardRepo:    &MockCardRepository{},
			vocabRepo:   &MockVocabularyRepository{},
			expectError: true,
			errorMsg:    "eventRepo",
		},
		{
			name:        "nil vocabRepo",
			cardRepo:    &MockCardRepository{},
			eventRepo:   &MockReviewEventRepository{},
			expectError: true,
			errorMsg:    "vocabRepo",
		},
		{
			name:      "all dependencies provided",
			cardRepo:  &MockCardRepository{},
			eventRepo: &MockReviewEventRepository{},
			vocabRepo: &MockVocabularyRepository{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewCardService(tt.cardRepo, tt.eventRepo, tt.vocabRepo, nil)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestIntroduceNew(t *testing.T) {
	t.Run("creates one card per vocabulary item and skips duplicates", func(t *testing.T) {
		f := newServiceFixture(t)
		vocab := []*domain.Vocabulary{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}

		f.vocabRepo.On("ListWithoutCard", mock.Anything, domain.CardTypeRecall, 3).Return(vocab, nil)
		f.cardRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Card) bool {
			return c.VocabularyID == vocab[1].ID
		})).Return(store.ErrCardExists).Once()
		f.cardRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		cards, err := f.svc.IntroduceNew(context.Background(), domain.CardTypeRecall, 3)
		require.NoError(t, err)
		require.Len(t, cards, 2)

		assert.Equal(t, vocab[0].ID, cards[0].VocabularyID)
		assert.Equal(t, vocab[2].ID, cards[1].VocabularyID)
		for _, c := range cards {
			assert.Equal(t, domain.CardTypeRecall, c.CardType)
			assert.Equal(t, domain.CardStatusNew, c.Status)
			assert.Equal(t, domain.DefaultEaseFactor, c.EaseFactor)
			assert.Equal(t, fixedNow, c.NextReviewAt)
		}
	})

	t.Run("returns committed cards with a mid-batch failure", func(t *testing.T) {
		f := newServiceFixture(t)
		vocab := []*domain.Vocabulary{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
		storageErr := errors.New("disk full")

		f.vocabRepo.On("ListWithoutCard", mock.Anything, domain.CardTypeRecognition, 5).Return(vocab, nil)
		f.cardRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.cardRepo.On("Create", mock.Anything, mock.Anything).Return(storageErr).Once()

		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		cards, err := f.svc.IntroduceNew(context.Background(), domain.CardTypeRecognition, 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, storageErr)
		require.Len(t, cards, 1)
		assert.Equal(t, vocab[0].ID, cards[0].VocabularyID)
	})

	t.Run("non-positive limit introduces nothing", func(t *testing.T) {
		f := newServiceFixture(t)

		cards, err := f.svc.IntroduceNew(context.Background(), domain.CardTypeRecognition, 0)
		require.NoError(t, err)
		assert.Empty(t, cards)
		f.vocabRepo.AssertNotCalled(t, "ListWithoutCard", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown card type", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.IntroduceNew(context.Background(), domain.CardType(42), 5)
		assert.ErrorIs(t, err, ErrInvalidCardType)
	})

	t.Run("selection failure", func(t *testing.T) {
		f := newServiceFixture(t)
		f.vocabRepo.On("ListWithoutCard", mock.Anything, domain.CardTypeRecognition, 5).
			Return(nil, errors.New("timeout"))

		cards, err := f.svc.IntroduceNew(context.Background(), domain.CardTypeRecognition, 5)
		require.Error(t, err)
		assert.Nil(t, cards)

		var svcErr *CardServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "introduce_new", svcErr.Operation)
	})
}

func TestCardSnapshot(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newServiceFixture(t)
		card := activeCard(t, domain.CardStatusReviewing)
		f.cardRepo.On("GetByVocabulary", mock.Anything, card.VocabularyID, domain.CardTypeRecognition).
			Return(card, nil)

		got, err := f.svc.CardSnapshot(context.Background(), card.VocabularyID, domain.CardTypeRecognition)
		require.NoError(t, err)
		assert.Equal(t, card, got)
	})

	t.Run("not found", func(t *testing.T) {
		f := newServiceFixture(t)
		vocabID := uuid.New()
		f.cardRepo.On("GetByVocabulary", mock.Anything, vocabID, domain.CardTypeListening).
			Return(nil, store.ErrCardNotFound)

		_, err := f.svc.CardSnapshot(context.Background(), vocabID, domain.CardTypeListening)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardsForVocabulary(t *testing.T) {
	f := newServiceFixture(t)
	vocabID := uuid.New()
	cards := []*domain.Card{activeCard(t, domain.CardStatusNew), activeCard(t, domain.CardStatusLearning)}
	f.cardRepo.On("ListByVocabulary", mock.Anything, vocabID).Return(cards, nil)

	got, err := f.svc.CardsForVocabulary(context.Background(), vocabID)
	require.NoError(t, err)
	assert.Equal(t, cards, got)
}

func TestOperatorActions(t *testing.T) {
	tests := []struct {
		name       string
		from       domain.CardStatus
		act        func(CardService, context.Context, uuid.UUID) (*domain.Card, error)
		wantStatus domain.CardStatus
		wantErr    error
	}{
		{
			name:       "suspend reviewing card",
			from:       domain.CardStatusReviewing,
			act:        CardService.Suspend,
			wantStatus: domain.CardStatusSuspended,
		},
		{
			name:       "suspend new card",
			from:       domain.CardStatusNew,
			act:        CardService.Suspend,
			wantStatus: domain.CardStatusSuspended,
		},
		{
			name:       "archive mastered card",
			from:       domain.CardStatusMastered,
			act:        CardService.Archive,
			wantStatus: domain.CardStatusArchived,
		},
		{
			name:       "reactivate suspended card",
			from:       domain.CardStatusSuspended,
			act:        CardService.Reactivate,
			wantStatus: domain.CardStatusLearning,
		},
		{
			name:       "reactivate archived card",
			from:       domain.CardStatusArchived,
			act:        CardService.Reactivate,
			wantStatus: domain.CardStatusLearning,
		},
		{
			name:    "reactivate active card",
			from:    domain.CardStatusLearning,
			act:     CardService.Reactivate,
			wantErr: domain.ErrInvalidStatusTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			card := activeCard(t, tt.from)
			card.IntervalDays = 12
			card.EaseFactor = 2.1

			f.cardRepo.On("GetForUpdate", mock.Anything, card.ID).Return(card.Clone(), nil)
			f.sqlMock.ExpectBegin()

			if tt.wantErr != nil {
				f.sqlMock.ExpectRollback()

				_, err := tt.act(f.svc, context.Background(), card.ID)
				assert.ErrorIs(t, err, tt.wantErr)
				f.cardRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}

			f.cardRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Card) bool {
				return c.ID == card.ID && c.Status == tt.wantStatus
			})).Return(nil)
			f.sqlMock.ExpectCommit()

			got, err := tt.act(f.svc, context.Background(), card.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, fixedNow, got.UpdatedAt)
			// Operator actions never touch the scheduling numbers.
			assert.Equal(t, card.IntervalDays, got.IntervalDays)
			assert.Equal(t, card.EaseFactor, got.EaseFactor)
			assert.Equal(t, card.NextReviewAt, got.NextReviewAt)
		})
	}
}

func TestOperatorActions_Failures(t *testing.T) {
	t.Run("missing card", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.cardRepo.On("GetForUpdate", mock.Anything, id).Return(nil, store.ErrCardNotFound)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.Suspend(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})

	t.Run("version conflict", func(t *testing.T) {
		f := newServiceFixture(t)
		card := activeCard(t, domain.CardStatusLearning)
		f.cardRepo.On("GetForUpdate", mock.Anything, card.ID).Return(card, nil)
		f.cardRepo.On("Update", mock.Anything, mock.Anything).Return(store.ErrVersionConflict)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.Archive(context.Background(), card.ID)
		assert.ErrorIs(t, err, domain.ErrScheduleConflict)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newServiceFixture(t)
		card := activeCard(t, domain.CardStatusLearning)
		f.cardRepo.On("GetForUpdate", mock.Anything, card.ID).Return(card, nil)
		f.cardRepo.On("Update", mock.Anything, mock.Anything).Return(errors.New("broken pipe"))
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.Suspend(context.Background(), card.ID)
		assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	})
}

func TestRateDifficulty(t *testing.T) {
	t.Run("records rating", func(t *testing.T) {
		f := newServiceFixture(t)
		card := activeCard(t, domain.CardStatusReviewing)
		rating := 4
		f.cardRepo.On("GetForUpdate", mock.Anything, card.ID).Return(card, nil)
		f.cardRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Card) bool {
			return c.DifficultyRating != nil && *c.DifficultyRating == 4
		})).Return(nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		got, err := f.svc.RateDifficulty(context.Background(), card.ID, &rating)
		require.NoError(t, err)
		require.NotNil(t, got.DifficultyRating)
		assert.Equal(t, 4, *got.DifficultyRating)
		assert.Equal(t, domain.CardStatusReviewing, got.Status)
	})

	t.Run("clears rating", func(t *testing.T) {
		f := newServiceFixture(t)
		card := activeCard(t, domain.CardStatusReviewing)
		previous := 2
		card.DifficultyRating = &previous
		f.cardRepo.On("GetForUpdate", mock.Anything, card.ID).Return(card, nil)
		f.cardRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		got, err := f.svc.RateDifficulty(context.Background(), card.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, got.DifficultyRating)
	})

	t.Run("out of range is rejected before storage", func(t *testing.T) {
		f := newServiceFixture(t)
		rating := 6

		_, err := f.svc.RateDifficulty(context.Background(), uuid.New(), &rating)
		assert.ErrorIs(t, err, domain.ErrInvalidDifficultyRating)
	})
}

func TestReviewHistory(t *testing.T) {
	t.Run("defaults the limit", func(t *testing.T) {
		f := newServiceFixture(t)
		card := activeCard(t, domain.CardStatusReviewing)
		events := []*domain.ReviewEvent{{ID: uuid.New(), CardID: card.ID}}
		f.cardRepo.On("GetByID", mock.Anything, card.ID).Return(card, nil)
		f.eventRepo.On("ListByCard", mock.Anything, card.ID, DefaultHistoryLimit).Return(events, nil)

		got, err := f.svc.ReviewHistory(context.Background(), card.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, events, got)
	})

	t.Run("unknown card", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.cardRepo.On("GetByID", mock.Anything, id).Return(nil, store.ErrCardNotFound)

		_, err := f.svc.ReviewHistory(context.Background(), id, 10)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})

	t.Run("negative limit", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.ReviewHistory(context.Background(), uuid.New(), -1)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})
}

func TestDeleteVocabulary(t *testing.T) {
	t.Run("deletes events then cards then vocabulary", func(t *testing.T) {
		f := newServiceFixture(t)
		vocabID := uuid.New()

		mock.InOrder(
			f.eventRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(7), nil),
			f.cardRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(2), nil),
			f.vocabRepo.On("Delete", mock.Anything, vocabID).Return(nil),
		)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		require.NoError(t, f.svc.DeleteVocabulary(context.Background(), vocabID, true))
	})

	t.Run("keeps vocabulary when not requested", func(t *testing.T) {
		f := newServiceFixture(t)
		vocabID := uuid.New()

		f.eventRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(0), nil)
		f.cardRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(1), nil)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		require.NoError(t, f.svc.DeleteVocabulary(context.Background(), vocabID, false))
		f.vocabRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing vocabulary rolls back", func(t *testing.T) {
		f := newServiceFixture(t)
		vocabID := uuid.New()

		f.eventRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(0), nil)
		f.cardRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(0), nil)
		f.vocabRepo.On("Delete", mock.Anything, vocabID).Return(store.ErrVocabularyNotFound)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		err := f.svc.DeleteVocabulary(context.Background(), vocabID, true)
		assert.ErrorIs(t, err, store.ErrVocabularyNotFound)
	})

	t.Run("card delete failure rolls back", func(t *testing.T) {
		f := newServiceFixture(t)
		vocabID := uuid.New()

		f.eventRepo.On("DeleteByVocabulary", mock.Anything, vocabID).Return(int64(3), nil)
		f.cardRepo.On("DeleteByVocabulary", mock.Anything, vocabID).
			Return(int64(0), store.ErrReferenceMissing)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		err := f.svc.DeleteVocabulary(context.Background(), vocabID, true)
		assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
		f.vocabRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
