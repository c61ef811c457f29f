package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// DefaultHistoryLimit caps ReviewHistory when the caller passes no limit.
const DefaultHistoryLimit = 50

// CardService provides card lifecycle operations outside the review path.
type CardService interface {
	// IntroduceNew creates up to limit cards of cardType for vocabulary items
	// that have none, oldest items first. Each card is created in its own
	// transaction; items that gained a card concurrently are skipped.
	//
	// If a creation fails, the cards committed so far are returned together
	// with the error.
	IntroduceNew(ctx context.Context, cardType domain.CardType, limit int) ([]*domain.Card, error)

	// CardSnapshot returns the card of one type for a vocabulary item.
	CardSnapshot(ctx context.Context, vocabularyID uuid.UUID, cardType domain.CardType) (*domain.Card, error)

	// CardsForVocabulary returns every card of a vocabulary item ordered by card type.
	CardsForVocabulary(ctx context.Context, vocabularyID uuid.UUID) ([]*domain.Card, error)

	// Suspend takes a card out of scheduling.
	Suspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// Archive retires a card.
	Archive(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// Reactivate returns a suspended or archived card to learning. Any other
	// status yields domain.ErrInvalidStatusTransition.
	Reactivate(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// RateDifficulty records the learner's 1-5 difficulty estimate, or clears
	// it when rating is nil. It never affects scheduling.
	RateDifficulty(ctx context.Context, cardID uuid.UUID, rating *int) (*domain.Card, error)

	// ReviewHistory returns up to limit review events of a card, newest first.
	ReviewHistory(ctx context.Context, cardID uuid.UUID, limit int) ([]*domain.ReviewEvent, error)

	// DeleteVocabulary removes the review events and cards of a vocabulary
	// item, and the item itself when includeVocabulary is set, in one transaction.
	DeleteVocabulary(ctx context.Context, vocabularyID uuid.UUID, includeVocabulary bool) error
}

// CardServiceOption configures a CardService.
type CardServiceOption func(*cardServiceImpl)

// WithClock replaces the clock used to stamp new cards.
func WithClock(now func() time.Time) CardServiceOption {
	return func(s *cardServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardRepo  CardRepository
	eventRepo ReviewEventRepository
	vocabRepo VocabularyRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewCardService creates a new CardService
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cardRepo CardRepository,
	eventRepo ReviewEventRepository,
	vocabRepo VocabularyRepository,
	logger *slog.Logger,
	opts ...CardServiceOption,
) (CardService, error) {
	// Validate dependencies
	if cardRepo == nil {
		return nil, domain.NewValidationError("cardRepo", "cannot be nil", domain.ErrValidation)
	}
	if eventRepo == nil {
		return nil, domain.NewValidationError("eventRepo", "cannot be nil", domain.ErrValidation)
	}
	if vocabRepo == nil {
		return nil, domain.NewValidationError("vocabRepo", "cannot be nil", domain.ErrValidation)
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardServiceImpl{
		cardRepo:  cardRepo,
		eventRepo: eventRepo,
		vocabRepo: vocabRepo,
		logger:    logger.With(slog.String("component", "card_service")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IntroduceNew implements CardService.IntroduceNew
func (s *cardServiceImpl) IntroduceNew(
	ctx context.Context,
	cardType domain.CardType,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("card_type", cardType.String()))

	if !cardType.IsValid() {
		return nil, NewCardServiceError("introduce_new", "unknown card type", ErrInvalidCardType)
	}
	if limit <= 0 {
		return []*domain.Card{}, nil
	}

	candidates, err := s.vocabRepo.ListWithoutCard(ctx, cardType, limit)
	if err != nil {
		log.Error("failed to list vocabulary without cards",
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("introduce_new", "failed to select vocabulary", err)
	}

	created := make([]*domain.Card, 0, len(candidates))
	skipped := 0
	for _, vocab := range candidates {
		card, err := domain.NewCard(vocab.ID, cardType, s.now())
		if err != nil {
			return created, NewCardServiceError("introduce_new", "failed to build card", err)
		}

		err = store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
			return s.cardRepo.WithTx(tx).Create(ctx, card)
		})
		if err != nil {
			if store.IsDuplicateError(err) {
				log.Debug("vocabulary already has a card, skipping",
					slog.String("vocabulary_id", vocab.ID.String()))
				skipped++
				continue
			}
			log.Error("failed to introduce card",
				slog.String("error", err.Error()),
				slog.String("vocabulary_id", vocab.ID.String()),
				slog.Int("created", len(created)))
			return created, NewCardServiceError("introduce_new", "failed to create card", err)
		}

		created = append(created, card)
	}

	log.Info("introduced new cards",
		slog.Int("created", len(created)),
		slog.Int("skipped", skipped),
		slog.Int("limit", limit))

	return created, nil
}

// CardSnapshot implements CardService.CardSnapshot
func (s *cardServiceImpl) CardSnapshot(
	ctx context.Context,
	vocabularyID uuid.UUID,
	cardType domain.CardType,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !cardType.IsValid() {
		return nil, NewCardServiceError("card_snapshot", "unknown card type", ErrInvalidCardType)
	}

	card, err := s.cardRepo.GetByVocabulary(ctx, vocabularyID, cardType)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewCardServiceError("card_snapshot", "card not found", store.ErrCardNotFound)
		}
		log.Error("failed to retrieve card",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocabularyID.String()),
			slog.String("card_type", cardType.String()))
		return nil, NewCardServiceError("card_snapshot", "failed to retrieve card", err)
	}

	return card, nil
}

// CardsForVocabulary implements CardService.CardsForVocabulary
func (s *cardServiceImpl) CardsForVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
) ([]*domain.Card, error) {
	cards, err := s.cardRepo.ListByVocabulary(ctx, vocabularyID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", vocabularyID.String()))
		return nil, NewCardServiceError("cards_for_vocabulary", "failed to list cards", err)
	}
	return cards, nil
}

// Suspend implements CardService.Suspend
func (s *cardServiceImpl) Suspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return s.mutate(ctx, "suspend", cardID, func(card *domain.Card, now time.Time) error {
		card.Suspend(now)
		return nil
	})
}

// Archive implements CardService.Archive
func (s *cardServiceImpl) Archive(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return s.mutate(ctx, "archive", cardID, func(card *domain.Card, now time.Time) error {
		card.Archive(now)
		return nil
	})
}

// Reactivate implements CardService.Reactivate
func (s *cardServiceImpl) Reactivate(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return s.mutate(ctx, "reactivate", cardID, func(card *domain.Card, now time.Time) error {
		return card.Reactivate(now)
	})
}

// RateDifficulty implements CardService.RateDifficulty
func (s *cardServiceImpl) RateDifficulty(
	ctx context.Context,
	cardID uuid.UUID,
	rating *int,
) (*domain.Card, error) {
	if rating != nil && (*rating < domain.MinDifficultyRating || *rating > domain.MaxDifficultyRating) {
		return nil, NewCardServiceError("rate_difficulty", "rating out of range",
			domain.NewValidationError("difficulty_rating", "must be between 1 and 5", domain.ErrInvalidDifficultyRating))
	}

	return s.mutate(ctx, "rate_difficulty", cardID, func(card *domain.Card, _ time.Time) error {
		return card.SetDifficultyRating(rating)
	})
}

// mutate locks a card, applies change and persists it with the version check.
func (s *cardServiceImpl) mutate(
	ctx context.Context,
	operation string,
	cardID uuid.UUID,
	change func(card *domain.Card, now time.Time) error,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("operation", operation),
		slog.String("card_id", cardID.String()))

	var updated *domain.Card
	err := store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		cardRepo := s.cardRepo.WithTx(tx)

		card, err := cardRepo.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}

		from := card.Status
		if err := change(card, s.now()); err != nil {
			return err
		}

		if err := cardRepo.Update(ctx, card); err != nil {
			return err
		}

		log.Debug("card updated",
			slog.String("from_status", from.String()),
			slog.String("to_status", card.Status.String()))
		updated = card
		return nil
	})
	if err != nil {
		switch {
		case store.IsNotFoundError(err):
			return nil, NewCardServiceError(operation, "card not found", store.ErrCardNotFound)
		case errors.Is(err, domain.ErrInvalidStatusTransition),
			errors.Is(err, domain.ErrInvalidDifficultyRating):
			log.Debug("card change rejected", slog.String("error", err.Error()))
			return nil, NewCardServiceError(operation, "change not allowed", err)
		case store.IsConflictError(err):
			log.Warn("concurrent card update", slog.String("error", err.Error()))
			return nil, NewCardServiceError(operation, "card was modified concurrently",
				fmt.Errorf("%w: %w", domain.ErrScheduleConflict, err))
		default:
			log.Error("failed to update card", slog.String("error", err.Error()))
			return nil, NewCardServiceError(operation, "failed to update card",
				fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err))
		}
	}

	return updated, nil
}

// ReviewHistory implements CardService.ReviewHistory
func (s *cardServiceImpl) ReviewHistory(
	ctx context.Context,
	cardID uuid.UUID,
	limit int,
) ([]*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit < 0 {
		return nil, NewCardServiceError("review_history", "negative limit", ErrInvalidLimit)
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	if _, err := s.cardRepo.GetByID(ctx, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewCardServiceError("review_history", "card not found", store.ErrCardNotFound)
		}
		log.Error("failed to retrieve card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("review_history", "failed to retrieve card", err)
	}

	events, err := s.eventRepo.ListByCard(ctx, cardID, limit)
	if err != nil {
		log.Error("failed to list review events",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("review_history", "failed to list review events", err)
	}

	return events, nil
}

// DeleteVocabulary implements CardService.DeleteVocabulary
// Review events go first, then cards, then the vocabulary row, so no
// foreign key ever points at a deleted parent.
func (s *cardServiceImpl) DeleteVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
	includeVocabulary bool,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("vocabulary_id", vocabularyID.String()),
		slog.Bool("include_vocabulary", includeVocabulary))

	var eventsDeleted, cardsDeleted int64
	err := store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		var err error
		eventsDeleted, err = s.eventRepo.WithTx(tx).DeleteByVocabulary(ctx, vocabularyID)
		if err != nil {
			return fmt.Errorf("failed to delete review events: %w", err)
		}

		cardsDeleted, err = s.cardRepo.WithTx(tx).DeleteByVocabulary(ctx, vocabularyID)
		if err != nil {
			return fmt.Errorf("failed to delete cards: %w", err)
		}

		if includeVocabulary {
			if err := s.vocabRepo.WithTx(tx).Delete(ctx, vocabularyID); err != nil {
				return fmt.Errorf("failed to delete vocabulary: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewCardServiceError("delete_vocabulary", "vocabulary not found", store.ErrVocabularyNotFound)
		}
		log.Error("failed to delete vocabulary", slog.String("error", err.Error()))
		return NewCardServiceError("delete_vocabulary", "failed to delete vocabulary",
			fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err))
	}

	log.Info("deleted vocabulary data",
		slog.Int64("review_events", eventsDeleted),
		slog.Int64("cards", cardsDeleted))
	return nil
}
