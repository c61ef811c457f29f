package card_review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/domain/srs"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// DefaultDuePageSize is the number of cards NextDue fetches per query.
const DefaultDuePageSize = 50

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// Option configures a CardReviewService.
type Option func(*cardReviewServiceImpl)

// WithClock replaces the clock used to timestamp reviews.
func WithClock(now func() time.Time) Option {
	return func(s *cardReviewServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDuePageSize sets how many cards NextDue fetches per query.
// Values below 1 keep the default.
func WithDuePageSize(size int) Option {
	return func(s *cardReviewServiceImpl) {
		if size > 0 {
			s.duePageSize = size
		}
	}
}

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	cardRepo    CardRepository
	eventRepo   ReviewEventRepository
	srsService  srs.Service
	logger      *slog.Logger
	now         func() time.Time
	duePageSize int
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	cardRepo CardRepository,
	eventRepo ReviewEventRepository,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) CardReviewService {
	// Validate inputs
	if cardRepo == nil {
		panic("cardRepo cannot be nil")
	}
	if eventRepo == nil {
		panic("eventRepo cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardReviewServiceImpl{
		cardRepo:    cardRepo,
		eventRepo:   eventRepo,
		srsService:  srsService,
		logger:      logger.With(slog.String("component", "card_review_service")),
		now:         time.Now,
		duePageSize: DefaultDuePageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextDue implements CardReviewService.NextDue.
func (s *cardReviewServiceImpl) NextDue(
	ctx context.Context,
	limit int,
	asOf time.Time,
) iter.Seq2[*domain.Card, error] {
	return func(yield func(*domain.Card, error) bool) {
		if limit <= 0 {
			return
		}

		log := logger.FromContextOrDefault(ctx, s.logger)
		asOf = asOf.UTC()

		var cursor *store.DueCursor
		remaining := limit
		for remaining > 0 {
			if err := ctx.Err(); err != nil {
				yield(nil, NewNextDueError("iteration cancelled", err))
				return
			}

			pageSize := min(s.duePageSize, remaining)
			cards, err := s.cardRepo.ListDue(ctx, asOf, cursor, pageSize)
			if err != nil {
				log.Error("failed to fetch due cards",
					slog.String("error", err.Error()),
					slog.Time("as_of", asOf),
					slog.Int("page_size", pageSize))
				yield(nil, NewNextDueError(
					"failed to fetch due cards",
					fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err),
				))
				return
			}

			log.Debug("fetched due page",
				slog.Int("cards", len(cards)),
				slog.Bool("first_page", cursor == nil))

			for _, card := range cards {
				if !yield(card, nil) {
					return
				}
				remaining--
			}

			// A short page means the queue is exhausted.
			if len(cards) < pageSize {
				return
			}
			cursor = store.CursorAfter(cards[len(cards)-1])
		}
	}
}

// RecordReview implements CardReviewService.RecordReview.
func (s *cardReviewServiceImpl) RecordReview(
	ctx context.Context,
	req ReviewRequest,
) (*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("card_id", req.CardID.String()),
		slog.String("session_id", req.SessionID.String()))

	if err := validateRequest(req); err != nil {
		log.Debug("rejected review request", slog.String("error", err.Error()))
		return nil, NewRecordReviewError("invalid review request", err)
	}

	reviewedAt := s.now().UTC()

	var (
		event   *domain.ReviewEvent
		updated *domain.Card
	)
	err := s.runInTransaction(ctx,
		func(ctx context.Context, cardRepo CardRepository, eventRepo ReviewEventRepository) error {
			card, err := cardRepo.GetForUpdate(ctx, req.CardID)
			if err != nil {
				if errors.Is(err, store.ErrCardNotFound) {
					return fmt.Errorf("card does not exist: %w", domain.ErrCardNotSchedulable)
				}
				return fmt.Errorf("failed to lock card: %w", err)
			}

			if !card.IsSchedulable() {
				return fmt.Errorf("card is %s: %w", card.Status, domain.ErrCardNotSchedulable)
			}

			previous, err := eventRepo.LatestForCard(ctx, card.ID)
			if err != nil {
				if !errors.Is(err, store.ErrReviewEventNotFound) {
					return fmt.Errorf("failed to load latest review: %w", err)
				}
				previous = nil
			}

			next, err := s.srsService.ScheduleReview(card, req.QualityRating, reviewedAt, previous)
			if err != nil {
				return fmt.Errorf("failed to schedule review: %w", err)
			}

			ev, err := domain.NewReviewEvent(
				card,
				next,
				req.SessionID,
				req.QualityRating,
				req.UserAnswer,
				req.ResponseTimeMs,
				reviewedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to build review event: %w", err)
			}

			if err := eventRepo.Create(ctx, ev); err != nil {
				return fmt.Errorf("failed to append review event: %w", err)
			}

			if err := cardRepo.Update(ctx, next); err != nil {
				return fmt.Errorf("failed to persist card: %w", err)
			}

			event = ev
			updated = next
			return nil
		},
	)
	if err != nil {
		return nil, s.classifyRecordError(log, err)
	}

	log.Debug("recorded review",
		slog.Int("quality_rating", int(event.QualityRating)),
		slog.String("status", updated.Status.String()),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Float64("interval_days", updated.IntervalDays),
		slog.Time("next_review_at", updated.NextReviewAt))

	return event, nil
}

// classifyRecordError maps a failed review transaction onto the service's error taxonomy.
func (s *cardReviewServiceImpl) classifyRecordError(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrCardNotSchedulable):
		log.Debug("card not schedulable", slog.String("error", err.Error()))
		return NewRecordReviewError("card cannot be reviewed", err)

	case store.IsConflictError(err):
		log.Warn("concurrent review detected", slog.String("error", err.Error()))
		return NewRecordReviewError(
			"card was modified concurrently",
			fmt.Errorf("%w: %w", domain.ErrScheduleConflict, err),
		)

	default:
		log.Error("failed to record review", slog.String("error", err.Error()))
		return NewRecordReviewError(
			"failed to record review",
			fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err),
		)
	}
}

// runInTransaction runs fn in a transaction with repositories bound to it.
func (s *cardReviewServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, CardRepository, ReviewEventRepository) error,
) error {
	return store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.cardRepo.WithTx(tx), s.eventRepo.WithTx(tx))
	})
}

// validateRequest rejects requests that can be refused without touching storage.
func validateRequest(req ReviewRequest) error {
	if !req.QualityRating.IsValid() {
		return fmt.Errorf("rating %d: %w", req.QualityRating, domain.ErrInvalidRating)
	}
	if req.ResponseTimeMs != nil && *req.ResponseTimeMs < 0 {
		return fmt.Errorf("response time %d: %w", *req.ResponseTimeMs, domain.ErrInvalidResponseTime)
	}
	if req.CardID == uuid.Nil {
		return domain.NewValidationError("card_id", "is required", domain.ErrInvalidID)
	}
	if req.SessionID == uuid.Nil {
		return domain.NewValidationError("session_id", "is required", domain.ErrValidation)
	}
	return nil
}
