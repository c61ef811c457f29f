package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/store"
)

const reviewEventColumns = `id, card_id, session_id, reviewed_at, quality_rating, user_answer,
		correct, response_time_ms, interval_before_days, interval_after_days,
		ease_factor_before, ease_factor_after, status_before, status_after`

// defaultHistoryLimit caps ListByCard when the caller passes no limit.
const defaultHistoryLimit = 50

// PostgresReviewEventStore implements the store.ReviewEventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewEventStore creates a new PostgreSQL implementation of the ReviewEventStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewEventStore(db store.DBTX, logger *slog.Logger) *PostgresReviewEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_event_store")),
	}
}

// Ensure PostgresReviewEventStore implements store.ReviewEventStore interface
var _ store.ReviewEventStore = (*PostgresReviewEventStore)(nil)

// WithTx implements store.ReviewEventStore.WithTx
func (s *PostgresReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &PostgresReviewEventStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanReviewEvent(row rowScanner) (*domain.ReviewEvent, error) {
	var (
		event                     domain.ReviewEvent
		rating                    int
		userAnswer                sql.NullString
		responseTime              sql.NullInt64
		statusBefore, statusAfter string
	)

	err := row.Scan(
		&event.ID,
		&event.CardID,
		&event.SessionID,
		&event.ReviewedAt,
		&rating,
		&userAnswer,
		&event.Correct,
		&responseTime,
		&event.IntervalBeforeDays,
		&event.IntervalAfterDays,
		&event.EaseFactorBefore,
		&event.EaseFactorAfter,
		&statusBefore,
		&statusAfter,
	)
	if err != nil {
		return nil, err
	}

	event.QualityRating = domain.QualityRating(rating)
	event.ReviewedAt = event.ReviewedAt.UTC()
	if userAnswer.Valid {
		event.UserAnswer = &userAnswer.String
	}
	if responseTime.Valid {
		event.ResponseTimeMs = &responseTime.Int64
	}
	if event.StatusBefore, err = domain.ParseCardStatus(statusBefore); err != nil {
		return nil, fmt.Errorf("review event %s: %w", event.ID, err)
	}
	if event.StatusAfter, err = domain.ParseCardStatus(statusAfter); err != nil {
		return nil, fmt.Errorf("review event %s: %w", event.ID, err)
	}

	return &event, nil
}

// Create implements store.ReviewEventStore.Create
func (s *PostgresReviewEventStore) Create(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("review_event_id", event.ID.String()),
		slog.String("card_id", event.CardID.String()))

	if err := event.Validate(); err != nil {
		log.Warn("review event validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var userAnswer sql.NullString
	if event.UserAnswer != nil {
		userAnswer = sql.NullString{String: *event.UserAnswer, Valid: true}
	}
	var responseTime sql.NullInt64
	if event.ResponseTimeMs != nil {
		responseTime = sql.NullInt64{Int64: *event.ResponseTimeMs, Valid: true}
	}

	query := `
		INSERT INTO review_events (` + reviewEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.CardID,
		event.SessionID,
		event.ReviewedAt,
		int(event.QualityRating),
		userAnswer,
		event.Correct,
		responseTime,
		event.IntervalBeforeDays,
		event.IntervalAfterDays,
		event.EaseFactorBefore,
		event.EaseFactorAfter,
		event.StatusBefore.String(),
		event.StatusAfter.String(),
	)
	if err != nil {
		log.Error("failed to create review event", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("review event created",
		slog.String("session_id", event.SessionID.String()),
		slog.Int("quality_rating", int(event.QualityRating)))
	return nil
}

// LatestForCard implements store.ReviewEventStore.LatestForCard
func (s *PostgresReviewEventStore) LatestForCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", cardID.String()))

	query := `
		SELECT ` + reviewEventColumns + `
		FROM review_events
		WHERE card_id = $1
		ORDER BY reviewed_at DESC, seq DESC
		LIMIT 1
	`
	event, err := scanReviewEvent(s.db.QueryRowContext(ctx, query, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewEventNotFound
		}
		log.Error("failed to get latest review event", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return event, nil
}

// ListByCard implements store.ReviewEventStore.ListByCard
func (s *PostgresReviewEventStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
	limit int,
) ([]*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", cardID.String()))

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT ` + reviewEventColumns + `
		FROM review_events
		WHERE card_id = $1
		ORDER BY reviewed_at DESC, seq DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, cardID, limit)
	if err != nil {
		log.Error("failed to query review events", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := []*domain.ReviewEvent{}
	for rows.Next() {
		event, err := scanReviewEvent(rows)
		if err != nil {
			log.Error("failed to scan review event row", slog.String("error", err.Error()))
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return events, nil
}

// DeleteByVocabulary implements store.ReviewEventStore.DeleteByVocabulary
func (s *PostgresReviewEventStore) DeleteByVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("vocabulary_id", vocabularyID.String()))

	query := `
		DELETE FROM review_events
		WHERE card_id IN (SELECT id FROM cards WHERE vocabulary_id = $1)
	`
	result, err := s.db.ExecContext(ctx, query, vocabularyID)
	if err != nil {
		log.Error("failed to delete review events", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return 0, err
	}

	log.Info("review events deleted", slog.Int64("count", n))
	return n, nil
}
