package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// cardColumns is the column list every card query selects, in scanCard order.
const cardColumns = `id, vocabulary_id, card_type, status, ease_factor, interval_days,
		review_count, consecutive_correct, lapses, next_review_at, last_reviewed_at,
		difficulty_rating, version, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
		now:    s.now,
	}
}

// scanCard reads one row selected with cardColumns.
func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card             domain.Card
		cardType, status string
		lastReviewedAt   sql.NullTime
		difficulty       sql.NullInt32
	)

	err := row.Scan(
		&card.ID,
		&card.VocabularyID,
		&cardType,
		&status,
		&card.EaseFactor,
		&card.IntervalDays,
		&card.ReviewCount,
		&card.ConsecutiveCorrect,
		&card.Lapses,
		&card.NextReviewAt,
		&lastReviewedAt,
		&difficulty,
		&card.Version,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if card.CardType, err = domain.ParseCardType(cardType); err != nil {
		return nil, fmt.Errorf("card %s: %w", card.ID, err)
	}
	if card.Status, err = domain.ParseCardStatus(status); err != nil {
		return nil, fmt.Errorf("card %s: %w", card.ID, err)
	}
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time.UTC()
		card.LastReviewedAt = &t
	}
	if difficulty.Valid {
		r := int(difficulty.Int32)
		card.DifficultyRating = &r
	}
	card.NextReviewAt = card.NextReviewAt.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()

	return &card, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableRating(r *int) sql.NullInt32 {
	if r == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*r), Valid: true}
}

// Create implements store.CardStore.Create
// It saves a new card to the database, handling domain validation.
// Returns store.ErrCardExists if the vocabulary item already has a card of the same type.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.VocabularyID,
		card.CardType.String(),
		card.Status.String(),
		card.EaseFactor,
		card.IntervalDays,
		card.ReviewCount,
		card.ConsecutiveCorrect,
		card.Lapses,
		card.NextReviewAt,
		nullableTime(card.LastReviewedAt),
		nullableRating(card.DifficultyRating),
		card.Version,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("card already exists for vocabulary and type",
				slog.String("vocabulary_id", card.VocabularyID.String()),
				slog.String("card_type", card.CardType.String()))
			return MapUniqueViolation(err, store.ErrCardExists)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("vocabulary_id", card.VocabularyID.String()))
		return MapError(err)
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("vocabulary_id", card.VocabularyID.String()),
		slog.String("card_type", card.CardType.String()))
	return nil
}

// getOne runs a single-card query and translates sql.ErrNoRows.
func (s *PostgresCardStore) getOne(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) (*domain.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return card, nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", id.String()))

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return s.getOne(ctx, log, query, id)
}

// GetForUpdate implements store.CardStore.GetForUpdate
// The row stays locked until the caller's transaction commits or rolls back.
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", id.String()))

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, log, query, id)
}

// GetByVocabulary implements store.CardStore.GetByVocabulary
func (s *PostgresCardStore) GetByVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
	cardType domain.CardType,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("vocabulary_id", vocabularyID.String()),
		slog.String("card_type", cardType.String()))

	query := `SELECT ` + cardColumns + ` FROM cards WHERE vocabulary_id = $1 AND card_type = $2`
	return s.getOne(ctx, log, query, vocabularyID, cardType.String())
}

// queryCards runs a multi-row card query.
func (s *PostgresCardStore) queryCards(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return cards, nil
}

// ListByVocabulary implements store.CardStore.ListByVocabulary
func (s *PostgresCardStore) ListByVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("vocabulary_id", vocabularyID.String()))

	query := `SELECT ` + cardColumns + ` FROM cards WHERE vocabulary_id = $1`
	cards, err := s.queryCards(ctx, log, query, vocabularyID)
	if err != nil {
		return nil, err
	}

	// card_type is stored by name; order by declaration instead of alphabetically.
	slices.SortFunc(cards, func(a, b *domain.Card) int {
		return int(a.CardType) - int(b.CardType)
	})
	return cards, nil
}

// ListDue implements store.CardStore.ListDue
// Pages are keyed on the full ordering tuple, so concurrent inserts never cause
// a card to be skipped or repeated within one pass.
func (s *PostgresCardStore) ListDue(
	ctx context.Context,
	asOf time.Time,
	after *store.DueCursor,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.Card{}, nil
	}

	args := []any{
		domain.CardStatusLearning.String(),
		domain.CardStatusReviewing.String(),
		asOf.UTC(),
	}
	query := `SELECT ` + cardColumns + `
		FROM cards
		WHERE status IN ($1, $2) AND next_review_at <= $3`

	if after != nil {
		query += `
		AND (next_review_at, ease_factor, vocabulary_id, id) > ($4, $5, $6, $7)`
		args = append(args, after.NextReviewAt, after.EaseFactor, after.VocabularyID, after.CardID)
	}

	query += fmt.Sprintf(`
		ORDER BY next_review_at ASC, ease_factor ASC, vocabulary_id ASC, id ASC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	log.Debug("listing due cards",
		slog.Time("as_of", asOf),
		slog.Bool("has_cursor", after != nil),
		slog.Int("limit", limit))

	return s.queryCards(ctx, log, query, args...)
}

// Update implements store.CardStore.Update
// It writes every mutable field guarded by the version the caller read. The
// updated_at column is touched here rather than by a trigger.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", card.ID.String()))

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	updatedAt := s.now()

	query := `
		UPDATE cards
		SET status = $1, ease_factor = $2, interval_days = $3, review_count = $4,
			consecutive_correct = $5, lapses = $6, next_review_at = $7,
			last_reviewed_at = $8, difficulty_rating = $9,
			version = version + 1, updated_at = $10
		WHERE id = $11 AND version = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Status.String(),
		card.EaseFactor,
		card.IntervalDays,
		card.ReviewCount,
		card.ConsecutiveCorrect,
		card.Lapses,
		card.NextReviewAt,
		nullableTime(card.LastReviewedAt),
		nullableRating(card.DifficultyRating),
		updatedAt,
		card.ID,
		card.Version,
	)
	if err != nil {
		log.Error("failed to update card", slog.String("error", err.Error()))
		return MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		log.Error("failed to get rows affected", slog.String("error", err.Error()))
		return err
	}

	if n == 0 {
		// Distinguish a stale version from a vanished row.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, card.ID).Scan(&exists)
		if err != nil {
			log.Error("failed to check card existence", slog.String("error", err.Error()))
			return MapError(err)
		}
		if !exists {
			log.Debug("card not found for update")
			return store.ErrCardNotFound
		}
		log.Warn("card version conflict", slog.Int64("version", card.Version))
		return store.ErrVersionConflict
	}

	card.Version++
	card.UpdatedAt = updatedAt

	log.Debug("card updated successfully",
		slog.String("status", card.Status.String()),
		slog.Int64("version", card.Version))
	return nil
}

// DeleteByVocabulary implements store.CardStore.DeleteByVocabulary
func (s *PostgresCardStore) DeleteByVocabulary(
	ctx context.Context,
	vocabularyID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("vocabulary_id", vocabularyID.String()))

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE vocabulary_id = $1`, vocabularyID)
	if err != nil {
		log.Error("failed to delete cards", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return 0, err
	}

	log.Info("cards deleted", slog.Int64("count", n))
	return n, nil
}
