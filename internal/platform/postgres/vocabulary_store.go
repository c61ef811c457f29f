package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/store"
)

const vocabularyColumns = `id, term, reading, meaning, language, study_status, created_at, updated_at`

// PostgresVocabularyStore implements the store.VocabularyStore interface over
// the externally owned vocabulary table.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a new PostgreSQL implementation of the VocabularyStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

// Ensure PostgresVocabularyStore implements store.VocabularyStore interface
var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// WithTx implements store.VocabularyStore.WithTx
func (s *PostgresVocabularyStore) WithTx(tx *sql.Tx) store.VocabularyStore {
	return &PostgresVocabularyStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanVocabulary(row rowScanner) (*domain.Vocabulary, error) {
	var v domain.Vocabulary
	err := row.Scan(
		&v.ID,
		&v.Term,
		&v.Reading,
		&v.Meaning,
		&v.Language,
		&v.StudyStatus,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return &v, nil
}

// GetByID implements store.VocabularyStore.GetByID
func (s *PostgresVocabularyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vocabulary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary WHERE id = $1`
	v, err := scanVocabulary(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocabulary not found", slog.String("vocabulary_id", id.String()))
			return nil, store.ErrVocabularyNotFound
		}
		log.Error("failed to get vocabulary by ID",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", id.String()))
		return nil, MapError(err)
	}
	return v, nil
}

// ListWithoutCard implements store.VocabularyStore.ListWithoutCard
// A vocabulary item is eligible when it has no card of cardType in any status,
// which is exactly the condition under which the unique (vocabulary_id,
// card_type) index admits a new card.
func (s *PostgresVocabularyStore) ListWithoutCard(
	ctx context.Context,
	cardType domain.CardType,
	limit int,
) ([]*domain.Vocabulary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.Vocabulary{}, nil
	}

	query := `
		SELECT ` + vocabularyColumns + `
		FROM vocabulary v
		WHERE NOT EXISTS (
			SELECT 1 FROM cards c
			WHERE c.vocabulary_id = v.id AND c.card_type = $1
		)
		ORDER BY v.created_at ASC, v.id ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, cardType.String(), limit)
	if err != nil {
		log.Error("failed to query vocabulary without card",
			slog.String("error", err.Error()),
			slog.String("card_type", cardType.String()))
		return nil, MapError(err)
	}
	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.Vocabulary{}
	for rows.Next() {
		v, err := scanVocabulary(rows)
		if err != nil {
			log.Error("failed to scan vocabulary row", slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, v)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("found vocabulary without card",
		slog.String("card_type", cardType.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// Delete implements store.VocabularyStore.Delete
func (s *PostgresVocabularyStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM vocabulary WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete vocabulary",
			slog.String("error", err.Error()),
			slog.String("vocabulary_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrVocabularyNotFound); err != nil {
		log.Debug("vocabulary not found for delete", slog.String("vocabulary_id", id.String()))
		return err
	}

	log.Info("vocabulary deleted", slog.String("vocabulary_id", id.String()))
	return nil
}
