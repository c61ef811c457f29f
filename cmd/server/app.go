package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-vocab/internal/config"
	"github.com/phrazzld/scry-vocab/internal/domain/srs"
	"github.com/phrazzld/scry-vocab/internal/platform/postgres"
	"github.com/phrazzld/scry-vocab/internal/service"
	"github.com/phrazzld/scry-vocab/internal/service/card_review"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	srsService        srs.Service
	cardService       service.CardService
	cardReviewService card_review.CardReviewService
}

// newApplication wires the postgres stores into the services.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	srsService, err := srs.NewServiceWithParams(cfg.SRS.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SRS service: %w", err)
	}

	cardStore := postgres.NewPostgresCardStore(db, logger)
	eventStore := postgres.NewPostgresReviewEventStore(db, logger)
	vocabStore := postgres.NewPostgresVocabularyStore(db, logger)

	cardService, err := service.NewCardService(
		service.NewCardRepositoryAdapter(cardStore, db),
		service.NewReviewEventRepositoryAdapter(eventStore),
		service.NewVocabularyRepositoryAdapter(vocabStore),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize card service: %w", err)
	}

	reviewService := card_review.NewCardReviewService(
		card_review.NewCardRepositoryAdapter(cardStore, db),
		card_review.NewReviewEventRepositoryAdapter(eventStore),
		srsService,
		logger,
		card_review.WithDuePageSize(cfg.SRS.DuePageSize),
	)

	logger.Info("application services initialized",
		slog.Int("graduating_streak", cfg.SRS.GraduatingStreak),
		slog.Float64("mastery_interval_days", cfg.SRS.MasteryIntervalDays))

	return &application{
		config:            cfg,
		logger:            logger,
		db:                db,
		srsService:        srsService,
		cardService:       cardService,
		cardReviewService: reviewService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		return
	}
	app.logger.Debug("database connection closed")
}
