package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-vocab/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// migrationCommands lists the goose commands exposed by `migrate`.
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// slogGooseLogger adapts the goose logger interface to use slog
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error.
// It does not exit; the error reaches the caller through goose's return value.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func newMigrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {up|down|status|version|reset}",
		Short:     "Apply or inspect the database schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return runMigrations(cmd.Context(), db, args[0], logger)
		},
	}
}

// runMigrations executes one goose command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	migrationLogger := logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	goose.SetBaseFS(postgres.MigrationsFS())
	goose.SetTableName(postgres.MigrationTableName)
	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		migrationLogger.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	migrationLogger.Info("migration completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
