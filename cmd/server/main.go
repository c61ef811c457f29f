// Package main implements the scry-vocab server and its operator commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/phrazzld/scry-vocab/internal/config"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// configLoader returns validated configuration and the configured logger.
type configLoader func() (*config.Config, *slog.Logger, error)

// newRootCommand builds the command tree. Every subcommand loads its own
// configuration so --config applies uniformly.
func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "scry-vocab",
		Short:        "Spaced repetition scheduling for vocabulary cards",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	load := configLoader(func() (*config.Config, *slog.Logger, error) {
		return initializeApp(configFile)
	})

	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newIntroduceCommand(load),
		newDueCommand(load),
	)
	return root
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp(configFile string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("default_card_type", cfg.SRS.DefaultCardType))
	return cfg, l, nil
}
