package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/spf13/cobra"
)

// withApplication loads configuration, opens the database and builds the
// application for one command run.
func withApplication(cmd *cobra.Command, load configLoader, fn func(app *application) error) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	return fn(app)
}

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, load, func(app *application) error {
				return app.startHTTPServer(cmd.Context(), app.setupRouter())
			})
		},
	}
}

func newIntroduceCommand(load configLoader) *cobra.Command {
	var (
		cardType string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "introduce",
		Short: "Create new cards for dictionary entries that have none of the given type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, load, func(app *application) error {
				defer app.cleanup()

				t := app.config.SRS.CardType()
				if cardType != "" {
					parsed, err := domain.ParseCardType(cardType)
					if err != nil {
						return err
					}
					t = parsed
				}
				n := limit
				if n == 0 {
					n = app.config.SRS.DailyNewLimit
				}

				cards, err := app.cardService.IntroduceNew(cmd.Context(), t, n)
				app.logger.Info("introduced new cards",
					slog.String("card_type", t.String()),
					slog.Int("count", len(cards)))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "introduced %d %s cards\n", len(cards), t)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&cardType, "card-type", "", "card type to introduce (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of cards to create (default from config)")
	return cmd
}

func newDueCommand(load configLoader) *cobra.Command {
	var (
		limit int
		asOf  string
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Print the cards due for review as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at := time.Now().UTC()
			if asOf != "" {
				parsed, err := time.Parse(time.RFC3339, asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of: %w", err)
				}
				at = parsed.UTC()
			}

			return withApplication(cmd, load, func(app *application) error {
				defer app.cleanup()

				enc := json.NewEncoder(cmd.OutOrStdout())
				for card, err := range app.cardReviewService.NextDue(cmd.Context(), limit, at) {
					if err != nil {
						return err
					}
					if err := enc.Encode(card); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of cards to print")
	cmd.Flags().StringVar(&asOf, "as-of", "", "RFC 3339 time to evaluate due dates at (default now)")
	return cmd
}
