package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-vocab/internal/api"
	apiMiddleware "github.com/phrazzld/scry-vocab/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	cardHandler := api.NewCardHandler(app.cardService, api.CardHandlerConfig{
		DefaultCardType: app.config.SRS.CardType(),
		DailyNewLimit:   app.config.SRS.DailyNewLimit,
	}, app.logger)
	reviewHandler := api.NewReviewHandler(app.cardReviewService, app.logger)

	api.RegisterRoutes(r, cardHandler, reviewHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
