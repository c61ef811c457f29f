package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the card and review endpoints under /api.
func RegisterRoutes(r chi.Router, cards *CardHandler, reviews *ReviewHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/cards", func(r chi.Router) {
			r.Get("/due", reviews.GetDue)
			r.Post("/introduce", cards.Introduce)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/reviews", reviews.RecordReview)
				r.Get("/reviews", cards.ReviewHistory)
				r.Post("/suspend", cards.Suspend)
				r.Post("/archive", cards.Archive)
				r.Post("/reactivate", cards.Reactivate)
				r.Put("/difficulty", cards.RateDifficulty)
			})
		})

		r.Route("/vocabulary/{id}", func(r chi.Router) {
			r.Get("/cards", cards.VocabularyCards)
			r.Delete("/", cards.DeleteVocabulary)
		})
	})
}
