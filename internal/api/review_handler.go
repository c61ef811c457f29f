package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/api/shared"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/service/card_review"
)

const (
	// DefaultDueLimit is used when GET /api/cards/due has no limit parameter.
	DefaultDueLimit = 20
	// MaxDueLimit caps the number of cards a single due request returns.
	MaxDueLimit = 500
)

// ReviewHandler serves the due queue and records reviews
type ReviewHandler struct {
	reviews card_review.CardReviewService
	now     func() time.Time
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews card_review.CardReviewService, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card review service cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviews: reviews,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// GetDue handles GET /api/cards/due?limit=N&as_of=RFC3339.
// Cards come back in due order; an empty list means nothing is due.
func (h *ReviewHandler) GetDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	limit, err := queryInt(r, "limit", DefaultDueLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if limit < 1 || limit > MaxDueLimit {
		HandleAPIError(w, r,
			domain.NewValidationError("limit", "must be between 1 and 500", domain.ErrValidation), "")
		return
	}
	asOf, err := queryTime(r, "as_of", h.now())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards := make([]*domain.Card, 0, limit)
	for card, err := range h.reviews.NextDue(r.Context(), limit, asOf.UTC()) {
		if err != nil {
			HandleAPIError(w, r, err, "Failed to load due cards")
			return
		}
		cards = append(cards, card)
	}

	log.Debug("served due cards", slog.Int("count", len(cards)), slog.Time("as_of", asOf))
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// RecordReview handles POST /api/cards/{id}/reviews.
// It applies the scheduler to the card and returns the stored review event.
func (h *ReviewHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req RecordReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// validated as a UUID above
	sessionID := uuid.MustParse(req.SessionID)

	event, err := h.reviews.RecordReview(r.Context(), card_review.ReviewRequest{
		CardID:         cardID,
		SessionID:      sessionID,
		QualityRating:  domain.QualityRating(*req.QualityRating),
		UserAnswer:     req.UserAnswer,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Info("review recorded",
		slog.String("card_id", cardID.String()),
		slog.Int("quality_rating", int(event.QualityRating)),
		slog.String("status_after", event.StatusAfter.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, reviewEventToResponse(event))
}
