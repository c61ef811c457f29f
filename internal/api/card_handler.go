package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/api/shared"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/platform/logger"
	"github.com/phrazzld/scry-vocab/internal/service"
	"github.com/samber/lo"
)

// CardHandlerConfig carries the defaults applied to operator requests.
type CardHandlerConfig struct {
	DefaultCardType domain.CardType
	DailyNewLimit   int
}

// CardHandler handles card lifecycle and dictionary requests
type CardHandler struct {
	cards  service.CardService
	config CardHandlerConfig
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cards service.CardService, config CardHandlerConfig, logger *slog.Logger) *CardHandler {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card service cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:  cards,
		config: config,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// Introduce handles POST /api/cards/introduce.
// It creates new cards for dictionary entries that lack one of the requested type.
func (h *CardHandler) Introduce(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req IntroduceRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	cardType := h.config.DefaultCardType
	if req.CardType != "" {
		// already checked by the card_type validator
		cardType, _ = domain.ParseCardType(req.CardType)
	}
	limit := lo.FromPtrOr(req.Limit, h.config.DailyNewLimit)

	cards, err := h.cards.IntroduceNew(r.Context(), cardType, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to introduce cards")
		return
	}

	log.Info("introduced new cards",
		slog.String("card_type", cardType.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardsToResponse(cards))
}

// Suspend handles POST /api/cards/{id}/suspend
func (h *CardHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "suspend", h.cards.Suspend)
}

// Archive handles POST /api/cards/{id}/archive
func (h *CardHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "archive", h.cards.Archive)
}

// Reactivate handles POST /api/cards/{id}/reactivate
func (h *CardHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "reactivate", h.cards.Reactivate)
}

func (h *CardHandler) lifecycle(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	apply func(ctx context.Context, id uuid.UUID) (*domain.Card, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := apply(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to "+action+" card")
		return
	}

	log.Info("card status changed",
		slog.String("action", action),
		slog.String("card_id", cardID.String()),
		slog.String("status", card.Status.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// RateDifficulty handles PUT /api/cards/{id}/difficulty
func (h *CardHandler) RateDifficulty(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req DifficultyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.cards.RateDifficulty(r.Context(), cardID, req.Rating)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rate card difficulty")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// ReviewHistory handles GET /api/cards/{id}/reviews?limit=N
func (h *CardHandler) ReviewHistory(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	events, err := h.cards.ReviewHistory(r.Context(), cardID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load review history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewHistoryResponse{
		Reviews: lo.Map(events, func(e *domain.ReviewEvent, _ int) ReviewEventResponse {
			return reviewEventToResponse(e)
		}),
		Count: len(events),
	})
}

// VocabularyCards handles GET /api/vocabulary/{id}/cards.
// With ?card_type=X it returns the single card of that type.
func (h *CardHandler) VocabularyCards(w http.ResponseWriter, r *http.Request) {
	vocabID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if raw := r.URL.Query().Get("card_type"); raw != "" {
		cardType, err := domain.ParseCardType(raw)
		if err != nil {
			HandleAPIError(w, r, service.ErrInvalidCardType, "")
			return
		}
		card, err := h.cards.CardSnapshot(r.Context(), vocabID, cardType)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to load card")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
		return
	}

	cards, err := h.cards.CardsForVocabulary(r.Context(), vocabID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// DeleteVocabulary handles DELETE /api/vocabulary/{id}.
// By default only the cards and their review log are removed; pass
// ?include_vocabulary=true to delete the dictionary entry as well.
func (h *CardHandler) DeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	vocabID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	includeVocabulary, err := queryBool(r, "include_vocabulary")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.cards.DeleteVocabulary(r.Context(), vocabID, includeVocabulary); err != nil {
		HandleAPIError(w, r, err, "Failed to delete vocabulary cards")
		return
	}

	log.Info("vocabulary cards deleted",
		slog.String("vocabulary_id", vocabID.String()),
		slog.Bool("include_vocabulary", includeVocabulary))
	w.WriteHeader(http.StatusNoContent)
}
