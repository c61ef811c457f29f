package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/samber/lo"
)

// RecordReviewRequest is the body of POST /api/cards/{id}/reviews.
type RecordReviewRequest struct {
	SessionID     string `json:"session_id"    validate:"required,uuid"`
	QualityRating *int   `json:"quality_rating" validate:"required,min=0,max=5"`
	// UserAnswer is stored verbatim for analytics.
	UserAnswer     *string `json:"user_answer,omitempty"      validate:"omitempty,max=2000"`
	ResponseTimeMs *int64  `json:"response_time_ms,omitempty" validate:"omitempty,min=0"`
}

// IntroduceRequest is the body of POST /api/cards/introduce. Omitted fields
// fall back to the configured card type and daily limit.
type IntroduceRequest struct {
	CardType string `json:"card_type,omitempty" validate:"omitempty,card_type"`
	Limit    *int   `json:"limit,omitempty"     validate:"omitempty,min=1,max=1000"`
}

// DifficultyRequest is the body of PUT /api/cards/{id}/difficulty.
// A null rating clears the stored one.
type DifficultyRequest struct {
	Rating *int `json:"rating" validate:"omitempty,min=1,max=5"`
}

// CardResponse represents the response data for a card
type CardResponse struct {
	ID                 uuid.UUID  `json:"id"`
	VocabularyID       uuid.UUID  `json:"vocabulary_id"`
	CardType           string     `json:"card_type"`
	Status             string     `json:"status"`
	EaseFactor         float64    `json:"ease_factor"`
	IntervalDays       float64    `json:"interval_days"`
	ReviewCount        int        `json:"review_count"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	Lapses             int        `json:"lapses"`
	NextReviewAt       time.Time  `json:"next_review_at"`
	LastReviewedAt     *time.Time `json:"last_reviewed_at,omitempty"`
	DifficultyRating   *int       `json:"difficulty_rating,omitempty"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CardListResponse wraps a list of cards.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
	Count int            `json:"count"`
}

// ReviewEventResponse represents one stored review.
type ReviewEventResponse struct {
	ID                 uuid.UUID `json:"id"`
	CardID             uuid.UUID `json:"card_id"`
	SessionID          uuid.UUID `json:"session_id"`
	ReviewedAt         time.Time `json:"reviewed_at"`
	QualityRating      int       `json:"quality_rating"`
	Correct            bool      `json:"correct"`
	UserAnswer         *string   `json:"user_answer,omitempty"`
	ResponseTimeMs     *int64    `json:"response_time_ms,omitempty"`
	IntervalBeforeDays float64   `json:"interval_before_days"`
	IntervalAfterDays  float64   `json:"interval_after_days"`
	EaseFactorBefore   float64   `json:"ease_factor_before"`
	EaseFactorAfter    float64   `json:"ease_factor_after"`
	StatusBefore       string    `json:"status_before"`
	StatusAfter        string    `json:"status_after"`
}

// ReviewHistoryResponse wraps a card's review events, newest first.
type ReviewHistoryResponse struct {
	Reviews []ReviewEventResponse `json:"reviews"`
	Count   int                   `json:"count"`
}

// cardToResponse converts a domain.Card to a CardResponse
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:                 card.ID,
		VocabularyID:       card.VocabularyID,
		CardType:           card.CardType.String(),
		Status:             card.Status.String(),
		EaseFactor:         card.EaseFactor,
		IntervalDays:       card.IntervalDays,
		ReviewCount:        card.ReviewCount,
		ConsecutiveCorrect: card.ConsecutiveCorrect,
		Lapses:             card.Lapses,
		NextReviewAt:       card.NextReviewAt,
		LastReviewedAt:     card.LastReviewedAt,
		DifficultyRating:   card.DifficultyRating,
		Version:            card.Version,
		CreatedAt:          card.CreatedAt,
		UpdatedAt:          card.UpdatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) CardListResponse {
	return CardListResponse{
		Cards: lo.Map(cards, func(c *domain.Card, _ int) CardResponse { return cardToResponse(c) }),
		Count: len(cards),
	}
}

// reviewEventToResponse converts a domain.ReviewEvent to a ReviewEventResponse
func reviewEventToResponse(e *domain.ReviewEvent) ReviewEventResponse {
	return ReviewEventResponse{
		ID:                 e.ID,
		CardID:             e.CardID,
		SessionID:          e.SessionID,
		ReviewedAt:         e.ReviewedAt,
		QualityRating:      int(e.QualityRating),
		Correct:            e.Correct,
		UserAnswer:         e.UserAnswer,
		ResponseTimeMs:     e.ResponseTimeMs,
		IntervalBeforeDays: e.IntervalBeforeDays,
		IntervalAfterDays:  e.IntervalAfterDays,
		EaseFactorBefore:   e.EaseFactorBefore,
		EaseFactorAfter:    e.EaseFactorAfter,
		StatusBefore:       e.StatusBefore.String(),
		StatusAfter:        e.StatusAfter.String(),
	}
}
