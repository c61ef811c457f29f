package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-vocab/internal/domain"
)

// ErrNilCard is returned when ScheduleReview is called without a card.
var ErrNilCard = errors.New("card cannot be nil")

// Service defines the interface for SRS algorithm operations
type Service interface {
	// ScheduleReview computes the card state that results from a review with the
	// given quality rating. previous is the most recent earlier review of the
	// card, or nil when there is none. The input card is never modified.
	ScheduleReview(
		card *domain.Card,
		rating domain.QualityRating,
		reviewedAt time.Time,
		previous *domain.ReviewEvent,
	) (*domain.Card, error)

	// Params returns a copy of the parameters the service schedules with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// The parameters are validated and copied.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	p := *params
	return &defaultService{params: &p}, nil
}

// ScheduleReview implements the Service interface
func (s *defaultService) ScheduleReview(
	card *domain.Card,
	rating domain.QualityRating,
	reviewedAt time.Time,
	previous *domain.ReviewEvent,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !rating.IsValid() {
		return nil, domain.ErrInvalidRating
	}

	if !card.IsSchedulable() {
		return nil, domain.ErrCardNotSchedulable
	}

	return calculateNextState(card, rating, reviewedAt, previous, s.params), nil
}

// Params implements the Service interface
func (s *defaultService) Params() Params {
	return *s.params
}
