package srs

import (
	"fmt"

	"github.com/phrazzld/scry-vocab/internal/domain"
)

// Default scheduling constants. The graduating and mastery thresholds and the
// lapse penalty are SM-2-family conventions and are meant to be tuned through
// configuration rather than edited here.
const (
	DefaultMinEaseFactor          = domain.MinEaseFactor
	DefaultFirstIntervalDays      = 1.0
	DefaultSecondIntervalDays     = 6.0
	DefaultMinRelearnIntervalDays = 1.0
	DefaultLapsePenaltyFactor     = 0.2
	DefaultLapseEasePenalty       = 0.2
	DefaultGraduatingStreak       = 2
	DefaultGraduatingIntervalDays = 1.0
	DefaultMasteryIntervalDays    = 21.0
	DefaultMaxIntervalDays        = 36500.0
)

// maxIntervalDaysLimit bounds MaxIntervalDays so every scheduled review stays
// representable as a time.Time and a Postgres timestamptz.
const maxIntervalDaysLimit = 100000.0

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64
	// MaxIntervalDays caps interval_days after every review.
	MaxIntervalDays float64

	// Intervals assigned to the first and second reviews
	FirstIntervalDays  float64
	SecondIntervalDays float64

	// Lapse handling
	MinRelearnIntervalDays float64
	// LapsePenaltyFactor scales the interval on a lapse; the result is rounded to whole days.
	LapsePenaltyFactor float64
	LapseEasePenalty   float64

	// Lifecycle thresholds
	GraduatingStreak       int
	GraduatingIntervalDays float64
	MasteryIntervalDays    float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEaseFactor          float64
	MaxIntervalDays        float64
	FirstIntervalDays      float64
	SecondIntervalDays     float64
	MinRelearnIntervalDays float64
	LapsePenaltyFactor     float64
	LapseEasePenalty       float64
	GraduatingStreak       int
	GraduatingIntervalDays float64
	MasteryIntervalDays    float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:          DefaultMinEaseFactor,
		MaxIntervalDays:        DefaultMaxIntervalDays,
		FirstIntervalDays:      DefaultFirstIntervalDays,
		SecondIntervalDays:     DefaultSecondIntervalDays,
		MinRelearnIntervalDays: DefaultMinRelearnIntervalDays,
		LapsePenaltyFactor:     DefaultLapsePenaltyFactor,
		LapseEasePenalty:       DefaultLapseEasePenalty,
		GraduatingStreak:       DefaultGraduatingStreak,
		GraduatingIntervalDays: DefaultGraduatingIntervalDays,
		MasteryIntervalDays:    DefaultMasteryIntervalDays,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.FirstIntervalDays > 0 {
		params.FirstIntervalDays = config.FirstIntervalDays
	}
	if config.SecondIntervalDays > 0 {
		params.SecondIntervalDays = config.SecondIntervalDays
	}
	if config.MinRelearnIntervalDays > 0 {
		params.MinRelearnIntervalDays = config.MinRelearnIntervalDays
	}
	if config.LapsePenaltyFactor > 0 {
		params.LapsePenaltyFactor = config.LapsePenaltyFactor
	}
	if config.LapseEasePenalty > 0 {
		params.LapseEasePenalty = config.LapseEasePenalty
	}
	if config.GraduatingStreak > 0 {
		params.GraduatingStreak = config.GraduatingStreak
	}
	if config.GraduatingIntervalDays > 0 {
		params.GraduatingIntervalDays = config.GraduatingIntervalDays
	}
	if config.MasteryIntervalDays > 0 {
		params.MasteryIntervalDays = config.MasteryIntervalDays
	}

	return params
}

// Validate rejects parameter sets that would break the card invariants.
func (p *Params) Validate() error {
	switch {
	case p.MinEaseFactor < domain.MinEaseFactor:
		return fmt.Errorf("%w: min ease factor %.2f is below %.2f",
			domain.ErrValidation, p.MinEaseFactor, domain.MinEaseFactor)
	case p.FirstIntervalDays <= 0 || p.SecondIntervalDays <= 0:
		return fmt.Errorf("%w: initial intervals must be positive", domain.ErrValidation)
	case p.MinRelearnIntervalDays <= 0:
		return fmt.Errorf("%w: min relearn interval must be positive", domain.ErrValidation)
	case p.LapsePenaltyFactor < 0 || p.LapsePenaltyFactor > 1:
		return fmt.Errorf("%w: lapse penalty factor must be within [0,1]", domain.ErrValidation)
	case p.LapseEasePenalty < 0:
		return fmt.Errorf("%w: lapse ease penalty cannot be negative", domain.ErrValidation)
	case p.GraduatingStreak < 1:
		return fmt.Errorf("%w: graduating streak must be at least 1", domain.ErrValidation)
	case p.MasteryIntervalDays < p.GraduatingIntervalDays:
		return fmt.Errorf("%w: mastery interval must not be below the graduating interval",
			domain.ErrValidation)
	case p.MaxIntervalDays < p.MasteryIntervalDays || p.MaxIntervalDays < p.SecondIntervalDays:
		return fmt.Errorf("%w: max interval must not be below the mastery or second interval",
			domain.ErrValidation)
	case p.MaxIntervalDays > maxIntervalDaysLimit:
		return fmt.Errorf("%w: max interval %.0f exceeds %.0f days",
			domain.ErrValidation, p.MaxIntervalDays, maxIntervalDaysLimit)
	}
	return nil
}
