package srs

import (
	"errors"
	"testing"

	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	if params.MinEaseFactor != domain.MinEaseFactor {
		t.Errorf("MinEaseFactor should be %f, got %f", domain.MinEaseFactor, params.MinEaseFactor)
	}

	if params.FirstIntervalDays != 1 || params.SecondIntervalDays != 6 {
		t.Errorf("Expected SM-2 intervals 1 and 6, got %f and %f",
			params.FirstIntervalDays, params.SecondIntervalDays)
	}

	if params.LapsePenaltyFactor <= 0 || params.LapsePenaltyFactor >= 1 {
		t.Errorf("LapsePenaltyFactor should shrink the interval, got %f", params.LapsePenaltyFactor)
	}

	if params.MasteryIntervalDays <= params.GraduatingIntervalDays {
		t.Errorf("MasteryIntervalDays should exceed GraduatingIntervalDays, got %f and %f",
			params.MasteryIntervalDays, params.GraduatingIntervalDays)
	}

	require.NoError(t, params.Validate())
}

func TestNewParams(t *testing.T) {
	t.Parallel()

	t.Run("zero config keeps defaults", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, NewDefaultParams(), NewParams(ParamsConfig{}))
	})

	t.Run("non-zero fields override", func(t *testing.T) {
		t.Parallel()
		params := NewParams(ParamsConfig{
			LapsePenaltyFactor:  0.5,
			GraduatingStreak:    3,
			MasteryIntervalDays: 30,
			MaxIntervalDays:     3650,
		})

		require.Equal(t, 0.5, params.LapsePenaltyFactor)
		require.Equal(t, 3, params.GraduatingStreak)
		require.Equal(t, 30.0, params.MasteryIntervalDays)
		require.Equal(t, 3650.0, params.MaxIntervalDays)
		require.Equal(t, DefaultMinRelearnIntervalDays, params.MinRelearnIntervalDays)
	})
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{name: "min ease below floor", mutate: func(p *Params) { p.MinEaseFactor = 1.0 }},
		{name: "zero first interval", mutate: func(p *Params) { p.FirstIntervalDays = 0 }},
		{name: "zero relearn interval", mutate: func(p *Params) { p.MinRelearnIntervalDays = 0 }},
		{name: "penalty factor above one", mutate: func(p *Params) { p.LapsePenaltyFactor = 1.5 }},
		{name: "negative ease penalty", mutate: func(p *Params) { p.LapseEasePenalty = -0.1 }},
		{name: "zero graduating streak", mutate: func(p *Params) { p.GraduatingStreak = 0 }},
		{name: "mastery below graduating", mutate: func(p *Params) {
			p.GraduatingIntervalDays = 10
			p.MasteryIntervalDays = 5
		}},
		{name: "max interval below mastery", mutate: func(p *Params) { p.MaxIntervalDays = 14 }},
		{name: "max interval below second", mutate: func(p *Params) {
			p.MasteryIntervalDays = 2
			p.MaxIntervalDays = 4
		}},
		{name: "zero max interval", mutate: func(p *Params) { p.MaxIntervalDays = 0 }},
		{name: "max interval beyond limit", mutate: func(p *Params) { p.MaxIntervalDays = 250000 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params := NewDefaultParams()
			tc.mutate(params)

			err := params.Validate()
			require.Error(t, err)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
}
