package config

import (
	"time"

	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/domain/srs"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format"       validate:"required,oneof=json text"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// SRSConfig names every scheduler threshold so none of them is a literal in
// the scheduling code.
type SRSConfig struct {
	MinEaseFactor          float64 `mapstructure:"min_ease_factor"           validate:"gte=1.3"`
	LapsePenaltyFactor     float64 `mapstructure:"lapse_penalty_factor"      validate:"gte=0,lte=1"`
	LapseEasePenalty       float64 `mapstructure:"lapse_ease_penalty"        validate:"gte=0"`
	MinRelearnIntervalDays float64 `mapstructure:"min_relearn_interval_days" validate:"gt=0"`
	GraduatingStreak       int     `mapstructure:"graduating_streak"         validate:"gte=1"`
	GraduatingIntervalDays float64 `mapstructure:"graduating_interval_days"  validate:"gt=0"`
	MasteryIntervalDays    float64 `mapstructure:"mastery_interval_days"     validate:"gtefield=GraduatingIntervalDays"`
	MaxIntervalDays        float64 `mapstructure:"max_interval_days"         validate:"gtefield=MasteryIntervalDays,lte=100000"`

	// Introducer and due queue settings.
	DailyNewLimit   int    `mapstructure:"daily_new_limit"   validate:"gte=1"`
	DuePageSize     int    `mapstructure:"due_page_size"     validate:"gte=1,lte=1000"`
	DefaultCardType string `mapstructure:"default_card_type" validate:"required,oneof=recognition recall production listening"`
}

// Params converts the scheduler thresholds into srs.Params.
func (c SRSConfig) Params() *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:          c.MinEaseFactor,
		MinRelearnIntervalDays: c.MinRelearnIntervalDays,
		LapsePenaltyFactor:     c.LapsePenaltyFactor,
		LapseEasePenalty:       c.LapseEasePenalty,
		GraduatingStreak:       c.GraduatingStreak,
		GraduatingIntervalDays: c.GraduatingIntervalDays,
		MasteryIntervalDays:    c.MasteryIntervalDays,
		MaxIntervalDays:        c.MaxIntervalDays,
	})
}

// CardType returns the configured default modality.
func (c SRSConfig) CardType() domain.CardType {
	// validated against the known names on load
	t, _ := domain.ParseCardType(c.DefaultCardType)
	return t
}
