package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-vocab/internal/domain/srs"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, so server.port is
// read from SCRY_SERVER_PORT.
const EnvPrefix = "SCRY"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
//
// configFile may be empty, in which case config.yaml is looked up in the
// working directory and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.SRS.Params().Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("srs.min_ease_factor", srs.DefaultMinEaseFactor)
	v.SetDefault("srs.lapse_penalty_factor", srs.DefaultLapsePenaltyFactor)
	v.SetDefault("srs.lapse_ease_penalty", srs.DefaultLapseEasePenalty)
	v.SetDefault("srs.min_relearn_interval_days", srs.DefaultMinRelearnIntervalDays)
	v.SetDefault("srs.graduating_streak", srs.DefaultGraduatingStreak)
	v.SetDefault("srs.graduating_interval_days", srs.DefaultGraduatingIntervalDays)
	v.SetDefault("srs.mastery_interval_days", srs.DefaultMasteryIntervalDays)
	v.SetDefault("srs.max_interval_days", srs.DefaultMaxIntervalDays)
	v.SetDefault("srs.daily_new_limit", 20)
	v.SetDefault("srs.due_page_size", 50)
	v.SetDefault("srs.default_card_type", "recognition")
}
