// Package config loads application settings from the environment with
// code defaults as the fallback.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/daichi-lab/cgtutor/internal/app"
	"github.com/daichi-lab/cgtutor/internal/app/config"
)

// rawSettings is the env-tag mapping for all CGTUTOR_* variables.
type rawSettings struct {
	ParticipantID string `env:"CGTUTOR_PARTICIPANT_ID"`
	LogDir        string `env:"CGTUTOR_LOG_DIR"`
	Logging       bool   `env:"CGTUTOR_LOGGING" envDefault:"true"`
	TickMs        int    `env:"CGTUTOR_TICK_MS" envDefault:"100"`
	DebounceMs    int    `env:"CGTUTOR_DEBOUNCE_MS" envDefault:"200"`
}

// LoadSettings parses CGTUTOR_* environment variables and applies
// defaults for anything unset.
func LoadSettings() (*config.AppConfig, error) {
	var raw rawSettings
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse env settings: %w", err)
	}

	source := "env"
	if raw.LogDir == "" {
		raw.LogDir = app.DefaultLogDir()
		if raw.ParticipantID == "" {
			source = "default"
		}
	}
	if raw.TickMs <= 0 {
		raw.TickMs = 100
	}
	if raw.DebounceMs <= 0 {
		raw.DebounceMs = 200
	}

	return config.NewAppConfig(
		raw.ParticipantID,
		raw.LogDir,
		raw.Logging,
		time.Duration(raw.TickMs)*time.Millisecond,
		time.Duration(raw.DebounceMs)*time.Millisecond,
		source,
	), nil
}

// DefaultSettings returns the built-in configuration, used when env
// parsing fails so commands can still run.
func DefaultSettings() *config.AppConfig {
	return config.NewAppConfig(
		"",
		app.DefaultLogDir(),
		true,
		100*time.Millisecond,
		200*time.Millisecond,
		"default",
	)
}
