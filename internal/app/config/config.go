package config

import "time"

// Config provides read-only access to application configuration. The
// interface hides the configuration source (environment, defaults)
// from the app layer.
type Config interface {
	ParticipantID() string       // participant id for the event log (CGTUTOR_PARTICIPANT_ID)
	LogDir() string              // directory for participant logs (CGTUTOR_LOG_DIR)
	LoggingEnabled() bool        // participant logging toggle (CGTUTOR_LOGGING)
	TickInterval() time.Duration // monitoring timer period (CGTUTOR_TICK_MS)
	Debounce() time.Duration     // minimum gap between soft checks (CGTUTOR_DEBOUNCE_MS)

	ConfigSource() string // "env" or "default"
}

// AppConfig is the concrete implementation of Config.
type AppConfig struct {
	participantID  string
	logDir         string
	loggingEnabled bool
	tickInterval   time.Duration
	debounce       time.Duration
	configSource   string
}

// ParticipantID returns the configured participant id.
func (c *AppConfig) ParticipantID() string {
	return c.participantID
}

// LogDir returns the participant log directory.
func (c *AppConfig) LogDir() string {
	return c.logDir
}

// LoggingEnabled returns whether participant logging is on.
func (c *AppConfig) LoggingEnabled() bool {
	return c.loggingEnabled
}

// TickInterval returns the monitoring timer period.
func (c *AppConfig) TickInterval() time.Duration {
	return c.tickInterval
}

// Debounce returns the minimum gap between soft checks.
func (c *AppConfig) Debounce() time.Duration {
	return c.debounce
}

// ConfigSource reports where the configuration came from.
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// NewAppConfig builds an AppConfig. Called by the infrastructure layer
// after loading and merging sources.
func NewAppConfig(participantID, logDir string, loggingEnabled bool, tickInterval, debounce time.Duration, configSource string) *AppConfig {
	return &AppConfig{
		participantID:  participantID,
		logDir:         logDir,
		loggingEnabled: loggingEnabled,
		tickInterval:   tickInterval,
		debounce:       debounce,
		configSource:   configSource,
	}
}
