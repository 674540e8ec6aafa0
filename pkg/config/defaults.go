package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultTimezone        = "UTC"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultListen          = ":8080"
	DefaultWebhookPath     = "/telegram/webhook"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultTelegramAPIURL  = "https://api.telegram.org"
	DefaultTelegramTimeout = 10 * time.Second
	DefaultPendingTTL      = 10 * time.Minute
	DefaultSweepInterval   = 60 * time.Second
	DefaultTrackerTimeout  = 15 * time.Second
	DefaultMaxRetries      = 3
)

// Environment variable names.
const (
	EnvTimezone      = "BABYLOG_TIMEZONE"
	EnvLogLevel      = "BABYLOG_LOG_LEVEL"
	EnvTelegramToken = "BABYLOG_TELEGRAM_TOKEN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone: DefaultTimezone,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			Listen:          DefaultListen,
			WebhookPath:     DefaultWebhookPath,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Telegram: TelegramConfig{
			APIURL:  DefaultTelegramAPIURL,
			Timeout: DefaultTelegramTimeout,
		},
		Pending: PendingConfig{
			TTL:           DefaultPendingTTL,
			SweepInterval: DefaultSweepInterval,
		},
		Tracker: TrackerConfig{
			Timeout:    DefaultTrackerTimeout,
			MaxRetries: DefaultMaxRetries,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if token := os.Getenv(EnvTelegramToken); token != "" {
		c.Telegram.Token = token
	}
}

// FromEnvironment returns a validated default configuration with environment
// overrides applied, for commands run without a config file.
func FromEnvironment() (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
