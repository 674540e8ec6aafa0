package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/babylog/pkg/parser"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format (use .yaml, .yml or .toml)")

// Load reads and validates a configuration file. The format is chosen by
// file extension.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Validate checks a configuration for errors, fills defaults for unset
// durations, expands secrets from the environment, loads the timezone and
// builds the parser vocabulary.
func Validate(cfg *Config) error {
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	cfg.location = loc

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := validateTelegram(&cfg.Telegram); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	if cfg.Pending.TTL <= 0 {
		cfg.Pending.TTL = DefaultPendingTTL
	}
	if cfg.Pending.SweepInterval <= 0 {
		cfg.Pending.SweepInterval = DefaultSweepInterval
	}

	// The tracker is optional, but validate if present
	if cfg.Tracker.Enabled() {
		if err := validateTracker(&cfg.Tracker); err != nil {
			return fmt.Errorf("tracker: %w", err)
		}
	}

	vocab, err := parser.DefaultVocabulary().Extend(cfg.Vocab.extensions())
	if err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}
	cfg.vocabulary = vocab

	return nil
}

// ValidateServe checks the settings the webhook server needs beyond Validate.
func ValidateServe(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram: token is required (set it in the config or %s)", EnvTelegramToken)
	}
	if !cfg.Tracker.Enabled() {
		return errors.New("tracker: base_url is required")
	}
	return nil
}

func validateLog(lc *LogConfig) error {
	switch strings.ToLower(lc.Level) {
	case "":
		lc.Level = DefaultLogLevel
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", lc.Level)
	}

	switch lc.Format {
	case "":
		lc.Format = DefaultLogFormat
	case "json", "console":
	default:
		return fmt.Errorf("invalid format %q (must be json or console)", lc.Format)
	}

	return nil
}

func validateServer(sc *ServerConfig) error {
	if sc.Listen == "" {
		sc.Listen = DefaultListen
	}
	if sc.WebhookPath == "" {
		sc.WebhookPath = DefaultWebhookPath
	}
	if !strings.HasPrefix(sc.WebhookPath, "/") {
		return fmt.Errorf("webhook_path %q must start with /", sc.WebhookPath)
	}
	if sc.ShutdownTimeout <= 0 {
		sc.ShutdownTimeout = DefaultShutdownTimeout
	}
	return nil
}

func validateTelegram(tc *TelegramConfig) error {
	// Expand environment variables in token
	tc.Token = expandEnvVar(tc.Token)

	if tc.APIURL == "" {
		tc.APIURL = DefaultTelegramAPIURL
	}
	if err := validateURL(tc.APIURL); err != nil {
		return fmt.Errorf("api_url: %w", err)
	}

	if tc.Timeout <= 0 {
		tc.Timeout = DefaultTelegramTimeout
	}
	return nil
}

func validateTracker(tc *TrackerConfig) error {
	if err := validateURL(tc.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}

	if tc.TokenURL == "" {
		tc.TokenURL = strings.TrimSuffix(tc.BaseURL, "/") + "/oauth/token"
	}
	if err := validateURL(tc.TokenURL); err != nil {
		return fmt.Errorf("token_url: %w", err)
	}

	tc.ClientSecret = expandEnvVar(tc.ClientSecret)
	tc.Email = expandEnvVar(tc.Email)
	tc.Password = expandEnvVar(tc.Password)

	if tc.Email == "" || tc.Password == "" {
		return errors.New("email and password are required")
	}
	if tc.ChildID == "" {
		return errors.New("child_id is required")
	}

	if tc.Timeout <= 0 {
		tc.Timeout = DefaultTrackerTimeout
	}
	if tc.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", tc.MaxRetries)
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
