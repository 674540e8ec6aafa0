// Package config provides configuration loading and validation for babylog.
package config

import (
	"time"

	"github.com/ccollicutt/babylog/pkg/parser"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	// Timezone is the IANA zone caregiver clock times are read in.
	Timezone string `yaml:"timezone" toml:"timezone"`

	Log      LogConfig        `yaml:"log" toml:"log"`
	Server   ServerConfig     `yaml:"server" toml:"server"`
	Telegram TelegramConfig   `yaml:"telegram" toml:"telegram"`
	Pending  PendingConfig    `yaml:"pending" toml:"pending"`
	Tracker  TrackerConfig    `yaml:"tracker" toml:"tracker"`
	Vocab    VocabularyConfig `yaml:"vocabulary,omitempty" toml:"vocabulary,omitempty"`

	// Populated during validation.
	location   *time.Location
	vocabulary *parser.Vocabulary
}

// Location returns the loaded timezone, or UTC before validation.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Vocabulary returns the parser vocabulary with configured extensions, or
// the default vocabulary before validation.
func (c *Config) Vocabulary() *parser.Vocabulary {
	if c.vocabulary == nil {
		return parser.DefaultVocabulary()
	}
	return c.vocabulary
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`

	// Format is json or console.
	Format string `yaml:"format" toml:"format"`
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Listen          string        `yaml:"listen" toml:"listen"`
	WebhookPath     string        `yaml:"webhook_path" toml:"webhook_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty" toml:"shutdown_timeout,omitempty"`
}

// TelegramConfig configures the chat transport.
type TelegramConfig struct {
	// Token is the bot token. Supports ${VAR} expansion.
	Token string `yaml:"token" toml:"token"`

	// APIURL is the Bot API base URL.
	APIURL string `yaml:"api_url,omitempty" toml:"api_url,omitempty"`

	// AllowedChats restricts which chats may use the bot. Empty allows all.
	AllowedChats []int64 `yaml:"allowed_chats,omitempty" toml:"allowed_chats,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// PendingConfig controls how long unconfirmed events are kept.
type PendingConfig struct {
	TTL           time.Duration `yaml:"ttl,omitempty" toml:"ttl,omitempty"`
	SweepInterval time.Duration `yaml:"sweep_interval,omitempty" toml:"sweep_interval,omitempty"`
}

// TrackerConfig configures the baby-tracking service events are uploaded to.
type TrackerConfig struct {
	// BaseURL is the tracker API root.
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// TokenURL is the OAuth2 token endpoint. Defaults to BaseURL + /oauth/token.
	TokenURL string `yaml:"token_url,omitempty" toml:"token_url,omitempty"`

	ClientID     string `yaml:"client_id,omitempty" toml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty" toml:"client_secret,omitempty"`

	// Email and Password are the account credentials. Support ${VAR} expansion.
	Email    string `yaml:"email" toml:"email"`
	Password string `yaml:"password" toml:"password"`

	// ChildID identifies the child events are recorded for.
	ChildID string `yaml:"child_id" toml:"child_id"`

	Timeout    time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty" toml:"max_retries,omitempty"`
}

// Enabled reports whether an upload target is configured.
func (t *TrackerConfig) Enabled() bool {
	return t.BaseURL != ""
}

// VocabularyConfig adds keywords to the built-in vocabulary. Map entries
// map a keyword to its canonical value.
type VocabularyConfig struct {
	Sides         map[string]string `yaml:"sides,omitempty" toml:"sides,omitempty"`
	FeedTypes     map[string]string `yaml:"feed_types,omitempty" toml:"feed_types,omitempty"`
	Sizes         map[string]string `yaml:"sizes,omitempty" toml:"sizes,omitempty"`
	Colors        map[string]string `yaml:"colors,omitempty" toml:"colors,omitempty"`
	Consistencies map[string]string `yaml:"consistencies,omitempty" toml:"consistencies,omitempty"`
	Pee           []string          `yaml:"pee,omitempty" toml:"pee,omitempty"`
	Poo           []string          `yaml:"poo,omitempty" toml:"poo,omitempty"`
	Sleep         []string          `yaml:"sleep,omitempty" toml:"sleep,omitempty"`
}

func (v VocabularyConfig) extensions() parser.Extensions {
	return parser.Extensions{
		Sides:         v.Sides,
		FeedTypes:     v.FeedTypes,
		Sizes:         v.Sizes,
		Colors:        v.Colors,
		Consistencies: v.Consistencies,
		Pee:           v.Pee,
		Poo:           v.Poo,
		Sleep:         v.Sleep,
	}
}
