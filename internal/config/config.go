// Package config defines service configuration and its loading rules.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers .env, an optional YAML file and XC_ environment variables on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
)

// Store and feed driver names.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the event store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the Postgres DSN used by the postgres store and feed.
	DatabaseURL string `koanf:"database_url"`

	// FeedDriver selects the change feed: memory, redis or postgres.
	FeedDriver string `koanf:"feed_driver"`

	RedisAddr          string `koanf:"redis_addr"`
	RedisPassword      string `koanf:"redis_password"`
	RedisDB            int    `koanf:"redis_db"`
	RedisChannelPrefix string `koanf:"redis_channel_prefix"`

	// LeaderboardSize caps the live leaderboard display.
	LeaderboardSize int `koanf:"leaderboard_size"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RejectWhenActive refuses to create an event while another is active
	// instead of superseding it.
	RejectWhenActive bool `koanf:"reject_when_active"`

	// FilterResultsByEvent skips result notifications for events a display
	// is not tracking.
	FilterResultsByEvent bool `koanf:"filter_results_by_event"`

	// DedupeSize bounds the idempotency key cache for result submissions.
	DedupeSize int `koanf:"dedupe_size"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	WSPingIntervalMS int `koanf:"ws_ping_interval_ms"`
	WSWriteTimeoutMS int `koanf:"ws_write_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		StoreDriver:          DriverMemory,
		FeedDriver:           DriverMemory,
		RedisAddr:            "localhost:6379",
		RedisChannelPrefix:   "xc:",
		LeaderboardSize:      10,
		MaxLeaderboardLimit:  100,
		FilterResultsByEvent: true,
		DedupeSize:           10_000,
		CORSAllowedOrigins:   []string{"*"},
		WSPingIntervalMS:     30_000,
		WSWriteTimeoutMS:     10_000,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.FeedDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis feed", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.StoreDriver != DriverPostgres {
			return fmt.Errorf("%w: the postgres feed needs the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown feed_driver %q", ErrInvalidConfig, c.FeedDriver)
	}
	if c.LeaderboardSize < 1 {
		return fmt.Errorf("%w: leaderboard_size must be positive", ErrInvalidConfig)
	}
	if c.MaxLeaderboardLimit < c.LeaderboardSize {
		return fmt.Errorf("%w: max_leaderboard_limit must be at least leaderboard_size", ErrInvalidConfig)
	}
	return nil
}
