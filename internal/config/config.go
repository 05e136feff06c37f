// Package config defines the poller configuration and its loading hooks.
//
// Conventions:
// - Keys are flat and snake_case so env vars map onto them one to one.
// - New(ctx) returns the defaults; Load(ctx) layers file and env on top and validates.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"time"
)

// Store drivers understood by the repository package.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Player is the identifier of the tracked player, e.g. "Faker-KR1".
	Player string `koanf:"player"`

	// Region is the League of Graphs region path segment.
	Region string `koanf:"region"`

	// WebhookURL receives the change announcements.
	WebhookURL string `koanf:"webhook_url"`

	// PollInterval is the sleep between two cycles.
	PollInterval time.Duration `koanf:"poll_interval"`

	// FetchTimeout and NotifyTimeout bound each outbound request.
	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	NotifyTimeout time.Duration `koanf:"notify_timeout"`

	// BaseURL is the scrape origin; UserAgent is sent with every page request.
	BaseURL   string `koanf:"base_url"`
	UserAgent string `koanf:"user_agent"`

	// ProfileURL is the deep link template; "{player}" is replaced by the player id.
	ProfileURL string `koanf:"profile_url"`

	// EmbedTitle is the title of the webhook embed.
	EmbedTitle string `koanf:"embed_title"`

	// PlaytimeEquivalents appends miles/books/movies lines to the announcement.
	PlaytimeEquivalents bool `koanf:"playtime_equivalents"`

	// NotifyRatePerMinute caps outbound webhook posts.
	NotifyRatePerMinute int `koanf:"notify_rate_per_minute"`

	// StoreDriver selects the state store: file, redis or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StatePath is the file driver's JSON document.
	StatePath string `koanf:"state_path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// SQLitePath is the sqlite driver's database file.
	SQLitePath string `koanf:"sqlite_path"`

	// Addr is the status server listen address, e.g. ":9090". Empty disables it.
	Addr string `koanf:"addr"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Region:              "na",
		PollInterval:        5 * time.Second,
		FetchTimeout:        10 * time.Second,
		NotifyTimeout:       10 * time.Second,
		BaseURL:             "https://www.leagueofgraphs.com",
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36",
		ProfileURL:          "https://tracker.gg/lol/profile/riot/NA/{player}/overview?playlist=RANKED_SOLO_5x5",
		EmbedTitle:          "League of Graphs",
		NotifyRatePerMinute: 30,
		StoreDriver:         DriverFile,
		StatePath:           "data.json",
		RedisAddr:           "localhost:6379",
		RedisKey:            "rankwatch:snapshot",
		SQLitePath:          "rankwatch.db",
	}
}
