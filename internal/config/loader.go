package config

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names read by the loader.
const (
	EnvPrefix     = "RANKWATCH_"
	EnvConfigFile = "RANKWATCH_CONFIG"
	EnvDotenvFile = "RANKWATCH_ENV_FILE"
)

// legacyEnv maps the unprefixed variable names of earlier deployments onto config keys.
var legacyEnv = map[string]string{
	"LEAGUE_USERNAME": "player",
	"WEBHOOK_URL":     "webhook_url",
}

// Load builds a Config by layering defaults, .env, optional file and env vars.
// The YAML file is taken from RANKWATCH_CONFIG when set.
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file layer.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. .env in the working directory, or RANKWATCH_ENV_FILE, exported without overriding the environment
//  3. YAML file at path
//  4. legacy env names (LEAGUE_USERNAME, WEBHOOK_URL)
//  5. env (prefix RANKWATCH_)
func LoadFile(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadErr(path, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, loadErr("legacy env", err)
	}

	// RANKWATCH_POLL_INTERVAL -> poll_interval. Underscores are kept to match
	// the flat koanf tags on the struct.
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, loadErr("env", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadErr("decode", err)
	}

	cfg.Player = strings.TrimSpace(cfg.Player)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	if path := os.Getenv(EnvDotenvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return loadErr(path, err)
		}
		return nil
	}
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return loadErr(".env", err)
}

// Validate reports the first setting that would keep the poller from running.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Player) == "" {
		return invalidf("player must not be empty")
	}
	if err := validateHTTPURL("webhook_url", c.WebhookURL); err != nil {
		return err
	}
	if err := validateHTTPURL("base_url", c.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.ProfileURL) == "" {
		return invalidf("profile_url must not be empty")
	}
	if c.PollInterval <= 0 {
		return invalidf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.FetchTimeout <= 0 {
		return invalidf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.NotifyTimeout <= 0 {
		return invalidf("notify_timeout must be positive, got %s", c.NotifyTimeout)
	}
	if c.NotifyRatePerMinute <= 0 {
		return invalidf("notify_rate_per_minute must be positive, got %d", c.NotifyRatePerMinute)
	}

	switch c.StoreDriver {
	case DriverFile:
		if strings.TrimSpace(c.StatePath) == "" {
			return invalidf("state_path must not be empty for the file store")
		}
	case DriverRedis:
		if strings.TrimSpace(c.RedisAddr) == "" || strings.TrimSpace(c.RedisKey) == "" {
			return invalidf("redis_addr and redis_key must not be empty for the redis store")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return invalidf("sqlite_path must not be empty for the sqlite store")
		}
	default:
		return invalidf("unknown store_driver %q", c.StoreDriver)
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return invalidf("%s must not be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalidf("%s: %v", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidf("%s must be an absolute http(s) URL", key)
	}
	return nil
}
