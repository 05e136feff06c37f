// Package bootstrap turns a validated Config into the poller's components.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/okian/rankwatch/internal/adapters/fetcher"
	"github.com/okian/rankwatch/internal/adapters/notifier"
	"github.com/okian/rankwatch/internal/adapters/repository"
	service "github.com/okian/rankwatch/internal/app"
	"github.com/okian/rankwatch/internal/config"
	"github.com/okian/rankwatch/pkg/logger"
)

// Components are the collaborators of one poller instance.
type Components struct {
	Store    repository.Store
	Fetcher  *fetcher.Client
	Notifier *notifier.Discord
	Service  *service.Service
}

// Close releases the store.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// StoreSettings maps the config onto repository settings.
func StoreSettings(cfg *config.Config) repository.Settings {
	return repository.Settings{
		Driver:        cfg.StoreDriver,
		FilePath:      cfg.StatePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisKey:      cfg.RedisKey,
		SQLitePath:    cfg.SQLitePath,
	}
}

// OpenStore opens the configured state store.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	st, err := repository.Open(ctx, StoreSettings(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	return st, nil
}

// NewFetcher builds the League of Graphs client.
func NewFetcher(cfg *config.Config) *fetcher.Client {
	return fetcher.New(cfg.BaseURL, cfg.Player,
		fetcher.WithRegion(cfg.Region),
		fetcher.WithTimeout(cfg.FetchTimeout),
		fetcher.WithUserAgent(cfg.UserAgent),
	)
}

// NewNotifier builds the webhook notifier.
func NewNotifier(cfg *config.Config) *notifier.Discord {
	return notifier.New(cfg.WebhookURL, cfg.Player,
		notifier.WithTimeout(cfg.NotifyTimeout),
		notifier.WithTitle(cfg.EmbedTitle),
		notifier.WithProfileURL(cfg.ProfileURL),
		notifier.WithRatePerMinute(cfg.NotifyRatePerMinute),
		notifier.WithPlaytimeEquivalents(cfg.PlaytimeEquivalents),
	)
}

// Build opens the store and assembles the service around it. An unreachable
// store is only logged; each cycle then reports it until the backend recovers.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.Ping(ctx, st); err != nil {
		log.Warn(ctx, "state store unavailable at startup, cycles will skip until it recovers",
			logger.String("store", cfg.StoreDriver),
			logger.Error(err),
		)
	}

	c := &Components{
		Store:    st,
		Fetcher:  NewFetcher(cfg),
		Notifier: NewNotifier(cfg),
	}
	c.Service = service.New(c.Fetcher, c.Store, c.Notifier,
		service.WithPlayer(cfg.Player),
		service.WithInterval(cfg.PollInterval),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithNotifyTimeout(cfg.NotifyTimeout),
		service.WithLogger(log),
	)
	return c, nil
}
