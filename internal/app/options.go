package service

import (
	"time"

	"github.com/okian/rankwatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPlayer sets the player identifier attached to logs and stats.
func WithPlayer(player string) Option {
	return func(s *Service) {
		s.player = player
	}
}

// WithInterval sets the pause between cycles.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithFetchTimeout bounds a single fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithNotifyTimeout bounds a single notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used to stamp persisted records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
