// Package service runs the poll loop: fetch the player's snapshot, compare it
// with the persisted one and, on change, persist it and notify exactly once.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/rankwatch/internal/adapters/repository"
	"github.com/okian/rankwatch/internal/domain/model"
	"github.com/okian/rankwatch/pkg/logger"
)

// Default loop settings.
const (
	DefaultInterval      = 5 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// Service errors.
var (
	// ErrAlreadyRunning is returned by Run when the loop is already active.
	ErrAlreadyRunning = errors.New("poll loop already running")
	// ErrStepPanicked wraps a panic recovered from Save or Send.
	ErrStepPanicked = errors.New("cycle step panicked")
)

// Fetcher obtains the current snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (model.Snapshot, error)
}

// Notifier announces a changed snapshot.
type Notifier interface {
	Send(ctx context.Context, s model.Snapshot) error
}

type counters struct {
	cycles           int64
	changes          int64
	fetchFailures    int64
	storeUnavailable int64
	corruptBaselines int64
	saveFailures     int64
	notifyFailures   int64
	panics           int64

	lastOutcome Outcome
	lastCycleAt time.Time
	lastChange  time.Time
}

// Service owns the single poll loop. Only one cycle is in flight at a time.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	fetcher  Fetcher
	store    repository.Store
	notifier Notifier

	// Configuration
	player        string
	interval      time.Duration
	fetchTimeout  time.Duration
	notifyTimeout time.Duration
	now           func() time.Time

	// State
	started bool
	stopCh  chan struct{}
	done    chan struct{}
	stats   counters

	logger logger.Logger
}

// New constructs a Service around its three collaborators.
func New(f Fetcher, st repository.Store, n Notifier, opts ...Option) *Service {
	s := &Service{
		fetcher:       f,
		store:         st,
		notifier:      n,
		interval:      DefaultInterval,
		fetchTimeout:  DefaultFetchTimeout,
		notifyTimeout: DefaultNotifyTimeout,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("poller")
	}
	if s.player != "" {
		s.logger = s.logger.With(logger.String("player", s.player))
	}
	return s
}

// Run loops RunCycle then sleeps for the interval until ctx is cancelled or
// Stop is called. It returns nil on a clean stop.
func (s *Service) Run(ctx context.Context) error {
	stopCh, done, err := s.begin()
	if err != nil {
		return err
	}
	s.loop(ctx, stopCh, done)
	return nil
}

// Start runs the loop in a background goroutine. Starting a running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	stopCh, done, err := s.begin()
	if errors.Is(err, ErrAlreadyRunning) {
		return nil
	}
	go s.loop(ctx, stopCh, done)
	return nil
}

func (s *Service) begin() (stopCh, done chan struct{}, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, nil, ErrAlreadyRunning
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	return s.stopCh, s.done, nil
}

func (s *Service) loop(ctx context.Context, stopCh <-chan struct{}, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		close(done)
	}()

	s.logger.Info(ctx, "poll loop started", logger.Duration("interval", s.interval))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "poll loop stopped", logger.String("reason", "context done"))
			return
		case <-stopCh:
			s.logger.Info(ctx, "poll loop stopped", logger.String("reason", "stop requested"))
			return
		case <-timer.C:
			s.RunCycle(ctx)
			timer.Reset(s.interval)
		}
	}
}

// Stop signals the loop and waits for the in-flight cycle to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	stopCh, done := s.stopCh, s.done
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	s.mu.Unlock()

	<-done
}

// record folds a finished cycle into the counters.
func (s *Service) record(res *CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.stats
	st.cycles++
	st.lastOutcome = res.Outcome
	st.lastCycleAt = s.now()

	switch res.Outcome {
	case OutcomeFetchFailed:
		st.fetchFailures++
	case OutcomeStoreUnavailable:
		st.storeUnavailable++
	case OutcomePanicked:
		st.panics++
	case OutcomeChanged:
		if res.Panic != "" {
			st.panics++
		}
		st.changes++
		st.lastChange = st.lastCycleAt
	}
	if res.Baseline == BaselineCorrupt {
		st.corruptBaselines++
	}
	if res.SaveErr != nil {
		st.saveFailures++
	}
	if res.NotifyErr != nil {
		st.notifyFailures++
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.stats
	stats := map[string]interface{}{
		"started":          s.started,
		"player":           s.player,
		"interval":         s.interval.String(),
		"cycles":           st.cycles,
		"changes":          st.changes,
		"fetchFailures":    st.fetchFailures,
		"storeUnavailable": st.storeUnavailable,
		"corruptBaselines": st.corruptBaselines,
		"saveFailures":     st.saveFailures,
		"notifyFailures":   st.notifyFailures,
		"panics":           st.panics,
		"lastOutcome":      string(st.lastOutcome),
	}
	if !st.lastCycleAt.IsZero() {
		stats["lastCycleAt"] = st.lastCycleAt.UTC().Format(time.RFC3339)
	}
	if !st.lastChange.IsZero() {
		stats["lastChangeAt"] = st.lastChange.UTC().Format(time.RFC3339)
	}
	return stats
}

// Store exposes the state store so read-only surfaces can serve the baseline.
func (s *Service) Store() repository.Store {
	return s.store
}
