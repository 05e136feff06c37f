package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rankwatch/internal/adapters/fetcher"
	"github.com/okian/rankwatch/internal/adapters/notifier"
	"github.com/okian/rankwatch/internal/adapters/repository"
	"github.com/okian/rankwatch/internal/domain/detect"
	"github.com/okian/rankwatch/internal/domain/model"
	"github.com/okian/rankwatch/pkg/logger"
	"github.com/okian/rankwatch/pkg/metrics"
)

// Outcome is how a cycle ended.
type Outcome string

// Cycle outcomes.
const (
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomeStoreUnavailable Outcome = "store_unavailable"
	OutcomeUnchanged        Outcome = "unchanged"
	OutcomeChanged          Outcome = "changed"
	OutcomePanicked         Outcome = "panicked"
)

// Baseline is what the store held when the cycle compared against it.
type Baseline string

// Baseline states. BaselineNone means the cycle never reached the store.
const (
	BaselineNone    Baseline = ""
	BaselineLoaded  Baseline = "loaded"
	BaselineAbsent  Baseline = "absent"
	BaselineCorrupt Baseline = "corrupt"
)

// CycleResult reports everything one cycle did. Errors are values here,
// never swallowed.
type CycleResult struct {
	CycleID  string
	Outcome  Outcome
	Baseline Baseline
	Snapshot model.Snapshot
	Changed  []string
	Duration time.Duration

	FetchErr  error
	LoadErr   error
	SaveErr   error
	NotifyErr error
	Panic     string
}

// Notified reports whether a notification went out.
func (r CycleResult) Notified() bool {
	return r.Outcome == OutcomeChanged && r.NotifyErr == nil
}

// Persisted reports whether the snapshot was saved.
func (r CycleResult) Persisted() bool {
	return r.Outcome == OutcomeChanged && r.SaveErr == nil
}

// RunCycle performs one fetch, compare and persist-and-notify pass.
// A panic in any collaborator is recovered and reported as OutcomePanicked.
func (s *Service) RunCycle(ctx context.Context) (res CycleResult) {
	res.CycleID = uuid.NewString()
	log := s.logger.With(logger.String("cycle_id", res.CycleID))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomePanicked
			res.Panic = fmt.Sprint(r)
			log.Error(ctx, "cycle panicked",
				logger.String("panic", res.Panic),
				logger.String("stack", string(debug.Stack())),
			)
			metrics.RecordErrorByComponent("service", "panic")
		}
		res.Duration = time.Since(start)
		metrics.RecordCycle(string(res.Outcome), res.Duration)
		s.record(&res)
	}()

	return s.cycle(ctx, log, res)
}

func (s *Service) cycle(ctx context.Context, log logger.Logger, res CycleResult) CycleResult {
	snap, err := s.fetch(ctx)
	if err != nil {
		res.Outcome = OutcomeFetchFailed
		res.FetchErr = err
		log.Warn(ctx, "fetch failed, skipping cycle",
			logger.String("kind", fetcher.Kind(err)),
			logger.Error(err),
		)
		return res
	}
	res.Snapshot = snap
	metrics.UpdateSnapshot(snap.LeaguePoints, snap.Wins, snap.Losses, snap.WinRatePercent)

	var previous *model.Snapshot
	rec, err := s.store.Load(ctx)
	switch {
	case err == nil:
		res.Baseline = BaselineLoaded
		previous = &rec.Snapshot
	case errors.Is(err, repository.ErrNotFound):
		res.Baseline = BaselineAbsent
	case errors.Is(err, repository.ErrCorrupt):
		res.Baseline = BaselineCorrupt
		res.LoadErr = err
		log.Warn(ctx, "persisted snapshot is corrupt, treating as absent", logger.Error(err))
	default:
		res.Outcome = OutcomeStoreUnavailable
		res.LoadErr = err
		log.Error(ctx, "state store unavailable, skipping cycle", logger.Error(err))
		return res
	}

	if !detect.HasChanged(previous, snap) {
		res.Outcome = OutcomeUnchanged
		metrics.MarkSuccessfulCycle(time.Now())
		log.Debug(ctx, "snapshot unchanged")
		return res
	}

	res.Outcome = OutcomeChanged
	res.Changed = detect.Diff(previous, snap)
	metrics.RecordChangeDetected()

	// Save and Send are independent: neither failure suppresses the other.
	if err := s.guard(ctx, log, &res, "save", func() error {
		return s.store.Save(ctx, model.NewRecord(snap, s.now()))
	}); err != nil {
		res.SaveErr = err
		log.Error(ctx, "failed to persist snapshot", logger.Error(err))
	}
	if err := s.guard(ctx, log, &res, "notify", func() error {
		return s.notify(ctx, snap)
	}); err != nil {
		res.NotifyErr = err
		log.Error(ctx, "failed to send notification",
			logger.String("kind", notifier.Kind(err)),
			logger.Error(err),
		)
	}
	if res.SaveErr == nil && res.NotifyErr == nil {
		metrics.MarkSuccessfulCycle(time.Now())
	}

	log.Info(ctx, "snapshot changed",
		logger.String("baseline", string(res.Baseline)),
		logger.Strings("changed", res.Changed),
		logger.String("summary", snap.String()),
	)
	return res
}

// guard runs one step of the change phase, turning a panic into an error
// wrapping ErrStepPanicked so the remaining step still runs.
func (s *Service) guard(ctx context.Context, log logger.Logger, res *CycleResult, step string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			res.Panic = fmt.Sprint(r)
			err = fmt.Errorf("%w: %s: %v", ErrStepPanicked, step, r)
			log.Error(ctx, "step panicked",
				logger.String("step", step),
				logger.String("panic", res.Panic),
				logger.String("stack", string(debug.Stack())),
			)
			metrics.RecordErrorByComponent("service", "panic")
		}
	}()
	return fn()
}

func (s *Service) fetch(ctx context.Context) (model.Snapshot, error) {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.fetcher.Fetch(fctx)
	metrics.RecordFetchLatency(time.Since(start))
	if err != nil {
		metrics.RecordFetchError(fetcher.Kind(err))
	}
	return snap, err
}

func (s *Service) notify(ctx context.Context, snap model.Snapshot) error {
	nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	start := time.Now()
	err := s.notifier.Send(nctx, snap)
	status := "sent"
	if err != nil {
		status = "failed"
	}
	metrics.RecordNotification(status, time.Since(start))
	return err
}
