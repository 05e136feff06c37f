package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/rankwatch/internal/adapters/fetcher"
	"github.com/okian/rankwatch/internal/adapters/notifier"
	"github.com/okian/rankwatch/internal/adapters/repository"
	service "github.com/okian/rankwatch/internal/app"
	"github.com/okian/rankwatch/internal/domain/detect"
	"github.com/okian/rankwatch/internal/domain/model"
	"github.com/okian/rankwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var fixedNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func snap(t *testing.T, lp, wins, losses int, last model.GameResult) model.Snapshot {
	t.Helper()
	s, err := model.NewSnapshot("Gold II", lp, wins, losses, last, "3")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func newService(f service.Fetcher, st repository.Store, n service.Notifier) *service.Service {
	return service.New(f, st, n,
		service.WithPlayer("Someone"),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLogger(logger.Discard()),
	)
}

func TestRunCycle(t *testing.T) {
	Convey("Given a service over a file store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data.json")
		store := repository.NewFileStore(path)
		f := &fakeFetcher{}
		n := &fakeNotifier{}
		svc := newService(f, store, n)

		s1 := snap(t, 50, 10, 10, model.Victory)

		Convey("When there is no prior state", func() {
			f.set(s1)
			res := svc.RunCycle(ctx)

			Convey("Then the snapshot is persisted and announced once", func() {
				So(res.Outcome, ShouldEqual, service.OutcomeChanged)
				So(res.Baseline, ShouldEqual, service.BaselineAbsent)
				So(res.Persisted(), ShouldBeTrue)
				So(res.Notified(), ShouldBeTrue)
				So(res.Changed, ShouldHaveLength, 8)
				So(res.CycleID, ShouldNotBeEmpty)
				So(n.sent, ShouldResemble, []model.Snapshot{s1})

				rec, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(rec.Snapshot, ShouldResemble, s1)
				So(rec.ObservedAt, ShouldEqual, fixedNow)
			})
		})

		Convey("When the same snapshot is fetched repeatedly", func() {
			f.set(s1)
			So(svc.RunCycle(ctx).Outcome, ShouldEqual, service.OutcomeChanged)

			for i := 0; i < 5; i++ {
				res := svc.RunCycle(ctx)
				So(res.Outcome, ShouldEqual, service.OutcomeUnchanged)
				So(res.Baseline, ShouldEqual, service.BaselineLoaded)
			}

			Convey("Then only the first cycle notifies", func() {
				So(n.count(), ShouldEqual, 1)
				So(svc.GetStats()["cycles"], ShouldEqual, int64(6))
				So(svc.GetStats()["changes"], ShouldEqual, int64(1))
			})
		})

		Convey("When only the last game result flips", func() {
			f.set(s1)
			svc.RunCycle(ctx)

			s2 := snap(t, 50, 10, 10, model.Defeat)
			f.set(s2)
			res := svc.RunCycle(ctx)

			Convey("Then exactly one more notification is sent and the record is replaced", func() {
				So(res.Outcome, ShouldEqual, service.OutcomeChanged)
				So(res.Changed, ShouldResemble, []string{detect.FieldLastGameResult})
				So(n.count(), ShouldEqual, 2)
				So(n.sent[1], ShouldResemble, s2)
				So(notifier.Describe(n.sent[1], false), ShouldContainSubstring, notifier.MarkerDefeat)

				rec, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(rec.Snapshot, ShouldResemble, s2)
			})
		})

		Convey("When the fetch fails", func() {
			f.set(s1)
			svc.RunCycle(ctx)
			before, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			f.fail(fmt.Errorf("%w: boom", fetcher.ErrRequest))
			res := svc.RunCycle(ctx)

			Convey("Then nothing is persisted or sent", func() {
				So(res.Outcome, ShouldEqual, service.OutcomeFetchFailed)
				So(errors.Is(res.FetchErr, fetcher.ErrRequest), ShouldBeTrue)
				So(res.Baseline, ShouldEqual, service.BaselineNone)
				So(n.count(), ShouldEqual, 1)

				after, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(after, ShouldResemble, before)
				So(svc.GetStats()["fetchFailures"], ShouldEqual, int64(1))
			})
		})

		Convey("When the persisted file is corrupt", func() {
			So(os.WriteFile(path, []byte("{not json"), 0o644), ShouldBeNil)
			f.set(s1)
			res := svc.RunCycle(ctx)

			Convey("Then it is treated as absent and overwritten", func() {
				So(res.Outcome, ShouldEqual, service.OutcomeChanged)
				So(res.Baseline, ShouldEqual, service.BaselineCorrupt)
				So(errors.Is(res.LoadErr, repository.ErrCorrupt), ShouldBeTrue)
				So(n.count(), ShouldEqual, 1)

				rec, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(rec.Snapshot, ShouldResemble, s1)
			})
		})

		Convey("When the notifier fails", func() {
			n.err = fmt.Errorf("%w: 500", notifier.ErrStatus)
			f.set(s1)
			res := svc.RunCycle(ctx)

			Convey("Then the snapshot is still persisted", func() {
				So(res.Outcome, ShouldEqual, service.OutcomeChanged)
				So(res.Persisted(), ShouldBeTrue)
				So(res.Notified(), ShouldBeFalse)
				So(errors.Is(res.NotifyErr, notifier.ErrStatus), ShouldBeTrue)

				_, err := store.Load(ctx)
				So(err, ShouldBeNil)
			})

			Convey("And the next identical fetch does not retry", func() {
				n.err = nil
				res := svc.RunCycle(ctx)
				So(res.Outcome, ShouldEqual, service.OutcomeUnchanged)
				So(n.count(), ShouldEqual, 1)
			})
		})

		Convey("When a collaborator panics", func() {
			f.set(s1)
			f.panic = "scraper exploded"
			res := svc.RunCycle(ctx)

			Convey("Then the cycle is reported and the next one proceeds", func() {
				So(res.Outcome, ShouldEqual, service.OutcomePanicked)
				So(res.Panic, ShouldEqual, "scraper exploded")
				So(res.CycleID, ShouldNotBeEmpty)

				next := svc.RunCycle(ctx)
				So(next.Outcome, ShouldEqual, service.OutcomeChanged)
				So(svc.GetStats()["panics"], ShouldEqual, int64(1))
			})
		})
	})
}

func TestRunCycleStoreFailures(t *testing.T) {
	Convey("Given a store that cannot be written", t, func() {
		ctx := context.Background()
		st := &brokenStore{loadErr: repository.ErrNotFound, saveErr: errDisk}
		f := &fakeFetcher{}
		f.set(snap(t, 1, 1, 0, model.Victory))
		n := &fakeNotifier{}
		svc := newService(f, st, n)

		res := svc.RunCycle(ctx)

		Convey("Then the notification is still attempted", func() {
			So(res.Outcome, ShouldEqual, service.OutcomeChanged)
			So(errors.Is(res.SaveErr, errDisk), ShouldBeTrue)
			So(res.Notified(), ShouldBeTrue)
			So(n.count(), ShouldEqual, 1)
			So(svc.GetStats()["saveFailures"], ShouldEqual, int64(1))
		})
	})

	Convey("Given a store whose Save panics", t, func() {
		ctx := context.Background()
		st := &brokenStore{loadErr: repository.ErrNotFound, savePanic: "boom"}
		f := &fakeFetcher{}
		f.set(snap(t, 1, 1, 0, model.Victory))
		n := &fakeNotifier{}
		svc := newService(f, st, n)

		res := svc.RunCycle(ctx)

		Convey("Then the panic is recorded and the notification still goes out", func() {
			So(res.Outcome, ShouldEqual, service.OutcomeChanged)
			So(errors.Is(res.SaveErr, service.ErrStepPanicked), ShouldBeTrue)
			So(res.Panic, ShouldEqual, "boom")
			So(res.Notified(), ShouldBeTrue)
			So(n.count(), ShouldEqual, 1)
			So(svc.GetStats()["panics"], ShouldEqual, int64(1))
		})
	})

	Convey("Given a notifier whose Send panics", t, func() {
		ctx := context.Background()
		st := &brokenStore{loadErr: repository.ErrNotFound}
		f := &fakeFetcher{}
		f.set(snap(t, 1, 1, 0, model.Victory))
		n := &fakeNotifier{panic: "webhook exploded"}
		svc := newService(f, st, n)

		res := svc.RunCycle(ctx)

		Convey("Then the snapshot is still persisted", func() {
			So(res.Outcome, ShouldEqual, service.OutcomeChanged)
			So(res.Persisted(), ShouldBeTrue)
			So(st.saved, ShouldHaveLength, 1)
			So(errors.Is(res.NotifyErr, service.ErrStepPanicked), ShouldBeTrue)
			So(svc.GetStats()["notifyFailures"], ShouldEqual, int64(1))
		})
	})

	Convey("Given a store that cannot be read", t, func() {
		ctx := context.Background()
		st := &brokenStore{loadErr: fmt.Errorf("%w: connection refused", repository.ErrUnavailable)}
		f := &fakeFetcher{}
		f.set(snap(t, 1, 1, 0, model.Victory))
		n := &fakeNotifier{}
		svc := newService(f, st, n)

		res := svc.RunCycle(ctx)

		Convey("Then the cycle is skipped without notifying", func() {
			So(res.Outcome, ShouldEqual, service.OutcomeStoreUnavailable)
			So(errors.Is(res.LoadErr, repository.ErrUnavailable), ShouldBeTrue)
			So(st.saved, ShouldBeEmpty)
			So(n.count(), ShouldEqual, 0)
		})
	})
}

func TestRunCycleEndToEnd(t *testing.T) {
	Convey("Given real adapters against test servers", t, func() {
		ctx := context.Background()

		var mu sync.Mutex
		last := "Victory"
		site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			if strings.Contains(r.URL.Path, "/behavior/") {
				_, _ = w.Write([]byte(`<div class="number solo-number">2</div>`))
				return
			}
			_, _ = fmt.Fprintf(w, `<div class="leagueTier">Silver I</div>
<div class="league-points">LP: 12</div>
<div class="winslosses">Wins: 7 Losses: 3</div>
<div class="victoryDefeatText">%s</div>`, last)
		}))
		defer site.Close()

		var bodies []string
		hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(raw))
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer hook.Close()

		store := repository.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
		svc := newService(
			fetcher.New(site.URL, "Someone"),
			store,
			notifier.New(hook.URL, "Someone"),
		)

		Convey("When the last game flips from Victory to Defeat", func() {
			So(svc.RunCycle(ctx).Outcome, ShouldEqual, service.OutcomeChanged)
			So(svc.RunCycle(ctx).Outcome, ShouldEqual, service.OutcomeUnchanged)

			mu.Lock()
			last = "Defeat"
			mu.Unlock()
			res := svc.RunCycle(ctx)

			Convey("Then two webhooks were posted and the second carries the failure marker", func() {
				So(res.Outcome, ShouldEqual, service.OutcomeChanged)
				So(bodies, ShouldHaveLength, 2)
				So(bodies[0], ShouldContainSubstring, notifier.MarkerVictory)
				So(bodies[1], ShouldContainSubstring, notifier.MarkerDefeat)
				So(bodies[1], ShouldContainSubstring, "Win Rate: **70.00%**")
			})
		})
	})
}

func TestServiceLoop(t *testing.T) {
	Convey("Given a service with a short interval", t, func() {
		f := &fakeFetcher{}
		f.set(snap(t, 5, 1, 1, model.Defeat))
		n := &fakeNotifier{}
		st := repository.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
		svc := service.New(f, st, n,
			service.WithInterval(10*time.Millisecond),
			service.WithLogger(logger.Discard()),
		)

		Convey("When started and stopped", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)

			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if cycles, _ := svc.GetStats()["cycles"].(int64); cycles >= 3 {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			svc.Stop()

			Convey("Then several cycles ran but only one notification was sent", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
				So(stats["cycles"], ShouldBeGreaterThanOrEqualTo, int64(3))
				So(stats["lastOutcome"], ShouldEqual, string(service.OutcomeUnchanged))
				So(n.count(), ShouldEqual, 1)
			})
		})

		Convey("When Run is called while already running", func() {
			ctx, cancel := context.WithCancel(context.Background())
			So(svc.Start(ctx), ShouldBeNil)
			err := svc.Run(ctx)
			cancel()
			svc.Stop()

			So(errors.Is(err, service.ErrAlreadyRunning), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Run(ctx) }()
			cancel()

			select {
			case err := <-errCh:
				So(err, ShouldBeNil)
			case <-time.After(5 * time.Second):
				So("run did not return", ShouldBeEmpty)
			}
		})
	})
}
