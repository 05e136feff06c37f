package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/rankwatch/internal/domain/model"
)

type fakeFetcher struct {
	mu    sync.Mutex
	snaps []model.Snapshot
	err   error
	panic any
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panic != nil {
		p := f.panic
		f.panic = nil
		panic(p)
	}
	if f.err != nil {
		return model.Snapshot{}, f.err
	}
	s := f.snaps[0]
	if len(f.snaps) > 1 {
		f.snaps = f.snaps[1:]
	}
	return s, nil
}

func (f *fakeFetcher) set(snaps ...model.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = snaps
	f.err = nil
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []model.Snapshot
	err   error
	panic any
}

func (n *fakeNotifier) Send(ctx context.Context, s model.Snapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, s)
	if n.panic != nil {
		panic(n.panic)
	}
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// brokenStore fails the operations it is told to.
type brokenStore struct {
	loadErr   error
	saveErr   error
	savePanic any
	saved     []model.Record
}

var errDisk = errors.New("disk full")

func (b *brokenStore) Load(ctx context.Context) (model.Record, error) {
	return model.Record{}, b.loadErr
}

func (b *brokenStore) Save(ctx context.Context, rec model.Record) error {
	if b.savePanic != nil {
		panic(b.savePanic)
	}
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saved = append(b.saved, rec)
	return nil
}

func (b *brokenStore) Close() error { return nil }
