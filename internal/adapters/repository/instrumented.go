package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/rankwatch/internal/domain/model"
	"github.com/okian/rankwatch/pkg/metrics"
)

type instrumented struct {
	next Store
}

// Instrument records latency and error metrics around every call to st.
func Instrument(st Store) Store {
	if _, ok := st.(*instrumented); ok {
		return st
	}
	return &instrumented{next: st}
}

func (s *instrumented) Load(ctx context.Context) (model.Record, error) {
	start := time.Now()
	rec, err := s.next.Load(ctx)
	metrics.RecordStoreLatency("load", time.Since(start))
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError("load", Kind(err))
	}
	return rec, err
}

func (s *instrumented) Save(ctx context.Context, rec model.Record) error {
	start := time.Now()
	err := s.next.Save(ctx, rec)
	metrics.RecordStoreLatency("save", time.Since(start))
	if err != nil {
		metrics.RecordStoreError("save", Kind(err))
	}
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

func (s *instrumented) Ping(ctx context.Context) error {
	return Ping(ctx, s.next)
}
