package repository_test

import (
	"testing"
	"time"

	"github.com/okian/rankwatch/internal/domain/model"
)

func sampleRecord(t *testing.T, lp int) model.Record {
	t.Helper()
	s, err := model.NewSnapshot("Gold II", lp, 12, 9, model.Victory, "3")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return model.NewRecord(s, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))
}
