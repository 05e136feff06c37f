// Package repository persists the last observed snapshot.
package repository

import (
	"context"

	"github.com/okian/rankwatch/internal/domain/model"
)

// Store holds exactly one record. Save replaces it wholesale.
type Store interface {
	// Load returns the persisted record.
	// Returns ErrNotFound before the first Save, ErrCorrupt when the stored
	// record cannot be decoded or is invalid, ErrUnavailable when the backend
	// cannot be read at all.
	Load(ctx context.Context) (model.Record, error)

	// Save replaces the persisted record. A reader never sees a mix of the
	// old and new record.
	Save(ctx context.Context, rec model.Record) error

	// Close releases the backend.
	Close() error
}
