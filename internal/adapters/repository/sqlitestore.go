package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/okian/rankwatch/internal/domain/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS snapshot (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	payload     TEXT    NOT NULL,
	observed_at INTEGER NOT NULL
)`

// SQLiteStore keeps the record in a single-row table.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	ready bool
}

// OpenSQLite opens the database at path and tries to create the schema. A
// database that cannot be reached yet is retried on every Load and Save.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrUnavailable)
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	_ = s.ensure(ctx)
	return s, nil
}

// ensure creates the schema once it first succeeds.
func (s *SQLiteStore) ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrUnavailable, err)
	}
	s.ready = true
	return nil
}

// Ping reports whether the database can be used.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.ensure(ctx)
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (model.Record, error) {
	if err := s.ensure(ctx); err != nil {
		return model.Record{}, err
	}
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshot WHERE id = 1`).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, ErrNotFound
		}
		return model.Record{}, fmt.Errorf("%w: select snapshot: %w", ErrUnavailable, err)
	}
	return decodeRecord([]byte(payload))
}

// Save implements Store. The upsert runs as one statement.
func (s *SQLiteStore) Save(ctx context.Context, rec model.Record) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.ensure(ctx); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshot (id, payload, observed_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, observed_at = excluded.observed_at`,
		string(raw), rec.ObservedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert snapshot: %w", ErrUnavailable, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

