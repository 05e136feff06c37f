package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/rankwatch/internal/domain/model"
)

// RedisStore keeps the record as a JSON string under one key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	owned  bool
}

// NewRedisStore wraps an existing client. Close leaves the client open.
func NewRedisStore(client redis.UniversalClient, key string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: key}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenRedis builds a client for addr. The client dials lazily, so an
// unreachable server surfaces as ErrUnavailable from Load and Save.
func OpenRedis(addr, password string, db int, key string, opts ...RedisOption) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	s := NewRedisStore(client, key, opts...)
	s.owned = true
	return s
}

// Ping reports whether the server answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping redis: %w", ErrUnavailable, err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (model.Record, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Record{}, ErrNotFound
		}
		return model.Record{}, fmt.Errorf("%w: get %s: %w", ErrUnavailable, s.key, err)
	}
	return decodeRecord(raw)
}

// Save implements Store. A single SET replaces the whole document.
func (s *RedisStore) Save(ctx context.Context, rec model.Record) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrUnavailable, s.key, err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
