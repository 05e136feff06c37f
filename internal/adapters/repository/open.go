package repository

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Settings selects and configures a store driver.
type Settings struct {
	Driver string

	FilePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	SQLitePath string
}

// Open builds the store named by s.Driver, wrapped with latency and error metrics.
func Open(ctx context.Context, s Settings) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case DriverFile, "":
		st = NewFileStore(s.FilePath)
	case DriverRedis:
		st = OpenRedis(s.RedisAddr, s.RedisPassword, s.RedisDB, s.RedisKey)
	case DriverSQLite:
		st, err = OpenSQLite(ctx, s.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(st), nil
}

// Pinger is implemented by stores backed by a server or database that may be
// unreachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks st when it supports it. Other stores report nil.
func Ping(ctx context.Context, st Store) error {
	if p, ok := st.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
