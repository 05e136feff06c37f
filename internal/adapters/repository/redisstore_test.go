package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/okian/rankwatch/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRedisStore(t *testing.T) {
	Convey("Given a redis store backed by miniredis", t, func() {
		ctx := context.Background()
		mr, err := miniredis.Run()
		So(err, ShouldBeNil)
		defer mr.Close()

		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = client.Close() }()
		store := repository.NewRedisStore(client, "rankwatch:test")

		Convey("When the key is absent", func() {
			_, err := store.Load(ctx)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a record is saved", func() {
			rec := sampleRecord(t, 22)
			So(store.Save(ctx, rec), ShouldBeNil)

			Convey("Then it loads back unchanged", func() {
				got, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, rec)
			})

			Convey("Then the key holds the JSON document without expiry", func() {
				raw, err := mr.Get("rankwatch:test")
				So(err, ShouldBeNil)
				So(raw, ShouldContainSubstring, `"league_points": 22`)
				So(mr.TTL("rankwatch:test"), ShouldEqual, time.Duration(0))
			})
		})

		Convey("When the key holds garbage", func() {
			So(mr.Set("rankwatch:test", "{nope"), ShouldBeNil)
			_, err := store.Load(ctx)
			So(errors.Is(err, repository.ErrCorrupt), ShouldBeTrue)
		})

		Convey("When a TTL is configured", func() {
			ttlStore := repository.NewRedisStore(client, "rankwatch:ttl", repository.WithRedisTTL(time.Hour))
			So(ttlStore.Save(ctx, sampleRecord(t, 1)), ShouldBeNil)
			So(mr.TTL("rankwatch:ttl"), ShouldEqual, time.Hour)
		})

		Convey("When the server goes away", func() {
			mr.Close()
			_, err := store.Load(ctx)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)

			err = store.Save(ctx, sampleRecord(t, 3))
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
			So(repository.Kind(err), ShouldEqual, "unavailable")
		})
	})
}

func TestOpenRedis(t *testing.T) {
	Convey("Given a reachable redis", t, func() {
		ctx := context.Background()
		mr, err := miniredis.Run()
		So(err, ShouldBeNil)
		defer mr.Close()

		store, err := repository.Open(ctx, repository.Settings{
			Driver:    repository.DriverRedis,
			RedisAddr: mr.Addr(),
			RedisKey:  "rankwatch:open",
		})
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		So(store.Save(ctx, sampleRecord(t, 8)), ShouldBeNil)
		So(mr.Exists("rankwatch:open"), ShouldBeTrue)
	})

	Convey("Given an unreachable redis", t, func() {
		mr, err := miniredis.Run()
		So(err, ShouldBeNil)
		addr := mr.Addr()
		mr.Close()

		ctx := context.Background()
		store, err := repository.Open(ctx, repository.Settings{
			Driver:    repository.DriverRedis,
			RedisAddr: addr,
			RedisKey:  "k",
		})

		Convey("Then opening succeeds and the outage surfaces per call", func() {
			So(err, ShouldBeNil)
			defer func() { _ = store.Close() }()

			So(errors.Is(repository.Ping(ctx, store), repository.ErrUnavailable), ShouldBeTrue)
			_, err := store.Load(ctx)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
		})
	})
}
