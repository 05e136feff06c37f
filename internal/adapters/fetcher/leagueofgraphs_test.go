package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/rankwatch/internal/adapters/fetcher"
	"github.com/okian/rankwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const summonerPage = `<!DOCTYPE html>
<html><body>
<div class="bannerSubtitle">
  <div class="leagueTier">
      Gold II
  </div>
  <div class="league-points">LP: 75</div>
</div>
<div class="winslosses">
  <span class="wins">Wins: <span>123</span></span>
  <span class="losses">Losses: <span>110</span></span>
</div>
<table><tr><td>
  <div class="victoryDefeatText victory">Victory</div>
</td></tr><tr><td>
  <div class="victoryDefeatText defeat">Defeat</div>
</td></tr></table>
</body></html>`

const behaviorPage = `<html><body>
<div class="box"><div class="number solo-number">
  3
</div></div>
</body></html>`

type site struct {
	mu        sync.Mutex
	summoner  string
	behavior  string
	status    int
	paths     []string
	userAgent string
}

func (s *site) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.paths = append(s.paths, r.URL.EscapedPath())
		s.userAgent = r.UserAgent()
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/summoner/behavior/") {
			_, _ = w.Write([]byte(s.behavior))
			return
		}
		_, _ = w.Write([]byte(s.summoner))
	})
}

func TestFetch(t *testing.T) {
	Convey("Given a League of Graphs site", t, func() {
		ctx := context.Background()
		s := &site{summoner: summonerPage, behavior: behaviorPage}
		srv := httptest.NewServer(s.handler())
		defer srv.Close()

		client := fetcher.New(srv.URL, "Some One#NA1", fetcher.WithRegion("NA"))

		Convey("When both pages carry every field", func() {
			snap, err := client.Fetch(ctx)

			Convey("Then the snapshot is built from the first match of each selector", func() {
				So(err, ShouldBeNil)
				So(snap.Rank, ShouldEqual, "Gold II")
				So(snap.LeaguePoints, ShouldEqual, 75)
				So(snap.Wins, ShouldEqual, 123)
				So(snap.Losses, ShouldEqual, 110)
				So(snap.TotalGames, ShouldEqual, 233)
				So(snap.WinRatePercent, ShouldEqual, 52.79)
				So(snap.LastGameResult, ShouldEqual, model.Victory)
				So(snap.SessionPlaytime, ShouldEqual, "3")
			})

			Convey("Then the player is path-escaped and a browser User-Agent is sent", func() {
				So(s.paths, ShouldResemble, []string{
					"/summoner/na/Some%20One%23NA1",
					"/summoner/behavior/na/Some%20One%23NA1",
				})
				So(s.userAgent, ShouldEqual, fetcher.DefaultUserAgent)
			})
		})

		Convey("When the stats page lacks a field", func() {
			s.summoner = strings.Replace(summonerPage, `class="league-points"`, `class="nope"`, 1)
			_, err := client.Fetch(ctx)

			Convey("Then ErrMissingField is returned", func() {
				So(errors.Is(err, fetcher.ErrMissingField), ShouldBeTrue)
				So(fetcher.Kind(err), ShouldEqual, "missing_field")
				So(err.Error(), ShouldContainSubstring, "div.league-points")
			})
		})

		Convey("When the behavior page lacks the playtime", func() {
			s.behavior = "<html><body></body></html>"
			_, err := client.Fetch(ctx)
			So(errors.Is(err, fetcher.ErrMissingField), ShouldBeTrue)
		})

		Convey("When the league points are not a number", func() {
			s.summoner = strings.Replace(summonerPage, "LP: 75", "LP: seventy", 1)
			_, err := client.Fetch(ctx)
			So(errors.Is(err, fetcher.ErrParse), ShouldBeTrue)
			So(fetcher.Kind(err), ShouldEqual, "parse")
		})

		Convey("When the last game text is unfamiliar", func() {
			s.summoner = strings.Replace(summonerPage, ">Victory<", ">Remake<", 1)
			snap, err := client.Fetch(ctx)
			So(err, ShouldBeNil)
			So(snap.LastGameResult, ShouldEqual, model.Unknown)
		})

		Convey("When the site answers with an error status", func() {
			s.status = http.StatusTooManyRequests
			_, err := client.Fetch(ctx)
			So(errors.Is(err, fetcher.ErrStatus), ShouldBeTrue)
			So(fetcher.Kind(err), ShouldEqual, "status")
		})
	})
}

func TestFetchTimeout(t *testing.T) {
	Convey("Given a site that never answers in time", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client := fetcher.New(srv.URL, "p", fetcher.WithTimeout(50*time.Millisecond))

		Convey("When fetching", func() {
			start := time.Now()
			_, err := client.Fetch(context.Background())

			Convey("Then the request fails within the timeout", func() {
				So(errors.Is(err, fetcher.ErrRequest), ShouldBeTrue)
				So(fetcher.Kind(err), ShouldEqual, "request")
				So(time.Since(start), ShouldBeLessThan, 5*time.Second)
			})
		})
	})
}
