// Package fetcher scrapes a player's ranked stats from League of Graphs.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/okian/rankwatch/internal/domain/model"
)

// Default client settings.
const (
	DefaultBaseURL   = "https://www.leagueofgraphs.com"
	DefaultRegion    = "na"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"
)

// Page selectors.
const (
	selRank     = "div.leagueTier"
	selLP       = "div.league-points"
	selRecord   = "div.winslosses"
	selLastGame = "div.victoryDefeatText"
	selPlaytime = "div.number.solo-number"
)

var (
	winsLosses = regexp.MustCompile(`(?i)wins:\s*([\d,]+)\s*losses:\s*([\d,]+)`)
	leaguePts  = regexp.MustCompile(`(?i)^(?:lp:)?\s*([\d,]+)`)
)

// Client fetches one player's snapshot. It is safe for concurrent use.
type Client struct {
	player    string
	region    string
	baseURL   string
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper

	http *resty.Client
}

// New creates a client for player on the site at baseURL.
func New(baseURL, player string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		player:    strings.TrimSpace(player),
		region:    DefaultRegion,
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(c.baseURL).
		SetHeader("User-Agent", c.userAgent).
		SetTimeout(c.timeout)
	if c.transport != nil {
		c.http.SetTransport(c.transport)
	}
	return c
}

// SummonerPath is the stats page path for the configured player.
func (c *Client) SummonerPath() string {
	return "/summoner/" + c.region + "/" + url.PathEscape(c.player)
}

// BehaviorPath is the behavior page path for the configured player.
func (c *Client) BehaviorPath() string {
	return "/summoner/behavior/" + c.region + "/" + url.PathEscape(c.player)
}

// Fetch downloads both pages and builds a validated snapshot.
func (c *Client) Fetch(ctx context.Context) (model.Snapshot, error) {
	stats, err := c.page(ctx, c.SummonerPath())
	if err != nil {
		return model.Snapshot{}, err
	}
	rank, lp, wins, losses, last, err := parseStats(stats)
	if err != nil {
		return model.Snapshot{}, err
	}

	behavior, err := c.page(ctx, c.BehaviorPath())
	if err != nil {
		return model.Snapshot{}, err
	}
	playtime, err := firstText(behavior, selPlaytime)
	if err != nil {
		return model.Snapshot{}, err
	}

	return model.NewSnapshot(rank, lp, wins, losses, last, playtime)
}

func (c *Client) page(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrRequest, path, err)
	}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrStatus, path, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return doc, nil
}

func parseStats(doc *goquery.Document) (rank string, lp, wins, losses int, last model.GameResult, err error) {
	if rank, err = firstText(doc, selRank); err != nil {
		return
	}

	lpText, err := firstText(doc, selLP)
	if err != nil {
		return
	}
	m := leaguePts.FindStringSubmatch(lpText)
	if m == nil {
		err = fmt.Errorf("%w: league points %q", ErrParse, lpText)
		return
	}
	if lp, err = atoi("league points", m[1]); err != nil {
		return
	}

	recordText, err := firstText(doc, selRecord)
	if err != nil {
		return
	}
	m = winsLosses.FindStringSubmatch(recordText)
	if m == nil {
		err = fmt.Errorf("%w: wins/losses %q", ErrParse, recordText)
		return
	}
	if wins, err = atoi("wins", m[1]); err != nil {
		return
	}
	if losses, err = atoi("losses", m[2]); err != nil {
		return
	}

	lastText, err := firstText(doc, selLastGame)
	if err != nil {
		return
	}
	last = model.ParseGameResult(lastText)
	return
}

func firstText(doc *goquery.Document, selector string) (string, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingField, selector)
	}
	return strings.Join(strings.Fields(sel.Text()), " "), nil
}

func atoi(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrParse, field, s)
	}
	return n, nil
}
