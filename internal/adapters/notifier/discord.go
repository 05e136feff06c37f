// Package notifier announces snapshot changes to a Discord-style webhook.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/okian/rankwatch/internal/domain/model"
)

// Default notifier settings.
const (
	DefaultTitle      = "League of Graphs"
	DefaultProfileURL = "https://tracker.gg/lol/profile/riot/NA/{player}/overview?playlist=RANKED_SOLO_5x5"
	DefaultTimeout    = 10 * time.Second
	DefaultPerMinute  = 30
)

// Discord posts one embed per Send. It never retries.
type Discord struct {
	webhookURL  string
	player      string
	title       string
	profileURL  string
	timeout     time.Duration
	perMinute   int
	equivalents bool
	transport   http.RoundTripper

	http    *resty.Client
	limiter *rate.Limiter
}

// New creates a notifier posting to webhookURL on behalf of player.
func New(webhookURL, player string, opts ...Option) *Discord {
	n := &Discord{
		webhookURL: webhookURL,
		player:     player,
		title:      DefaultTitle,
		profileURL: DefaultProfileURL,
		timeout:    DefaultTimeout,
		perMinute:  DefaultPerMinute,
	}
	for _, opt := range opts {
		opt(n)
	}

	n.http = resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(n.timeout)
	if n.transport != nil {
		n.http.SetTransport(n.transport)
	}
	n.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n.perMinute)), n.perMinute)
	return n
}

// Link returns the profile deep link placed on every message.
func (n *Discord) Link() string {
	return ProfileURL(n.profileURL, n.player)
}

// Send posts the rendered snapshot. A send that cannot get a rate token
// before ctx expires fails with ErrRateLimited.
func (n *Discord) Send(ctx context.Context, s model.Snapshot) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	res, err := n.http.R().
		SetContext(ctx).
		SetBody(Render(s, n.title, n.Link(), n.equivalents)).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return fmt.Errorf("%w: %s", ErrStatus, res.Status())
	}
	return nil
}
