package fetcher

import (
	"net/http"
	"strings"
	"time"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithRegion sets the League of Graphs region segment, e.g. "na" or "euw".
func WithRegion(region string) Option {
	return func(c *Client) {
		if r := strings.ToLower(strings.TrimSpace(region)); r != "" {
			c.region = r
		}
	}
}

// WithTimeout bounds each page request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the browser User-Agent sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTransport swaps the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}
