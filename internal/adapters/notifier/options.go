package notifier

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the Discord notifier.
type Option func(*Discord)

// WithTimeout bounds each webhook call.
func WithTimeout(d time.Duration) Option {
	return func(n *Discord) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithTitle sets the embed title.
func WithTitle(title string) Option {
	return func(n *Discord) {
		if title != "" {
			n.title = title
		}
	}
}

// WithProfileURL sets the deep link template; {player} is substituted.
func WithProfileURL(template string) Option {
	return func(n *Discord) {
		if template != "" {
			n.profileURL = template
		}
	}
}

// WithRatePerMinute caps outbound messages per minute.
func WithRatePerMinute(perMinute int) Option {
	return func(n *Discord) {
		if perMinute > 0 {
			n.perMinute = perMinute
		}
	}
}

// WithPlaytimeEquivalents appends playtime equivalence lines to each message.
func WithPlaytimeEquivalents(enabled bool) Option {
	return func(n *Discord) {
		n.equivalents = enabled
	}
}

// WithTransport swaps the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(n *Discord) {
		if rt != nil {
			n.transport = rt
		}
	}
}
