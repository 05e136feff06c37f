package notifier

import "errors"

// Sentinel kinds for notification errors.
var (
	ErrRequest     = errors.New("webhook request failed")
	ErrStatus      = errors.New("webhook rejected message")
	ErrRateLimited = errors.New("webhook rate limit exceeded")
)

// Kind names the error class for metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrRequest):
		return "request"
	default:
		return "other"
	}
}
