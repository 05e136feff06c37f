package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("no persisted snapshot")
	ErrCorrupt     = errors.New("persisted snapshot is corrupt")
	ErrUnavailable = errors.New("state store unavailable")
	ErrUnknownKind = errors.New("unknown store driver")
)

// Kind names the error class for metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}
