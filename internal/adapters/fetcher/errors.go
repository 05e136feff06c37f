package fetcher

import (
	"errors"

	"github.com/okian/rankwatch/internal/domain/model"
)

// Sentinel kinds for fetch errors.
var (
	ErrRequest      = errors.New("request failed")
	ErrStatus       = errors.New("unexpected status")
	ErrMissingField = errors.New("field not found on page")
	ErrParse        = errors.New("field not parseable")
)

// Kind names the error class for metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrRequest):
		return "request"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, model.ErrInvalidSnapshot):
		return "invalid"
	default:
		return "other"
	}
}
