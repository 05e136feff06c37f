package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrServe     = errors.New("status server failed")
	ErrStoreRead = errors.New("state store could not be read")
)
