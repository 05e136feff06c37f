package model

import "errors"

// ErrInvalidSnapshot marks a snapshot that breaks one of its invariants.
var ErrInvalidSnapshot = errors.New("invalid snapshot")
