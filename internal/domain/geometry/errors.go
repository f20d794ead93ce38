package geometry

import "errors"

// Sentinel kinds for geometry errors.
var (
	ErrUnknownFallback = errors.New("unknown zone fallback table")
)
