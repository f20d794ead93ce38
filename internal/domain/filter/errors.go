package filter

import "errors"

// Sentinel kinds for filter errors.
var (
	ErrMalformedClock      = errors.New("malformed clock")
	ErrUnknownDistanceMode = errors.New("unknown distance mode")
)
