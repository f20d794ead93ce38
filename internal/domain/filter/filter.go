// Package filter decides whether a shot falls inside the configured
// clutch window.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Default filter configuration constants.
const (
	DefaultPeriodCutoff      = 4 // regulation plus one overtime; shootouts excluded
	DefaultTimeCutoffSeconds = 5
	DefaultDistanceCutoff    = -1 // disabled
	secondsPerMinute         = 60
	maxClockMinutes          = 60
	maxClockDigits           = 3
)

// DistanceMode selects the direction of the distance comparison.
type DistanceMode string

const (
	// AtLeast keeps shots at or beyond the cutoff ("long shots").
	AtLeast DistanceMode = "at_least"
	// AtMost keeps shots at or inside the cutoff.
	AtMost DistanceMode = "at_most"
)

// ParseDistanceMode validates a configured distance mode.
func ParseDistanceMode(s string) (DistanceMode, error) {
	switch DistanceMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AtLeast:
		return AtLeast, nil
	case AtMost:
		return AtMost, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDistanceMode, s)
	}
}

// Filter holds the scope cutoffs. The zero value is not useful; use New.
type Filter struct {
	periodCutoff      int
	timeCutoffSeconds int
	distanceCutoff    float64
	distanceMode      DistanceMode
}

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithPeriodCutoff sets the last period considered in scope.
func WithPeriodCutoff(period int) Option {
	return func(f *Filter) {
		if period > 0 {
			f.periodCutoff = period
		}
	}
}

// WithTimeCutoff sets the clutch window in seconds remaining.
func WithTimeCutoff(seconds int) Option {
	return func(f *Filter) {
		if seconds >= 0 {
			f.timeCutoffSeconds = seconds
		}
	}
}

// WithDistanceCutoff sets the distance threshold in feet. Negative disables it.
func WithDistanceCutoff(feet float64) Option {
	return func(f *Filter) {
		f.distanceCutoff = feet
	}
}

// WithDistanceMode sets the direction of the distance comparison.
func WithDistanceMode(mode DistanceMode) Option {
	return func(f *Filter) {
		if mode == AtLeast || mode == AtMost {
			f.distanceMode = mode
		}
	}
}

// New creates a Filter with defaults overridden by opts.
func New(opts ...Option) *Filter {
	f := &Filter{
		periodCutoff:      DefaultPeriodCutoff,
		timeCutoffSeconds: DefaultTimeCutoffSeconds,
		distanceCutoff:    DefaultDistanceCutoff,
		distanceMode:      AtLeast,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InScope reports whether an event qualifies.
func (f *Filter) InScope(period, clockRemainingSeconds int, distance float64) bool {
	if clockRemainingSeconds > f.timeCutoffSeconds || period > f.periodCutoff {
		return false
	}
	if f.distanceCutoff < 0 {
		return true
	}
	if f.distanceMode == AtMost {
		return distance <= f.distanceCutoff
	}
	return distance >= f.distanceCutoff
}

// PeriodCutoff returns the configured last period.
func (f *Filter) PeriodCutoff() int { return f.periodCutoff }

// TimeCutoff returns the configured clutch window in seconds.
func (f *Filter) TimeCutoff() int { return f.timeCutoffSeconds }

// ParseClock converts "mm:ss" into seconds. An empty clock means the feed
// omitted it and is read as zero seconds remaining.
func ParseClock(clock string) (int, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0, nil
	}
	mm, ss, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	minutes, ok := clockField(mm, maxClockMinutes)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	seconds, ok := clockField(ss, secondsPerMinute-1)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	return minutes*secondsPerMinute + seconds, nil
}

// clockField parses an unsigned decimal field no larger than maxValue.
func clockField(s string, maxValue int) (int, bool) {
	if s == "" || len(s) > maxClockDigits {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v > maxValue {
		return 0, false
	}
	return v, true
}
