package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need a running service.
	ErrNotStarted = errors.New("service: not started")
	// ErrStopped is returned by a run interrupted by Stop.
	ErrStopped = errors.New("service: stopped")
	// ErrNoSource is returned by Start when no game source was configured.
	ErrNoSource = errors.New("service: no game source")
	// ErrInvalidSeason is returned for a season year or game count that cannot be collected.
	ErrInvalidSeason = errors.New("service: invalid season")
)
