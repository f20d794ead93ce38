// Package types contains request and response types shared by the service
// and the HTTP API.
package types

import "time"

// CollectRequest asks for a collection run. Keys are season start years,
// values the number of regular-season games to walk.
type CollectRequest struct {
	Seasons map[string]int `json:"seasons"`
}

// RunAccepted is returned when an asynchronous run has been queued.
type RunAccepted struct {
	RunID string `json:"run_id"`
	Games int    `json:"games"`
}

// RunReport summarizes a finished collection run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Games      int       `json:"games"`
	Collected  int       `json:"collected"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Shots      int       `json:"shots"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
