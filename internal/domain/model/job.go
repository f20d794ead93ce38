package model

import "github.com/google/uuid"

// GameJob asks a worker to collect a single game.
type GameJob struct {
	RunID  uuid.UUID
	GameID int64
	Season int

	// ack is invoked once the job has been handled, whatever the outcome.
	ack func(JobOutcome)
}

// JobOutcome summarizes what happened to one job.
type JobOutcome struct {
	GameID  int64
	Shots   int
	Skipped bool // incomplete upstream data or already collected
	Err     error
}

// NewGameJob creates a job that reports its outcome through ack (may be nil).
func NewGameJob(runID uuid.UUID, season int, gameID int64, ack func(JobOutcome)) GameJob {
	return GameJob{RunID: runID, GameID: gameID, Season: season, ack: ack}
}

// Ack reports the outcome of the job. Safe to call on jobs without a callback.
func (j GameJob) Ack(o JobOutcome) {
	if j.ack != nil {
		j.ack(o)
	}
}
