package snapshot

import "time"

// Config holds configuration for a snapshot run.
type Config struct {
	Dir       string      // Destination directory, one sub-directory per game
	Seasons   map[int]int // Season start year -> regular-season game count
	Games     []int64     // Explicit game ids, added to Seasons
	Workers   int         // Number of concurrent games
	Overwrite bool        // Re-download games already on disk
}

// Stats holds run statistics.
type Stats struct {
	GamesRequested   int
	GamesSaved       int
	GamesExisting    int
	GamesMissing     int
	GamesFailed      int
	StandingsFetched int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
