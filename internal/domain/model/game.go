package model

import "time"

// GameContext carries the per-game data needed to interpret plays.
type GameContext struct {
	GameID       int64
	Season       int
	HomeTeamID   int64
	HomeTeamName string
	AwayTeamName string
	GameDate     time.Time
	Venue        string
}

// PlayerDirectory maps player ids to display names.
type PlayerDirectory map[int64]string

// TeamRecord is a team's standing as of the day before a game.
// The zero value is the lookup-miss default.
type TeamRecord struct {
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	OTLosses int `json:"ot_losses"`
	Points   int `json:"points"`
}

// StandingsEntry is one row of a dated league standings snapshot.
// Complete is false when any of the four record fields was missing.
type StandingsEntry struct {
	TeamName string
	Wins     int
	Losses   int
	OTLosses int
	Points   int
	Complete bool
}

// Record returns the entry's four-field record.
func (s StandingsEntry) Record() TeamRecord {
	return TeamRecord{Wins: s.Wins, Losses: s.Losses, OTLosses: s.OTLosses, Points: s.Points}
}

// LandingSummary is the part of the landing feed the pipeline requires.
// Only its presence is significant for aggregation.
type LandingSummary struct{}

// GameFeed bundles everything fetched for one game. Nil fields mean the
// corresponding upstream document was unavailable.
type GameFeed struct {
	Context   *GameContext
	Events    []RawEvent
	Roster    PlayerDirectory
	Landing   *LandingSummary
	Standings []StandingsEntry
}

// Complete reports whether every source needed to aggregate the game is present.
func (f *GameFeed) Complete() bool {
	return f != nil && f.Context != nil && f.Events != nil && f.Landing != nil && len(f.Standings) > 0
}

// GameSummary is the per-game row kept alongside a game's shot events.
type GameSummary struct {
	GameID      int64      `json:"game_id"`
	Season      int        `json:"season"`
	Date        time.Time  `json:"date"`
	HomeTeam    string     `json:"home_team"`
	AwayTeam    string     `json:"away_team"`
	Venue       string     `json:"venue"`
	Home        TeamRecord `json:"home_record"`
	Away        TeamRecord `json:"away_record"`
	ShotCount   int        `json:"shot_count"`
	CollectedAt time.Time  `json:"collected_at"`
}
