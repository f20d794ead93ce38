// Package model contains domain models passed between layers.
package model

// Event type keys as they appear in the play-by-play feed.
const (
	TypeShotOnGoal = "shot-on-goal"
	TypeMissedShot = "missed-shot"
	TypeGoal       = "goal"
)

// Side is the half of the rink a team defends.
type Side string

const (
	SideUnknown Side = ""
	SideLeft    Side = "left"
	SideRight   Side = "right"
)

// Known reports whether the side is one of left/right.
func (s Side) Known() bool { return s == SideLeft || s == SideRight }

// Zone is the zone code relative to the team that generated the event.
type Zone string

const (
	ZoneOffensive Zone = "O"
	ZoneNeutral   Zone = "N"
	ZoneDefensive Zone = "D"
)

// RawEvent is one play from the upstream feed, flattened from its details block.
// Read-only once decoded.
type RawEvent struct {
	EventID       int64
	TypeKey       string // e.g. "shot-on-goal"
	Period        int
	TimeRemaining string // "mm:ss"; empty when the feed omits it

	// HasDetails is false when the play carried no details block.
	HasDetails bool
	X, Y       *float64 // rink feet; nil when absent
	ZoneCode   Zone     // empty means offensive

	EventOwnerTeamID   int64 // 0 when absent
	ShootingPlayerID   int64
	ScoringPlayerID    int64
	ScoringPlayerTotal int
	ShotType           string
	AwayScore          int
	HomeScore          int

	// HomeTeamDefendingSide is carried per play; empty when unknown.
	HomeTeamDefendingSide Side
}

// Zone returns the zone code, defaulting to offensive.
func (e *RawEvent) Zone() Zone {
	if e.ZoneCode == "" {
		return ZoneOffensive
	}
	return e.ZoneCode
}
