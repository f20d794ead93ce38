package nhl

// Wire types for the api-web.nhle.com documents. Only the fields the
// pipeline reads are declared; pointers mark fields whose absence matters.

type localized struct {
	Default string `json:"default"`
}

// PlayByPlay is the /gamecenter/{id}/play-by-play document.
type PlayByPlay struct {
	ID          int64        `json:"id"`
	GameDate    string       `json:"gameDate"`
	Venue       localized    `json:"venue"`
	HomeTeam    Team         `json:"homeTeam"`
	AwayTeam    Team         `json:"awayTeam"`
	Plays       *[]Play      `json:"plays"`
	RosterSpots []RosterSpot `json:"rosterSpots"`
}

// Team identifies one side of a game.
type Team struct {
	ID         int64     `json:"id"`
	Name       localized `json:"name"`
	PlaceName  localized `json:"placeName"`
	CommonName localized `json:"commonName"`
}

// DisplayName prefers the full name and falls back to place plus nickname.
func (t Team) DisplayName() string {
	if t.Name.Default != "" {
		return t.Name.Default
	}
	switch {
	case t.PlaceName.Default != "" && t.CommonName.Default != "":
		return t.PlaceName.Default + " " + t.CommonName.Default
	case t.CommonName.Default != "":
		return t.CommonName.Default
	default:
		return t.PlaceName.Default
	}
}

// Play is one entry of the plays array.
type Play struct {
	EventID               int64        `json:"eventId"`
	TypeDescKey           string       `json:"typeDescKey"`
	Period                *int         `json:"period"`
	PeriodDescriptor      periodNumber `json:"periodDescriptor"`
	TimeRemaining         string       `json:"timeRemaining"`
	HomeTeamDefendingSide string       `json:"homeTeamDefendingSide"`
	Details               *PlayDetails `json:"details"`
}

type periodNumber struct {
	Number int `json:"number"`
}

// PlayDetails is the details block of a play.
type PlayDetails struct {
	XCoord             *float64 `json:"xCoord"`
	YCoord             *float64 `json:"yCoord"`
	ZoneCode           string   `json:"zoneCode"`
	EventOwnerTeamID   int64    `json:"eventOwnerTeamId"`
	ShootingPlayerID   int64    `json:"shootingPlayerId"`
	ScoringPlayerID    int64    `json:"scoringPlayerId"`
	ScoringPlayerTotal int      `json:"scoringPlayerTotal"`
	ShotType           string   `json:"shotType"`
	AwayScore          int      `json:"awayScore"`
	HomeScore          int      `json:"homeScore"`
}

// RosterSpot is one dressed player.
type RosterSpot struct {
	PlayerID  int64     `json:"playerId"`
	FirstName localized `json:"firstName"`
	LastName  localized `json:"lastName"`
}

// Landing is the /gamecenter/{id}/landing document. Only the presence of its
// summary block matters.
type Landing struct {
	Summary *struct{} `json:"summary"`
}

// StandingsResponse is the /standings/{date} document.
type StandingsResponse struct {
	Standings []StandingsRow `json:"standings"`
}

// StandingsRow is one team's line. Record fields are pointers so a missing
// field can be told apart from zero.
type StandingsRow struct {
	TeamName localized `json:"teamName"`
	Wins     *int      `json:"wins"`
	Losses   *int      `json:"losses"`
	OTLosses *int      `json:"otLosses"`
	Points   *int      `json:"points"`
}
