package nhl

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/rinkshot/internal/domain/model"
)

const gameDateLayout = "2006-01-02"

// GameID formats a regular-season game id: {season}02{number:04d}.
func GameID(season, number int) int64 {
	return int64(season)*1_000_000 + 20_000 + int64(number)
}

func convertContext(p *PlayByPlay, gameID int64, season int) (*model.GameContext, error) {
	date, err := time.Parse(gameDateLayout, p.GameDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidGameDate, p.GameDate, err)
	}
	return &model.GameContext{
		GameID:       gameID,
		Season:       season,
		HomeTeamID:   p.HomeTeam.ID,
		HomeTeamName: p.HomeTeam.DisplayName(),
		AwayTeamName: p.AwayTeam.DisplayName(),
		GameDate:     date,
		Venue:        p.Venue.Default,
	}, nil
}

// convertPlays returns nil when the document has no plays array.
func convertPlays(p *PlayByPlay) []model.RawEvent {
	if p.Plays == nil {
		return nil
	}
	out := make([]model.RawEvent, 0, len(*p.Plays))
	for _, pl := range *p.Plays {
		ev := model.RawEvent{
			EventID:               pl.EventID,
			TypeKey:               pl.TypeDescKey,
			Period:                pl.PeriodDescriptor.Number,
			TimeRemaining:         pl.TimeRemaining,
			HomeTeamDefendingSide: model.Side(strings.ToLower(pl.HomeTeamDefendingSide)),
		}
		if pl.Period != nil {
			ev.Period = *pl.Period
		}
		if d := pl.Details; d != nil {
			ev.HasDetails = true
			ev.X, ev.Y = d.XCoord, d.YCoord
			ev.ZoneCode = model.Zone(d.ZoneCode)
			ev.EventOwnerTeamID = d.EventOwnerTeamID
			ev.ShootingPlayerID = d.ShootingPlayerID
			ev.ScoringPlayerID = d.ScoringPlayerID
			ev.ScoringPlayerTotal = d.ScoringPlayerTotal
			ev.ShotType = d.ShotType
			ev.AwayScore = d.AwayScore
			ev.HomeScore = d.HomeScore
		}
		out = append(out, ev)
	}
	return out
}

func convertRoster(p *PlayByPlay) model.PlayerDirectory {
	dir := make(model.PlayerDirectory, len(p.RosterSpots))
	for _, r := range p.RosterSpots {
		dir[r.PlayerID] = strings.TrimSpace(r.FirstName.Default + " " + r.LastName.Default)
	}
	return dir
}

// convertLanding returns nil when the summary block is missing.
func convertLanding(l *Landing) *model.LandingSummary {
	if l == nil || l.Summary == nil {
		return nil
	}
	return &model.LandingSummary{}
}

func convertStandings(r *StandingsResponse) []model.StandingsEntry {
	if r == nil {
		return nil
	}
	out := make([]model.StandingsEntry, 0, len(r.Standings))
	for _, row := range r.Standings {
		e := model.StandingsEntry{
			TeamName: row.TeamName.Default,
			Complete: row.Wins != nil && row.Losses != nil && row.OTLosses != nil && row.Points != nil,
		}
		if e.Complete {
			e.Wins, e.Losses, e.OTLosses, e.Points = *row.Wins, *row.Losses, *row.OTLosses, *row.Points
		}
		out = append(out, e)
	}
	return out
}

// assemble builds a GameFeed from whichever documents were available.
// Standings are attached by the caller once the game date is known.
func assemble(gameID int64, season int, pbp *PlayByPlay, landing *Landing) (*model.GameFeed, error) {
	feed := &model.GameFeed{Landing: convertLanding(landing)}
	if pbp == nil {
		return feed, nil
	}
	gc, err := convertContext(pbp, gameID, season)
	if err != nil {
		return feed, err
	}
	feed.Context = gc
	feed.Events = convertPlays(pbp)
	feed.Roster = convertRoster(pbp)
	return feed, nil
}
