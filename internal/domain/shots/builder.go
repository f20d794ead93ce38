// Package shots turns raw play-by-play events into normalized shot events.
package shots

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/rinkshot/internal/domain/filter"
	"github.com/okian/rinkshot/internal/domain/geometry"
	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/pkg/logger"
)

// Output formatting constants.
const (
	unknownPlayer   = "Unknown Player"
	unknownShotType = "Unknown"
	dateLayout      = "January 02, 2006"
	reportURLFormat = "https://www.nhl.com/scores/htmlreports/%d%d/PL02%s.HTM"
	gameNumberWidth = 4
)

// Reason explains why Build produced no event. Accepted means it did.
type Reason string

// Build outcomes.
const (
	Accepted           Reason = "accepted"
	SkipNoContext      Reason = "no_context"
	SkipNoDetails      Reason = "no_details"
	SkipNoCoordinates  Reason = "no_coordinates"
	SkipNoOwner        Reason = "no_owner"
	SkipUntrackedType  Reason = "untracked_type"
	SkipMalformedClock Reason = "malformed_clock"
	SkipOutOfScope     Reason = "out_of_scope"
)

// Builder produces ShotEvents from RawEvents. It holds only configuration
// and is safe for concurrent use.
type Builder struct {
	filter   *filter.Filter
	fallback geometry.FallbackTable
	collapse bool
	logger   logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithFilter sets the scope filter.
func WithFilter(f *filter.Filter) Option {
	return func(b *Builder) {
		if f != nil {
			b.filter = f
		}
	}
}

// WithFallbackTable sets the zone-code table used when the defending side is unknown.
func WithFallbackTable(t geometry.FallbackTable) Option {
	return func(b *Builder) {
		if t != nil {
			b.fallback = t
		}
	}
}

// WithCollapseShotIntoMiss reports shots on goal as MISS in the output.
func WithCollapseShotIntoMiss(collapse bool) Option {
	return func(b *Builder) {
		b.collapse = collapse
	}
}

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder with defaults overridden by opts.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		filter:   filter.New(),
		fallback: geometry.NearNet,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Classify maps a feed type key to a play type. The second result is false
// for keys outside the tracked set.
func Classify(typeKey string) (model.PlayType, bool) {
	switch strings.ToLower(strings.TrimSpace(typeKey)) {
	case model.TypeGoal:
		return model.PlayGoal, true
	case model.TypeShotOnGoal:
		return model.PlayShot, true
	case model.TypeMissedShot:
		return model.PlayMiss, true
	default:
		return "", false
	}
}

// Build converts one raw event. Lookup misses degrade to defaults; only the
// structural and scope checks reject.
func (b *Builder) Build(ctx context.Context, ev *model.RawEvent, gc *model.GameContext, players model.PlayerDirectory, home, away model.TeamRecord) (model.ShotEvent, Reason) {
	if ev == nil || gc == nil {
		return model.ShotEvent{}, SkipNoContext
	}
	playType, tracked := Classify(ev.TypeKey)
	switch {
	case !tracked:
		return model.ShotEvent{}, SkipUntrackedType
	case !ev.HasDetails:
		return model.ShotEvent{}, SkipNoDetails
	case ev.X == nil || ev.Y == nil:
		return model.ShotEvent{}, SkipNoCoordinates
	case ev.EventOwnerTeamID == 0:
		return model.ShotEvent{}, SkipNoOwner
	}
	x, y := *ev.X, *ev.Y

	distance := geometry.ShotDistance(x, y, ev.EventOwnerTeamID, gc.HomeTeamID, ev.HomeTeamDefendingSide, ev.Zone(), b.fallback)

	clock, err := filter.ParseClock(ev.TimeRemaining)
	if err != nil {
		b.logger.Warn(ctx, "excluding event with malformed clock",
			logger.Int64("gameID", gc.GameID),
			logger.Int64("eventID", ev.EventID),
			logger.Error(err),
		)
		return model.ShotEvent{}, SkipMalformedClock
	}
	if !b.filter.InScope(ev.Period, clock, distance) {
		return model.ShotEvent{}, SkipOutOfScope
	}

	playerID := ev.ShootingPlayerID
	if playType == model.PlayGoal {
		playerID = ev.ScoringPlayerID
	}
	name, ok := players[playerID]
	if !ok || name == "" {
		name = unknownPlayer
	}

	description := fmt.Sprintf("%s by %s", playType, name)
	if playType == model.PlayGoal {
		description += fmt.Sprintf(". Goals To Date: %d", ev.ScoringPlayerTotal)
	}

	// The description keeps the feed's label; only the classification collapses.
	if b.collapse && playType == model.PlayShot {
		playType = model.PlayMiss
	}

	return model.ShotEvent{
		GameID:      gc.GameID,
		EventID:     ev.EventID,
		Arena:       gc.Venue,
		Date:        gc.GameDate.Format(dateLayout),
		Matchup:     Matchup(gc.HomeTeamName, home, gc.AwayTeamName, away),
		Period:      ev.Period,
		TimeLeft:    ev.TimeRemaining,
		PlayType:    playType,
		ShotType:    capitalize(ev.ShotType),
		X:           x,
		Y:           y,
		Description: description,
		Distance:    distance,
		Score:       fmt.Sprintf("%d - %d", ev.AwayScore, ev.HomeScore),
		ReportURL:   ReportURL(gc.Season, gc.GameID),
		Season:      gc.Season,
	}, Accepted
}

// Matchup renders "Home (w-l-otl-p) v. Away (w-l-otl-p)".
func Matchup(homeName string, home model.TeamRecord, awayName string, away model.TeamRecord) string {
	return fmt.Sprintf("%s (%d-%d-%d-%d) v. %s (%d-%d-%d-%d)",
		homeName, home.Wins, home.Losses, home.OTLosses, home.Points,
		awayName, away.Wins, away.Losses, away.OTLosses, away.Points,
	)
}

// ReportURL returns the league's HTML play-by-play report for a game.
func ReportURL(season int, gameID int64) string {
	id := fmt.Sprintf("%0*d", gameNumberWidth, gameID)
	return fmt.Sprintf(reportURLFormat, season, season+1, id[len(id)-gameNumberWidth:])
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownShotType
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
