package shots

import (
	"context"

	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/standings"
	"github.com/okian/rinkshot/pkg/logger"
)

// Result is the outcome of aggregating one game.
type Result struct {
	Shots []model.ShotEvent
	// Incomplete is true when a required upstream source was missing and the
	// game produced no shots for that reason.
	Incomplete bool
	Skipped    map[Reason]int
	Home, Away model.TeamRecord
}

// Aggregator drives a Builder across every event of a game.
type Aggregator struct {
	builder *Builder
	logger  logger.Logger
}

// NewAggregator creates an Aggregator. A nil builder uses NewBuilder().
func NewAggregator(b *Builder, l logger.Logger) *Aggregator {
	if b == nil {
		b = NewBuilder()
	}
	if l == nil {
		l = logger.Nop()
	}
	return &Aggregator{builder: b, logger: l}
}

// AggregateGame returns the qualifying shot events of one game in feed order.
// A nil game context yields an empty list.
func (a *Aggregator) AggregateGame(ctx context.Context, gameID int64, season int, events []model.RawEvent, gc *model.GameContext, players model.PlayerDirectory, home, away model.TeamRecord) []model.ShotEvent {
	out, _ := a.aggregate(ctx, gameID, season, events, gc, players, home, away)
	return out
}

// Process aggregates a fetched game feed. Missing play-by-play, landing,
// standings or game context yields an empty, incomplete result.
func (a *Aggregator) Process(ctx context.Context, feed *model.GameFeed) Result {
	if !feed.Complete() {
		var gameID int64
		if feed != nil && feed.Context != nil {
			gameID = feed.Context.GameID
		}
		a.logger.Debug(ctx, "game feed incomplete, skipping", logger.Int64("gameID", gameID))
		return Result{Shots: []model.ShotEvent{}, Incomplete: true, Skipped: map[Reason]int{}}
	}

	gc := feed.Context
	home := standings.Lookup(gc.HomeTeamName, feed.Standings)
	away := standings.Lookup(gc.AwayTeamName, feed.Standings)

	out, skipped := a.aggregate(ctx, gc.GameID, gc.Season, feed.Events, gc, feed.Roster, home, away)
	return Result{Shots: out, Skipped: skipped, Home: home, Away: away}
}

func (a *Aggregator) aggregate(ctx context.Context, gameID int64, season int, events []model.RawEvent, gc *model.GameContext, players model.PlayerDirectory, home, away model.TeamRecord) ([]model.ShotEvent, map[Reason]int) {
	out := []model.ShotEvent{}
	skipped := map[Reason]int{}
	if gc == nil {
		return out, skipped
	}
	local := *gc
	local.GameID = gameID
	local.Season = season

	for i := range events {
		shot, reason := a.builder.Build(ctx, &events[i], &local, players, home, away)
		if reason != Accepted {
			skipped[reason]++
			continue
		}
		out = append(out, shot)
	}
	return out, skipped
}
