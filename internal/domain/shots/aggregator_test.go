package shots_test

import (
	"context"
	"testing"

	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/shots"
	. "github.com/smartystreets/goconvey/convey"
)

func completeFeed() *model.GameFeed {
	first := shotEvent("shot-on-goal")
	first.EventID = 1
	skipped := shotEvent("faceoff")
	skipped.EventID = 2
	second := shotEvent("goal")
	second.EventID = 3
	third := shotEvent("missed-shot")
	third.EventID = 4

	return &model.GameFeed{
		Context: gameContext(),
		Events:  []model.RawEvent{first, skipped, second, third},
		Roster:  roster(),
		Landing: &model.LandingSummary{},
		Standings: []model.StandingsEntry{
			{TeamName: "Bruins", Wins: 5, Losses: 3, OTLosses: 1, Points: 11, Complete: true},
			{TeamName: "Rangers", Wins: 6, Losses: 2, OTLosses: 2, Points: 14, Complete: true},
		},
	}
}

func TestAggregator_Process(t *testing.T) {
	Convey("Given an aggregator with default settings", t, func() {
		ctx := context.Background()
		agg := shots.NewAggregator(nil, nil)

		Convey("When the feed is complete", func() {
			res := agg.Process(ctx, completeFeed())

			Convey("Then qualifying shots come out in feed order", func() {
				So(res.Incomplete, ShouldBeFalse)
				So(res.Shots, ShouldHaveLength, 3)
				So(res.Shots[0].EventID, ShouldEqual, 1)
				So(res.Shots[1].EventID, ShouldEqual, 3)
				So(res.Shots[2].EventID, ShouldEqual, 4)
				So(res.Skipped[shots.SkipUntrackedType], ShouldEqual, 1)
			})

			Convey("Then both team records come from the standings snapshot", func() {
				So(res.Home, ShouldResemble, model.TeamRecord{Wins: 5, Losses: 3, OTLosses: 1, Points: 11})
				So(res.Away, ShouldResemble, model.TeamRecord{Wins: 6, Losses: 2, OTLosses: 2, Points: 14})
				So(res.Shots[0].Matchup, ShouldEqual, "Boston Bruins (5-3-1-11) v. New York Rangers (6-2-2-14)")
			})
		})

		Convey("When the landing summary is missing", func() {
			feed := completeFeed()
			feed.Landing = nil
			var res shots.Result
			So(func() { res = agg.Process(ctx, feed) }, ShouldNotPanic)

			Convey("Then the game yields nothing", func() {
				So(res.Incomplete, ShouldBeTrue)
				So(res.Shots, ShouldNotBeNil)
				So(res.Shots, ShouldBeEmpty)
			})
		})

		Convey("When the standings or plays are missing", func() {
			noStandings := completeFeed()
			noStandings.Standings = nil
			noPlays := completeFeed()
			noPlays.Events = nil

			Convey("Then each game yields nothing", func() {
				So(agg.Process(ctx, noStandings).Incomplete, ShouldBeTrue)
				So(agg.Process(ctx, noPlays).Incomplete, ShouldBeTrue)
				So(agg.Process(ctx, nil).Shots, ShouldBeEmpty)
			})
		})

		Convey("When a team is absent from the standings", func() {
			feed := completeFeed()
			feed.Standings = feed.Standings[:1]
			res := agg.Process(ctx, feed)

			Convey("Then its record defaults to zeros", func() {
				So(res.Away, ShouldResemble, model.TeamRecord{})
				So(res.Shots[0].Matchup, ShouldEndWith, "New York Rangers (0-0-0-0)")
			})
		})
	})
}

func TestAggregator_AggregateGame(t *testing.T) {
	Convey("Given explicit game inputs", t, func() {
		ctx := context.Background()
		agg := shots.NewAggregator(shots.NewBuilder(shots.WithCollapseShotIntoMiss(true)), nil)
		events := completeFeed().Events

		Convey("When aggregating", func() {
			out := agg.AggregateGame(ctx, 2022020007, 2022, events, gameContext(), roster(), homeRec, awayRec)

			Convey("Then the game id and season override the context", func() {
				So(out, ShouldHaveLength, 3)
				for _, s := range out {
					So(s.GameID, ShouldEqual, 2022020007)
					So(s.Season, ShouldEqual, 2022)
					So(s.ReportURL, ShouldEqual, "https://www.nhl.com/scores/htmlreports/20222023/PL020007.HTM")
				}
			})

			Convey("Then collapse mode leaves only GOAL and MISS", func() {
				So(out[0].PlayType, ShouldEqual, model.PlayMiss)
				So(out[1].PlayType, ShouldEqual, model.PlayGoal)
				So(out[2].PlayType, ShouldEqual, model.PlayMiss)
			})
		})

		Convey("When the game context is missing", func() {
			out := agg.AggregateGame(ctx, 1, 2022, events, nil, roster(), homeRec, awayRec)

			Convey("Then the result is empty", func() {
				So(out, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When the same input is aggregated twice", func() {
			a := agg.AggregateGame(ctx, 1, 2022, events, gameContext(), roster(), homeRec, awayRec)
			b := agg.AggregateGame(ctx, 1, 2022, events, gameContext(), roster(), homeRec, awayRec)

			Convey("Then the outputs are identical", func() {
				So(a, ShouldResemble, b)
			})
		})
	})
}
