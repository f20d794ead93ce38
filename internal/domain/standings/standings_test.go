package standings_test

import (
	"testing"
	"time"

	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLookup(t *testing.T) {
	Convey("Given a standings snapshot", t, func() {
		entries := []model.StandingsEntry{
			{TeamName: "Boston Bruins", Wins: 10, Losses: 2, OTLosses: 1, Points: 21, Complete: true},
			{TeamName: "NY RANGERS", Wins: 8, Losses: 5, OTLosses: 0, Points: 16, Complete: true},
			{TeamName: "Canadiens de Montréal", Wins: 3, Losses: 9, OTLosses: 2, Points: 8, Complete: true},
			{TeamName: "Seattle Kraken", Wins: 1, Complete: false},
		}

		Convey("When querying by full name whose last token matches in another case", func() {
			rec := standings.Lookup("New York Rangers", entries)

			Convey("Then the record is returned", func() {
				So(rec, ShouldResemble, model.TeamRecord{Wins: 8, Losses: 5, OTLosses: 0, Points: 16})
			})
		})

		Convey("When querying a team absent from the snapshot", func() {
			rec := standings.Lookup("Utah Hockey Club", entries)

			Convey("Then the zero record is returned", func() {
				So(rec, ShouldResemble, model.TeamRecord{})
			})
		})

		Convey("When the matching entry is incomplete", func() {
			rec := standings.Lookup("Seattle Kraken", entries)

			Convey("Then the zero record is returned", func() {
				So(rec, ShouldResemble, model.TeamRecord{})
			})
		})

		Convey("When the names differ only by accents and case", func() {
			rec := standings.Lookup("Club de MONTREAL", entries)
			So(rec.Points, ShouldEqual, 8)
		})

		Convey("When the query is blank or the snapshot empty", func() {
			So(standings.Lookup("   ", entries), ShouldResemble, model.TeamRecord{})
			So(standings.Lookup("Boston Bruins", nil), ShouldResemble, model.TeamRecord{})
		})

		Convey("When the same query is repeated", func() {
			a := standings.Lookup("boston bruins", entries)
			b := standings.Lookup("boston bruins", entries)
			So(a, ShouldResemble, b)
		})
	})
}

func TestSnapshotDate(t *testing.T) {
	Convey("Given a game date on the first of a month", t, func() {
		d := time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)

		Convey("Then the snapshot is from the last day of the previous month", func() {
			So(standings.SnapshotDate(d).Format("2006-01-02"), ShouldEqual, "2022-02-28")
		})
	})
}
