// Package standings resolves team records from a dated standings snapshot.
package standings

import (
	"strings"
	"time"
	"unicode"

	"github.com/okian/rinkshot/internal/domain/model"
	"golang.org/x/text/unicode/norm"
)

// Lookup returns the record of teamName from entries, matching on the last
// whitespace-separated token of the name, case-insensitively. A miss, or a
// match whose record fields were incomplete, yields the zero record.
func Lookup(teamName string, entries []model.StandingsEntry) model.TeamRecord {
	key := nameKey(teamName)
	if key == "" {
		return model.TeamRecord{}
	}
	for _, e := range entries {
		if nameKey(e.TeamName) != key || !e.Complete {
			continue
		}
		return e.Record()
	}
	return model.TeamRecord{}
}

// SnapshotDate returns the date of the standings snapshot used for a game:
// the day before it was played.
func SnapshotDate(gameDate time.Time) time.Time {
	return gameDate.AddDate(0, 0, -1)
}

func nameKey(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(foldMarks(fields[len(fields)-1]))
}

// foldMarks drops combining marks so "Montréal" and "Montreal" compare equal.
func foldMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
