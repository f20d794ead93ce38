package model

import "fmt"

// PlayType is the output classification of a shot event.
type PlayType string

const (
	PlayGoal PlayType = "GOAL"
	PlayShot PlayType = "SHOT"
	PlayMiss PlayType = "MISS"
)

// ShotEvent is the normalized record produced for one qualifying play.
type ShotEvent struct {
	GameID      int64    `json:"game_id"`
	EventID     int64    `json:"event_id"`
	Arena       string   `json:"arena"`
	Date        string   `json:"date"`
	Matchup     string   `json:"matchup"`
	Period      int      `json:"period"`
	TimeLeft    string   `json:"time_left"`
	PlayType    PlayType `json:"play_type"`
	ShotType    string   `json:"shot_type"`
	X           float64  `json:"x_coord"`
	Y           float64  `json:"y_coord"`
	Description string   `json:"description"`
	Distance    float64  `json:"distance"`
	Score       string   `json:"score"`
	ReportURL   string   `json:"report_url"`
	Season      int      `json:"season"`
}

// DistanceLabel formats the distance with two decimals and a unit suffix.
func (s ShotEvent) DistanceLabel() string {
	return fmt.Sprintf("%.2f feet", s.Distance)
}
