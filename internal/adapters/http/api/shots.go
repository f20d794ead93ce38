package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/rinkshot/internal/adapters/repository"
	"github.com/okian/rinkshot/internal/domain/model"
)

// ShotsDependencies defines the interface for shot queries.
type ShotsDependencies interface {
	Shots(ctx context.Context, q repository.Query) ([]model.ShotEvent, error)
}

// ShotsHandler handles shot queries.
type ShotsHandler struct {
	deps     ShotsDependencies
	maxLimit int
}

// NewShotsHandler creates a new shots handler.
func NewShotsHandler(deps ShotsDependencies, maxLimit int) *ShotsHandler {
	return &ShotsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

type shotResponse struct {
	GameID      int64   `json:"game_id"`
	EventID     int64   `json:"event_id"`
	Season      int     `json:"season"`
	Arena       string  `json:"arena"`
	Date        string  `json:"date"`
	Matchup     string  `json:"matchup"`
	Period      int     `json:"period"`
	TimeLeft    string  `json:"time_left"`
	PlayType    string  `json:"play_type"`
	ShotType    string  `json:"shot_type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Description string  `json:"description"`
	Distance    string  `json:"distance"`
	Feet        float64 `json:"distance_feet"`
	Score       string  `json:"score"`
	ReportURL   string  `json:"report_url"`
}

func toShotResponse(s model.ShotEvent) shotResponse {
	return shotResponse{
		GameID:      s.GameID,
		EventID:     s.EventID,
		Season:      s.Season,
		Arena:       s.Arena,
		Date:        s.Date,
		Matchup:     s.Matchup,
		Period:      s.Period,
		TimeLeft:    s.TimeLeft,
		PlayType:    string(s.PlayType),
		ShotType:    s.ShotType,
		X:           s.X,
		Y:           s.Y,
		Description: s.Description,
		Distance:    s.DistanceLabel(),
		Feet:        s.Distance,
		Score:       s.Score,
		ReportURL:   s.ReportURL,
	}
}

// HandleGetShots handles GET /shots?season=&game=&type=&limit=&offset= requests.
func (h *ShotsHandler) HandleGetShots(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_shots"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q, err := h.parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if q.Limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	events, err := h.deps.Shots(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out := make([]shotResponse, len(events))
	for i, e := range events {
		out[i] = toShotResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ShotsHandler) parseQuery(v url.Values) (repository.Query, error) {
	var (
		q   repository.Query
		err error
	)
	if q.Season, err = intParam(v, "season"); err != nil {
		return q, err
	}
	game, err := intParam(v, "game")
	if err != nil {
		return q, err
	}
	q.GameID = int64(game)
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(v, "offset"); err != nil {
		return q, err
	}
	if t := strings.TrimSpace(v.Get("type")); t != "" {
		pt := model.PlayType(strings.ToUpper(t))
		switch pt {
		case model.PlayGoal, model.PlayShot, model.PlayMiss:
			q.PlayType = pt
		default:
			return q, fmt.Errorf("unknown play type %q", t)
		}
	}
	return q, nil
}

// intParam returns 0 for an absent parameter.
func intParam(v url.Values, key string) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
