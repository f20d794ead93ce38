package api

import (
	"context"
	"net/http"

	"github.com/okian/rinkshot/internal/domain/model"
)

// GamesDependencies defines the interface for game listings.
type GamesDependencies interface {
	Games(ctx context.Context, season int) ([]model.GameSummary, error)
}

// GamesHandler handles game listings.
type GamesHandler struct {
	deps GamesDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GamesDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleGetGames handles GET /games?season= requests.
func (h *GamesHandler) HandleGetGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_games"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, err := intParam(r.URL.Query(), "season")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	games, err := h.deps.Games(r.Context(), season)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}
