package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/rinkshot/internal/domain/types"
)

const maxCollectBody = 1 << 16

// CollectDependencies defines the interface for starting collection runs.
type CollectDependencies interface {
	CollectAsync(ctx context.Context, seasons map[int]int) (types.RunAccepted, error)
}

// CollectHandler handles collection requests.
type CollectHandler struct {
	deps CollectDependencies
}

// NewCollectHandler creates a new collect handler.
func NewCollectHandler(deps CollectDependencies) *CollectHandler {
	return &CollectHandler{deps: deps}
}

// HandlePostCollect handles POST /collect requests.
func (h *CollectHandler) HandlePostCollect(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_collect"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.CollectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCollectBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	seasons, err := parseSeasons(req.Seasons)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	accepted, err := h.deps.CollectAsync(r.Context(), seasons)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, accepted)
}

func parseSeasons(in map[string]int) (map[int]int, error) {
	if len(in) == 0 {
		return nil, errors.New("missing seasons")
	}
	out := make(map[int]int, len(in))
	for k, games := range in {
		season, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid season %q", k)
		}
		out[season] = games
	}
	return out, nil
}
