package nhl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/rinkshot/internal/domain/model"
)

// Saved document names inside a game directory.
const (
	PlayByPlayFile = "play-by-play.json"
	LandingFile    = "landing.json"
	StandingsFile  = "standings.json"
)

// FileSource replays saved documents from {dir}/{gameID}/. A missing file
// is treated like an upstream with no data.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Game loads the saved documents of one game.
func (s *FileSource) Game(_ context.Context, gameID int64, season int) (*model.GameFeed, error) {
	gameDir := filepath.Join(s.dir, strconv.FormatInt(gameID, 10))

	var pbp PlayByPlay
	hasPBP, err := readJSON(filepath.Join(gameDir, PlayByPlayFile), &pbp)
	if err != nil {
		return &model.GameFeed{}, err
	}
	var landing Landing
	hasLanding, err := readJSON(filepath.Join(gameDir, LandingFile), &landing)
	if err != nil {
		return &model.GameFeed{}, err
	}

	var pbpPtr *PlayByPlay
	if hasPBP {
		pbpPtr = &pbp
	}
	var landingPtr *Landing
	if hasLanding {
		landingPtr = &landing
	}
	feed, err := assemble(gameID, season, pbpPtr, landingPtr)
	if err != nil {
		return feed, err
	}

	var st StandingsResponse
	hasStandings, err := readJSON(filepath.Join(gameDir, StandingsFile), &st)
	if err != nil {
		return feed, err
	}
	if hasStandings {
		feed.Standings = convertStandings(&st)
	}
	return feed, nil
}

func readJSON(path string, out any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return true, nil
}
