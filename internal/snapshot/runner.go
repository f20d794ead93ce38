// Package snapshot saves upstream game documents to disk so collection runs
// can be replayed offline.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okian/rinkshot/internal/adapters/nhl"
	"github.com/okian/rinkshot/internal/domain/standings"
	"github.com/okian/rinkshot/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNoGames is returned when the configuration selects no game.
var ErrNoGames = errors.New("snapshot: no games selected")

// Fetcher returns raw upstream documents. A nil body with a nil error means
// the upstream had no document.
type Fetcher interface {
	RawPlayByPlay(ctx context.Context, gameID int64) ([]byte, error)
	RawLanding(ctx context.Context, gameID int64) ([]byte, error)
	RawStandings(ctx context.Context, date time.Time) ([]byte, error)
}

type runner struct {
	fetcher Fetcher
	config  *Config

	mu    sync.Mutex
	stats *Stats

	sf        singleflight.Group
	standings sync.Map // date -> []byte
}

// Run downloads every selected game. Failures of single games are counted
// and logged; only cancellation stops the run.
func Run(ctx context.Context, fetcher Fetcher, config *Config) (*Stats, error) {
	ids := gameIDs(config)
	if len(ids) == 0 {
		return nil, ErrNoGames
	}
	workers := config.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	r := &runner{
		fetcher: fetcher,
		config:  config,
		stats:   &Stats{GamesRequested: len(ids), StartTime: time.Now()},
	}

	logger.Get().Info(ctx, "starting snapshot",
		logger.String("dir", config.Dir),
		logger.Int("games", len(ids)),
		logger.Int("workers", workers),
		logger.Bool("overwrite", config.Overwrite))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.saveGame(gctx, id)
			return nil
		})
	}
	err := g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	displayFinalStats(ctx, r.stats)
	out := *r.stats
	return &out, err
}

// gameIDs returns explicit ids plus every id of every season, sorted and unique.
func gameIDs(config *Config) []int64 {
	ids := slices.Clone(config.Games)
	for season, n := range config.Seasons {
		for i := 1; i <= n; i++ {
			ids = append(ids, nhl.GameID(season, i))
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (r *runner) saveGame(ctx context.Context, gameID int64) {
	dir := filepath.Join(r.config.Dir, strconv.FormatInt(gameID, 10))
	pbpPath := filepath.Join(dir, nhl.PlayByPlayFile)
	if !r.config.Overwrite {
		if _, err := os.Stat(pbpPath); err == nil {
			r.count(func(s *Stats) { s.GamesExisting++ })
			return
		}
	}

	outcome, err := r.download(ctx, gameID, dir)
	if err != nil {
		logger.Get().Warn(ctx, "game snapshot failed", logger.Int64("gameID", gameID), logger.Error(err))
		r.count(func(s *Stats) { s.GamesFailed++ })
		return
	}
	r.count(outcome)
}

// download writes the game's documents and returns the stats update to apply.
func (r *runner) download(ctx context.Context, gameID int64, dir string) (func(*Stats), error) {
	pbp, err := r.fetcher.RawPlayByPlay(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("play-by-play: %w", err)
	}
	if pbp == nil {
		logger.Get().Debug(ctx, "no play-by-play document", logger.Int64("gameID", gameID))
		return func(s *Stats) { s.GamesMissing++ }, nil
	}

	var head struct {
		GameDate string `json:"gameDate"`
	}
	if err := json.Unmarshal(pbp, &head); err != nil {
		return nil, fmt.Errorf("decode play-by-play: %w", err)
	}
	gameDate, err := time.Parse(gameDateLayout, head.GameDate)
	if err != nil {
		return nil, fmt.Errorf("game date %q: %w", head.GameDate, err)
	}

	landing, err := r.fetcher.RawLanding(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("landing: %w", err)
	}
	table, err := r.standingsFor(ctx, standings.SnapshotDate(gameDate))
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}

	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	docs := []struct {
		name string
		body []byte
	}{
		{nhl.LandingFile, landing},
		{nhl.StandingsFile, table},
		// Written last so an interrupted game is retried on the next run.
		{nhl.PlayByPlayFile, pbp},
	}
	for _, d := range docs {
		if d.body == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, d.name), d.body, filePermission); err != nil {
			return nil, fmt.Errorf("write %s: %w", d.name, err)
		}
	}

	logger.Get().Debug(ctx, "game saved", logger.Int64("gameID", gameID))
	return func(s *Stats) { s.GamesSaved++ }, nil
}

// standingsFor returns the standings document for date, downloading it at
// most once per run.
func (r *runner) standingsFor(ctx context.Context, date time.Time) ([]byte, error) {
	key := date.Format(gameDateLayout)
	if v, ok := r.standings.Load(key); ok {
		return v.([]byte), nil
	}
	v, err, _ := r.sf.Do(key, func() (any, error) {
		if v, ok := r.standings.Load(key); ok {
			return v, nil
		}
		body, err := r.fetcher.RawStandings(ctx, date)
		if err != nil {
			return []byte(nil), err
		}
		if body != nil {
			r.standings.Store(key, body)
			r.count(func(s *Stats) { s.StandingsFetched++ })
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (r *runner) count(update func(*Stats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update(r.stats)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("gamesRequested", stats.GamesRequested),
		logger.Int("gamesSaved", stats.GamesSaved),
		logger.Int("gamesExisting", stats.GamesExisting),
		logger.Int("gamesMissing", stats.GamesMissing),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("standingsFetched", stats.StandingsFetched),
		logger.String("duration", stats.Duration.String()))
}
