// Package service wires the collection pipeline together and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/rinkshot/internal/adapters/mq/queue"
	"github.com/okian/rinkshot/internal/adapters/mq/worker"
	"github.com/okian/rinkshot/internal/adapters/nhl"
	"github.com/okian/rinkshot/internal/adapters/repository"
	"github.com/okian/rinkshot/internal/domain/dedupe"
	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/shots"
	"github.com/okian/rinkshot/internal/domain/types"
	"github.com/okian/rinkshot/pkg/logger"
	"github.com/okian/rinkshot/pkg/metrics"
)

const (
	defaultStorePath = "rinkshot.db"
	stopTimeout      = 30 * time.Second
	// maxGamesPerSeason bounds the four-digit game number of a game id.
	maxGamesPerSeason = 9999
)

// Service collects games into the shot store and serves queries against it.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	ownsStore  bool
	deduper    dedupe.Deduper
	jobQueue   *queue.InMemoryQueue
	pool       *worker.Pool
	aggregator *shots.Aggregator
	source     worker.Source

	// Configuration
	workerCount   int
	queueSize     int
	storePath     string
	skipCollected bool
	builderOpts   []shots.Option

	// State
	started bool
	stopCh  chan struct{}
	cancel  context.CancelFunc
	runCtx  context.Context
	runs    sync.WaitGroup

	runMu   sync.Mutex
	lastRun *types.RunReport

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     4096,
		storePath:     defaultStorePath,
		ownsStore:     true,
		skipCollected: true,
		stopCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting collection service...")

	if s.store == nil {
		st, err := repository.OpenSQLite(ctx, s.storePath, repository.WithLogger(s.logger.Named("store")))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
		s.ownsStore = true
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(s.queueSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	builderOpts := append([]shots.Option{shots.WithLogger(s.logger.Named("builder"))}, s.builderOpts...)
	s.aggregator = shots.NewAggregator(shots.NewBuilder(builderOpts...), s.logger.Named("aggregator"))

	s.pool = worker.NewPool(s.workerCount, s.jobQueue, s.source, s.aggregator, s.store,
		worker.WithPoolLogger(s.logger),
		worker.WithWorkerOptions(worker.WithSkipCollected(s.skipCollected)),
	)

	// The pool outlives the caller's ctx; Stop ends it.
	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.pool.Start(s.runCtx)

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateStoreShots(n)
	}

	s.started = true
	s.stopCh = make(chan struct{})
	s.logger.Info(ctx, "collection service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("skipCollected", s.skipCollected),
	)

	return nil
}

// Stop drains queued jobs and releases resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping collection service...")

	// Unblock runs waiting on their jobs.
	close(s.stopCh)

	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	s.runs.Wait()

	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "error closing store", logger.Error(err))
		}
		s.store = nil
	}

	s.started = false
	s.logger.Info(ctx, "collection service stopped")
}

// Collect enqueues every game of the given seasons and waits until all of
// them have been handled. seasons maps a season start year to its number of
// regular-season games.
func (s *Service) Collect(ctx context.Context, seasons map[int]int) (types.RunReport, error) {
	if err := validateSeasons(seasons); err != nil {
		return types.RunReport{}, err
	}
	_, stopCh, err := s.beginRun()
	if err != nil {
		return types.RunReport{}, err
	}
	defer s.runs.Done()

	return s.collect(ctx, uuid.New(), seasons, stopCh)
}

// CollectAsync starts a run in the background and returns its id. The run
// is bounded by the service lifetime, not by ctx.
func (s *Service) CollectAsync(ctx context.Context, seasons map[int]int) (types.RunAccepted, error) {
	if err := validateSeasons(seasons); err != nil {
		return types.RunAccepted{}, err
	}
	runCtx, stopCh, err := s.beginRun()
	if err != nil {
		return types.RunAccepted{}, err
	}

	runID := uuid.New()

	go func() {
		defer s.runs.Done()
		report, err := s.collect(runCtx, runID, seasons, stopCh)
		if err != nil {
			s.logger.Warn(ctx, "collection run ended early",
				logger.String("runID", runID.String()),
				logger.Int("collected", report.Collected),
				logger.Error(err),
			)
		}
	}()

	return types.RunAccepted{RunID: runID.String(), Games: totalGames(seasons)}, nil
}

// beginRun registers a run with the service. The caller must call s.runs.Done.
func (s *Service) beginRun() (context.Context, <-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	s.runs.Add(1)
	return s.runCtx, s.stopCh, nil
}

func (s *Service) collect(ctx context.Context, runID uuid.UUID, seasons map[int]int, stopCh <-chan struct{}) (types.RunReport, error) {
	metrics.RecordCollectRun()
	log := s.logger.Named("collect")
	report := types.RunReport{RunID: runID.String(), StartedAt: time.Now().UTC()}
	log.Info(ctx, "collection run started",
		logger.String("runID", report.RunID),
		logger.Int("games", totalGames(seasons)),
	)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	ack := func(o model.JobOutcome) {
		s.deduper.Unrecord(context.Background(), o.GameID)
		mu.Lock()
		switch {
		case o.Err != nil:
			report.Failed++
		case o.Skipped:
			report.Skipped++
		default:
			report.Collected++
			report.Shots += o.Shots
		}
		mu.Unlock()
		wg.Done()
	}

	var enqueueErr error
enqueue:
	for _, season := range slices.Sorted(maps.Keys(seasons)) {
		for n := 1; n <= seasons[season]; n++ {
			if err := ctx.Err(); err != nil {
				enqueueErr = err
				break enqueue
			}
			gameID := nhl.GameID(season, n)
			mu.Lock()
			report.Games++
			mu.Unlock()

			// Another run already has this game in flight.
			if s.deduper.SeenAndRecord(ctx, gameID) {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				continue
			}

			wg.Add(1)
			if err := s.jobQueue.EnqueueWait(ctx, model.NewGameJob(runID, season, gameID, ack)); err != nil {
				wg.Done()
				s.deduper.Unrecord(ctx, gameID)
				enqueueErr = fmt.Errorf("enqueue game %d: %w", gameID, err)
				break enqueue
			}
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	err := enqueueErr
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	case <-stopCh:
		if err == nil {
			err = ErrStopped
		}
	}

	mu.Lock()
	report.FinishedAt = time.Now().UTC()
	out := report
	mu.Unlock()

	s.runMu.Lock()
	s.lastRun = &out
	s.runMu.Unlock()

	if n, cerr := s.store.Count(ctx); cerr == nil {
		metrics.UpdateStoreShots(n)
	}

	log.Info(ctx, "collection run finished",
		logger.String("runID", out.RunID),
		logger.Int("collected", out.Collected),
		logger.Int("skipped", out.Skipped),
		logger.Int("failed", out.Failed),
		logger.Int("shots", out.Shots),
		logger.Duration("took", out.Duration()),
	)
	return out, err
}

func validateSeasons(seasons map[int]int) error {
	for season, games := range seasons {
		if season < 1917 || season > 9999 {
			return fmt.Errorf("%w: season %d", ErrInvalidSeason, season)
		}
		if games < 0 || games > maxGamesPerSeason {
			return fmt.Errorf("%w: %d games in season %d", ErrInvalidSeason, games, season)
		}
	}
	return nil
}

func totalGames(seasons map[int]int) int {
	total := 0
	for _, n := range seasons {
		total += n
	}
	return total
}

// LastRun returns the report of the most recently finished run, if any.
func (s *Service) LastRun() *types.RunReport {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

// Shots returns stored shot events matching q.
func (s *Service) Shots(ctx context.Context, q repository.Query) ([]model.ShotEvent, error) {
	st, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return st.Shots(ctx, q)
}

// Games returns collected games, optionally limited to one season.
func (s *Service) Games(ctx context.Context, season int) ([]model.GameSummary, error) {
	st, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return st.Games(ctx, season)
}

func (s *Service) readStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"skipCollected": s.skipCollected,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["inFlight"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())

		if n, err := s.store.Count(ctx); err == nil {
			stats["storedShots"] = n
			metrics.UpdateStoreShots(n)
		}
	}
	if last := s.LastRun(); last != nil {
		stats["lastRun"] = *last
	}

	return stats
}
