// Package worker runs collection jobs: fetch a game feed, derive its shot
// events and persist them.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/rinkshot/internal/adapters/mq/queue"
	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/shots"
	"github.com/okian/rinkshot/pkg/logger"
	"github.com/okian/rinkshot/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Source fetches everything needed for one game.
type Source interface {
	Game(ctx context.Context, gameID int64, season int) (*model.GameFeed, error)
}

// Processor derives shot events from a game feed.
type Processor interface {
	Process(ctx context.Context, feed *model.GameFeed) shots.Result
}

// Sink persists collected games.
type Sink interface {
	HasGame(ctx context.Context, gameID int64) (bool, error)
	SaveGame(ctx context.Context, summary model.GameSummary, events []model.ShotEvent) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	source    Source
	processor Processor
	sink      Sink
	name      string

	skipCollected bool

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, src Source, proc Processor, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		source:    src,
		processor: proc,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			job.Ack(w.processJob(ctx, job))
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.signal()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) signal() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// processJob handles one game. Failures are reported in the outcome; a
// panic in any stage is recovered so the pool keeps running.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) (out model.JobOutcome) {
	start := time.Now()
	out.GameID = job.GameID
	fields := []logger.Field{logger.Int64("gameID", job.GameID), logger.String("runID", job.RunID.String())}

	defer func() {
		if r := recover(); r != nil {
			out = model.JobOutcome{GameID: job.GameID, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
		if out.Err != nil {
			metrics.RecordWorkerError()
			metrics.RecordGame(metrics.OutcomeFailed)
			w.logger.Error(ctx, "game failed", append(fields, logger.Error(out.Err))...)
		}
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if w.skipCollected {
		has, err := w.sink.HasGame(ctx, job.GameID)
		if err != nil {
			out.Err = fmt.Errorf("check stored game: %w", err)
			return out
		}
		if has {
			metrics.RecordGame(metrics.OutcomeCached)
			out.Skipped = true
			return out
		}
	}

	feed, err := w.source.Game(ctx, job.GameID, job.Season)
	if err != nil {
		out.Err = fmt.Errorf("fetch game: %w", err)
		return out
	}

	res := w.processor.Process(ctx, feed)
	for reason, n := range res.Skipped {
		metrics.RecordEventsRejected(string(reason), n)
	}
	if res.Incomplete {
		metrics.RecordGame(metrics.OutcomeIncomplete)
		w.logger.Debug(ctx, "incomplete upstream data", fields...)
		out.Skipped = true
		return out
	}

	summary := summarize(feed.Context, res)
	if err := w.sink.SaveGame(ctx, summary, res.Shots); err != nil {
		out.Err = fmt.Errorf("save game: %w", err)
		return out
	}

	metrics.RecordShotsEmitted(len(res.Shots))
	metrics.RecordGame(metrics.OutcomeCollected)
	w.logger.Debug(ctx, "game collected", append(fields, logger.Int("shots", len(res.Shots)))...)
	out.Shots = len(res.Shots)
	return out
}

func summarize(gc *model.GameContext, res shots.Result) model.GameSummary {
	return model.GameSummary{
		GameID:      gc.GameID,
		Season:      gc.Season,
		Date:        gc.GameDate,
		HomeTeam:    gc.HomeTeamName,
		AwayTeam:    gc.AwayTeamName,
		Venue:       gc.Venue,
		Home:        res.Home,
		Away:        res.Away,
		ShotCount:   len(res.Shots),
		CollectedAt: time.Now().UTC(),
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool. workerCount below one defaults to the
// number of CPUs.
func NewPool(workerCount int, q Queue, src Source, proc Processor, sink Sink, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	cfg := poolConfig{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  cfg.logger.Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithLogger(cfg.logger)}, cfg.workerOpts...)
		wopts = append(wopts, WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, src, proc, sink, wopts...)
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals every worker and waits briefly for each.
func (p *Pool) Stop() {
	for _, worker := range p.workers {
		worker.signal()
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue, then waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Workers drain what is queued and exit when the dequeue channel closes.
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			worker.signal()
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
