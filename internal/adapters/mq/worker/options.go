package worker

import (
	"github.com/okian/rinkshot/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSkipCollected skips games the sink already holds.
func WithSkipCollected(skip bool) Option {
	return func(w *InMemoryWorker) {
		w.skipCollected = skip
	}
}

type poolConfig struct {
	logger     logger.Logger
	workerOpts []Option
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

// WithPoolLogger sets the logger shared by the pool and its workers.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(c *poolConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkerOptions applies opts to every worker in the pool.
func WithWorkerOptions(opts ...Option) PoolOption {
	return func(c *poolConfig) {
		c.workerOpts = append(c.workerOpts, opts...)
	}
}
