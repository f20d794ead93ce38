package service

import (
	"github.com/okian/rinkshot/internal/adapters/mq/worker"
	"github.com/okian/rinkshot/internal/adapters/repository"
	"github.com/okian/rinkshot/internal/domain/shots"
	"github.com/okian/rinkshot/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where game feeds come from.
func WithSource(src worker.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore uses an already opened store. The service does not close it.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
			s.ownsStore = false
		}
	}
}

// WithStorePath sets the SQLite file opened by Start when no store was given.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithBuilderOptions configures how shot events are derived.
func WithBuilderOptions(opts ...shots.Option) Option {
	return func(s *Service) {
		s.builderOpts = append(s.builderOpts, opts...)
	}
}

// WithSkipCollected skips games already present in the store.
func WithSkipCollected(skip bool) Option {
	return func(s *Service) {
		s.skipCollected = skip
	}
}
