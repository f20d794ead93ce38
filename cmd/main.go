package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/rinkshot/internal/adapters/http/api"
	"github.com/okian/rinkshot/internal/adapters/http/swagger"
	"github.com/okian/rinkshot/internal/adapters/mq/worker"
	"github.com/okian/rinkshot/internal/adapters/nhl"
	app "github.com/okian/rinkshot/internal/app"
	"github.com/okian/rinkshot/internal/config"
	"github.com/okian/rinkshot/internal/domain/filter"
	"github.com/okian/rinkshot/internal/domain/geometry"
	"github.com/okian/rinkshot/internal/domain/shots"
	"github.com/okian/rinkshot/pkg/logger"
	"github.com/okian/rinkshot/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("failed to read .env: " + err.Error() + "\n")
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "invalid service configuration", logger.Error(err))
		os.Exit(1)
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	if cfg.CollectOnStart {
		startCollection(ctx, cfg, svc, loggerInstance)
	}

	srv := newHTTPServer(ctx, cfg.Addr, svc)

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildService translates configuration into service options.
func buildService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	mode, err := filter.ParseDistanceMode(cfg.DistanceMode)
	if err != nil {
		return nil, fmt.Errorf("distance_mode: %w", err)
	}
	table, err := geometry.ParseFallback(cfg.ZoneFallback)
	if err != nil {
		return nil, fmt.Errorf("zone_fallback: %w", err)
	}

	scope := filter.New(
		filter.WithTimeCutoff(cfg.TimeCutoffSeconds),
		filter.WithDistanceCutoff(cfg.DistanceCutoffFeet),
		filter.WithDistanceMode(mode),
		filter.WithPeriodCutoff(cfg.PeriodCutoff),
	)

	return app.New(
		app.WithLogger(log),
		app.WithSource(newSource(cfg, log)),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithStorePath(cfg.StorePath),
		app.WithSkipCollected(cfg.SkipCollected),
		app.WithBuilderOptions(
			shots.WithFilter(scope),
			shots.WithFallbackTable(table),
			shots.WithCollapseShotIntoMiss(cfg.CollapseShotIntoMiss),
		),
	), nil
}

// newSource replays saved documents when fixtures_dir is set and calls the
// NHL API otherwise.
func newSource(cfg *config.Config, log logger.Logger) worker.Source {
	if cfg.FixturesDir != "" {
		return nhl.NewFileSource(cfg.FixturesDir)
	}
	return nhl.NewClient(
		nhl.WithBaseURL(cfg.BaseURL),
		nhl.WithTimeout(time.Duration(cfg.RequestTimeoutMS)*time.Millisecond),
		nhl.WithRateLimit(cfg.RequestsPerSecond),
		nhl.WithLogger(log.Named("nhl")),
	)
}

func newHTTPServer(ctx context.Context, addr string, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startCollection kicks off a run for the configured seasons.
func startCollection(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) {
	seasons, err := cfg.SeasonGames()
	if err != nil || len(seasons) == 0 {
		log.Warn(ctx, "collect_on_start set without seasons", logger.Error(err))
		return
	}
	accepted, err := svc.CollectAsync(ctx, seasons)
	if err != nil {
		log.Error(ctx, "failed to start collection", logger.Error(err))
		return
	}
	log.Info(ctx, "collection started",
		logger.String("runID", accepted.RunID),
		logger.Int("games", accepted.Games),
	)
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics refreshes gauges that only change between runs.
func updateServiceMetrics(svc *app.Service) {
	// GetStats refreshes queue, worker and store gauges.
	stats := svc.GetStats()

	if started, ok := stats["started"].(bool); ok && !started {
		metrics.UpdateWorkerCount(0)
	}
}
