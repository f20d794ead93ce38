// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Core packages never read the environment; cmd loads a Config and
//     injects its values through functional options.
//   - Keys are flat snake_case and match the koanf tags below.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/okian/rinkshot/internal/domain/filter"
	"github.com/okian/rinkshot/internal/domain/geometry"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the NHL web API root.
	BaseURL string `koanf:"base_url"`
	// RequestsPerSecond caps upstream calls across all workers.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// RequestTimeoutMS bounds each upstream call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
	// FixturesDir replays saved feeds instead of calling BaseURL when set.
	FixturesDir string `koanf:"fixtures_dir"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of collection workers.
	WorkerCount int `koanf:"worker_count"`

	TimeCutoffSeconds    int     `koanf:"time_cutoff_seconds"`
	DistanceCutoffFeet   float64 `koanf:"distance_cutoff_feet"`
	DistanceMode         string  `koanf:"distance_mode"`
	PeriodCutoff         int     `koanf:"period_cutoff"`
	ZoneFallback         string  `koanf:"zone_fallback"`
	CollapseShotIntoMiss bool    `koanf:"collapse_shot_into_miss"`

	// StorePath is the SQLite database file.
	StorePath string `koanf:"store_path"`
	// SkipCollected skips games already present in the store.
	SkipCollected bool `koanf:"skip_collected"`

	// CollectOnStart runs a collection for Seasons at startup.
	CollectOnStart bool `koanf:"collect_on_start"`
	// Seasons maps a season start year to its number of regular-season games.
	Seasons map[string]int `koanf:"seasons"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		BaseURL:            "https://api-web.nhle.com/v1",
		RequestsPerSecond:  5,
		RequestTimeoutMS:   10_000,
		QueueSize:          4_096,
		WorkerCount:        runtime.NumCPU(),
		TimeCutoffSeconds:  filter.DefaultTimeCutoffSeconds,
		DistanceCutoffFeet: filter.DefaultDistanceCutoff,
		DistanceMode:       string(filter.AtLeast),
		PeriodCutoff:       filter.DefaultPeriodCutoff,
		ZoneFallback:       geometry.NearNet.Name(),
		StorePath:          "rinkshot.db",
		SkipCollected:      true,
		Seasons:            map[string]int{},
	}
}

// Validate checks ranges and enum values.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.RequestsPerSecond <= 0:
		return fmt.Errorf("%w: requests_per_second must be positive", ErrInvalidConfig)
	case c.PeriodCutoff <= 0:
		return fmt.Errorf("%w: period_cutoff must be positive", ErrInvalidConfig)
	}
	if _, err := filter.ParseDistanceMode(c.DistanceMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := geometry.ParseFallback(c.ZoneFallback); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.SeasonGames(); err != nil {
		return err
	}
	return nil
}

// SeasonGames returns Seasons keyed by integer year.
func (c *Config) SeasonGames() (map[int]int, error) {
	out := make(map[int]int, len(c.Seasons))
	for k, n := range c.Seasons {
		year, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: season %q is not a year", ErrInvalidConfig, k)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: season %d has negative game count", ErrInvalidConfig, year)
		}
		out[year] = n
	}
	return out, nil
}
