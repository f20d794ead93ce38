package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/okian/rinkshot/internal/adapters/nhl"
	"github.com/okian/rinkshot/internal/snapshot"
	"github.com/okian/rinkshot/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers  = 4
	defaultRPS      = 5
	defaultTimeout  = 10 * time.Second
	defaultDeadline = 2 * time.Hour
)

func main() {
	var (
		dir       = flag.String("dir", "fixtures", "Destination directory")
		season    = flag.Int("season", 0, "Season start year, e.g. 2021")
		games     = flag.Int("games", 0, "Number of regular-season games of -season")
		ids       = flag.String("ids", "", "Comma-separated game ids")
		workers   = flag.Int("workers", defaultWorkers, "Number of games fetched concurrently")
		baseURL   = flag.String("url", nhl.DefaultBaseURL, "NHL web API root")
		rps       = flag.Float64("rps", defaultRPS, "Upstream requests per second")
		timeout   = flag.Duration("timeout", defaultTimeout, "Per-request timeout")
		overwrite = flag.Bool("overwrite", false, "Re-download games already on disk")
		logFile   = flag.String("log", "", "Also write log output to this file")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		snapshot.ShowHelp()
		return
	}

	if err := snapshot.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	explicit, err := parseIDs(*ids)
	if err != nil {
		os.Stderr.WriteString("Invalid -ids: " + err.Error() + "\n")
		os.Exit(2)
	}
	config := &snapshot.Config{
		Dir:       *dir,
		Games:     explicit,
		Workers:   *workers,
		Overwrite: *overwrite,
	}
	if *season > 0 && *games > 0 {
		config.Seasons = map[int]int{*season: *games}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultDeadline)
	defer cancel()

	client := nhl.NewClient(
		nhl.WithBaseURL(*baseURL),
		nhl.WithRateLimit(*rps),
		nhl.WithTimeout(*timeout),
		nhl.WithLogger(logger.Named("nhl")),
	)
	if _, err := snapshot.Run(ctx, client, config); err != nil {
		os.Stderr.WriteString("Snapshot failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func parseIDs(raw string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
