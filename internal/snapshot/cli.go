package snapshot

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/rinkshot/pkg/logger"
)

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the snapshot tool.
func ShowHelp() {
	os.Stdout.WriteString(`rinkshot snapshot
=================

Downloads play-by-play, landing and standings documents into a directory
that rinkshot can replay with fixtures_dir.

Usage:
  go run ./cmd/snapshot [options]

Options:
  -dir string
        Destination directory (default "fixtures")
  -season int
        Season start year, e.g. 2021
  -games int
        Number of regular-season games of -season to download
  -ids string
        Comma-separated game ids, e.g. 2021020001,2021020002
  -workers int
        Number of games fetched concurrently (default 4)
  -url string
        NHL web API root (default "https://api-web.nhle.com/v1")
  -rps float
        Upstream requests per second (default 5)
  -timeout duration
        Per-request timeout (default 10s)
  -overwrite
        Re-download games already on disk
  -log string
        Also write log output to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # First twenty games of 2021-22
  go run ./cmd/snapshot -season 2021 -games 20

  # Two specific games into a custom directory
  go run ./cmd/snapshot -dir testdata -ids 2021020123,2021020124
`)
}
