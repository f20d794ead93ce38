package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/pkg/logger"
	"github.com/okian/rinkshot/pkg/metrics"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		game_id      INTEGER PRIMARY KEY,
		season       INTEGER NOT NULL,
		game_date    TEXT    NOT NULL,
		home_team    TEXT    NOT NULL,
		away_team    TEXT    NOT NULL,
		venue        TEXT,
		home_wins    INTEGER, home_losses INTEGER, home_ot_losses INTEGER, home_points INTEGER,
		away_wins    INTEGER, away_losses INTEGER, away_ot_losses INTEGER, away_points INTEGER,
		shot_count   INTEGER NOT NULL,
		collected_at TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shot_events (
		game_id     INTEGER NOT NULL,
		seq         INTEGER NOT NULL,
		event_id    INTEGER,
		season      INTEGER NOT NULL,
		arena       TEXT,
		game_date   TEXT,
		matchup     TEXT,
		period      INTEGER,
		time_left   TEXT,
		play_type   TEXT NOT NULL,
		shot_type   TEXT,
		x_coord     REAL,
		y_coord     REAL,
		description TEXT,
		distance    REAL,
		score       TEXT,
		report_url  TEXT,
		PRIMARY KEY (game_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shots_season ON shot_events(season)`,
	`CREATE INDEX IF NOT EXISTS idx_shots_play_type ON shot_events(play_type)`,
	`CREATE INDEX IF NOT EXISTS idx_games_season ON games(season)`,
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
	logger logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	s := &SQLiteStore{db: db, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	n, err := s.Count(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.UpdateStoreShots(n)
	s.logger.Info(ctx, "shot store opened", logger.String("path", path), logger.Int("shots", n))
	return s, nil
}

// SaveGame implements Store.
func (s *SQLiteStore) SaveGame(ctx context.Context, g model.GameSummary, events []model.ShotEvent) error {
	if s.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shot_events WHERE game_id = ?`, g.GameID); err != nil {
		return fmt.Errorf("clear shots: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO games (
			game_id, season, game_date, home_team, away_team, venue,
			home_wins, home_losses, home_ot_losses, home_points,
			away_wins, away_losses, away_ot_losses, away_points,
			shot_count, collected_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		g.GameID, g.Season, g.Date.UTC().Format(timeLayout), g.HomeTeam, g.AwayTeam, g.Venue,
		g.Home.Wins, g.Home.Losses, g.Home.OTLosses, g.Home.Points,
		g.Away.Wins, g.Away.Losses, g.Away.OTLosses, g.Away.Points,
		len(events), g.CollectedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shot_events (
		game_id, seq, event_id, season, arena, game_date, matchup, period, time_left,
		play_type, shot_type, x_coord, y_coord, description, distance, score, report_url
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare shot insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		if _, err := stmt.ExecContext(ctx,
			g.GameID, i, e.EventID, e.Season, e.Arena, e.Date, e.Matchup, e.Period, e.TimeLeft,
			string(e.PlayType), e.ShotType, e.X, e.Y, e.Description, e.Distance, e.Score, e.ReportURL,
		); err != nil {
			return fmt.Errorf("insert shot %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateStoreShots(n)
	}
	return nil
}

// HasGame implements Store.
func (s *SQLiteStore) HasGame(ctx context.Context, gameID int64) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE game_id = ?`, gameID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("has game: %w", err)
	}
	return true, nil
}

// Shots implements Store.
func (s *SQLiteStore) Shots(ctx context.Context, q Query) ([]model.ShotEvent, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if q.Limit < 0 || q.Limit > MaxLimit || q.Offset < 0 {
		return nil, ErrInvalidLimit
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}

	var (
		where []string
		args  []any
	)
	if q.Season != 0 {
		where = append(where, "season = ?")
		args = append(args, q.Season)
	}
	if q.GameID != 0 {
		where = append(where, "game_id = ?")
		args = append(args, q.GameID)
	}
	if q.PlayType != "" {
		where = append(where, "play_type = ?")
		args = append(args, string(q.PlayType))
	}

	query := `SELECT game_id, event_id, season, arena, game_date, matchup, period, time_left,
		play_type, shot_type, x_coord, y_coord, description, distance, score, report_url
		FROM shot_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY game_id, seq LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer rows.Close()

	out := []model.ShotEvent{}
	for rows.Next() {
		var (
			e        model.ShotEvent
			playType string
		)
		if err := rows.Scan(&e.GameID, &e.EventID, &e.Season, &e.Arena, &e.Date, &e.Matchup,
			&e.Period, &e.TimeLeft, &playType, &e.ShotType, &e.X, &e.Y, &e.Description,
			&e.Distance, &e.Score, &e.ReportURL); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		e.PlayType = model.PlayType(playType)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Games implements Store.
func (s *SQLiteStore) Games(ctx context.Context, season int) ([]model.GameSummary, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	query := `SELECT game_id, season, game_date, home_team, away_team, COALESCE(venue, ''),
		home_wins, home_losses, home_ot_losses, home_points,
		away_wins, away_losses, away_ot_losses, away_points,
		shot_count, collected_at FROM games`
	var args []any
	if season != 0 {
		query += " WHERE season = ?"
		args = append(args, season)
	}
	query += " ORDER BY game_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	out := []model.GameSummary{}
	for rows.Next() {
		var (
			g                 model.GameSummary
			date, collectedAt string
		)
		if err := rows.Scan(&g.GameID, &g.Season, &date, &g.HomeTeam, &g.AwayTeam, &g.Venue,
			&g.Home.Wins, &g.Home.Losses, &g.Home.OTLosses, &g.Home.Points,
			&g.Away.Wins, &g.Away.Losses, &g.Away.OTLosses, &g.Away.Points,
			&g.ShotCount, &collectedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if g.Date, err = time.Parse(timeLayout, date); err != nil {
			return nil, fmt.Errorf("parse game date: %w", err)
		}
		if g.CollectedAt, err = time.Parse(timeLayout, collectedAt); err != nil {
			return nil, fmt.Errorf("parse collected_at: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shot_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shots: %w", err)
	}
	return n, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
