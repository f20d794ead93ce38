// Package repository persists collected games and their shot events.
package repository

import (
	"context"

	"github.com/okian/rinkshot/internal/domain/model"
)

// Query limits.
const (
	DefaultLimit = 100
	MaxLimit     = 5000
)

// Query selects shot events. Zero fields do not filter.
type Query struct {
	Season   int
	GameID   int64
	PlayType model.PlayType
	Limit    int
	Offset   int
}

// Store provides read/write access to collected games.
type Store interface {
	// SaveGame replaces every stored row of the game in one transaction.
	SaveGame(ctx context.Context, summary model.GameSummary, events []model.ShotEvent) error

	// HasGame reports whether the game has been collected.
	HasGame(ctx context.Context, gameID int64) (bool, error)

	// Shots returns shot events in game order, then feed order.
	Shots(ctx context.Context, q Query) ([]model.ShotEvent, error)

	// Games returns collected games, optionally limited to one season.
	Games(ctx context.Context, season int) ([]model.GameSummary, error)

	// Count returns the number of stored shot events.
	Count(ctx context.Context) (int, error)

	Close() error
}
