// Package dedupe tracks game ids that are queued or being collected, so
// overlapping collection runs do not fetch the same game twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records in-flight game ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id is in flight and records it if not.
	// Returns true if id was already recorded, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id int64) bool

	// Unrecord releases an id once its job has been acknowledged or could
	// not be enqueued.
	Unrecord(ctx context.Context, id int64)

	Size() int64
}

type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[int64]struct{}
	sizeHint int
	size     atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{sizeHint: 1024}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[int64]struct{}, d.sizeHint)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Size returns the number of ids currently recorded.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
