package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/rinkshot/internal/domain/model"
)

func job(gameID int64) Job {
	return model.NewGameJob(uuid.Nil, 2021, gameID, nil)
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job(2021020001)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.GameID != 2021020001 {
		t.Errorf("expected game 2021020001, got %d", got.GameID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job(1)) || !q.Enqueue(ctx, job(2)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job(3)) {
		t.Error("expected enqueue to fail when full")
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_EnqueueWait(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, job(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Full: a second call blocks until a consumer drains the first job.
	accepted := make(chan error, 1)
	go func() { accepted <- q.EnqueueWait(ctx, job(2)) }()

	select {
	case err := <-accepted:
		t.Fatalf("expected EnqueueWait to block, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	jobs := q.Dequeue(ctx)
	if got := <-jobs; got.GameID != 1 {
		t.Errorf("expected game 1, got %d", got.GameID)
	}
	select {
	case err := <-accepted:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("EnqueueWait did not unblock")
	}
	if got := <-jobs; got.GameID != 2 {
		t.Errorf("expected game 2, got %d", got.GameID)
	}
}

func TestInMemoryQueue_EnqueueWaitCancelled(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	_ = q.Enqueue(context.Background(), job(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.EnqueueWait(ctx, job(2)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestInMemoryQueue_CloseUnblocksWaiters(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()
	_ = q.Enqueue(ctx, job(1))

	result := make(chan error, 1)
	go func() { result <- q.EnqueueWait(ctx, job(2)) }()
	time.Sleep(20 * time.Millisecond)

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case err := <-result:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Close")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	_ = q.Enqueue(ctx, job(1))

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, job(2)) {
		t.Error("expected enqueue after close to fail")
	}
	if err := q.EnqueueWait(ctx, job(2)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	// Queued jobs drain, then the channel closes.
	jobs := q.Dequeue(ctx)
	if got := <-jobs; got.GameID != 1 {
		t.Errorf("expected game 1, got %d", got.GameID)
	}
	if _, ok := <-jobs; ok {
		t.Error("expected dequeue channel to close")
	}
}
