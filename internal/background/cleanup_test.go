package background

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingStore struct {
	calls atomic.Int32
}

func (c *countingStore) PruneStale() int {
	c.calls.Add(1)
	return 1
}

func TestSweeper_SweepsOnInterval(t *testing.T) {
	store := &countingStore{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sweeper := NewSweeper(store, logger, 10*time.Millisecond)

	go sweeper.Start(context.Background())
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	store := &countingStore{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sweeper := NewSweeper(store, logger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
