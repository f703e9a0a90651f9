package background

import (
	"context"
	"log/slog"
	"time"
)

// StaleRecordStore is any store that can drop aged-out entries on
// demand. The rate limiter's memory store satisfies it.
type StaleRecordStore interface {
	PruneStale() int
}

// Sweeper periodically prunes stale rate-limit records. The store also
// prunes lazily on access, but only when attempts arrive; the sweeper
// keeps memory bounded on a quiet server.
type Sweeper struct {
	store    StaleRecordStore
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a sweeper over the given store.
func NewSweeper(store StaleRecordStore, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the periodic sweep until Stop is called or ctx is
// cancelled. Call it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("rate limit sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("rate limit sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep() {
	if removed := s.store.PruneStale(); removed > 0 {
		s.logger.Info("pruned stale rate limit records", slog.Int("removed", removed))
	}
}

// Stop signals the sweeper to stop.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}
