package ratelimit

import (
	"sync"
	"time"
)

// Record is the per-address attempt state. Entries are created on first
// attempt, mutated on every attempt, and pruned lazily once a lockout
// has long elapsed.
type Record struct {
	Address      string
	FailureCount int
	LockedUntil  *time.Time
}

// Store provides atomic read-modify-write access to per-address
// records. Update must apply fn under mutual exclusion for the given
// address so concurrent attempts cannot lose counter increments;
// unrelated addresses must not serialize against each other.
type Store interface {
	Update(addr string, fn func(*Record))
}

// MemoryStore is the in-process Store: a map guarded by a mutex for
// lookup, with a per-record mutex for the actual update. The map lock
// is never held while fn runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*entry

	// retention controls lazy pruning; entries untouched for this long
	// past their lockout are dropped on the next map access.
	retention time.Duration
	now       func() time.Time
}

type entry struct {
	mu      sync.Mutex
	rec     Record
	touched time.Time

	// evicted marks an entry removed from the map between a lookup and
	// the entry lock; an Update holding such a pointer must retry.
	evicted bool
}

// NewMemoryStore creates an empty MemoryStore. Entries linger for
// retention past their last touch; zero means twice the default
// lockout.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	if retention <= 0 {
		retention = 2 * DefaultConfig().LockoutDuration
	}
	return &MemoryStore{
		records:   make(map[string]*entry),
		retention: retention,
		now:       time.Now,
	}
}

// Update implements Store. A prune can evict the entry between acquire
// and the entry lock; the loop re-acquires so the write never lands on
// an orphaned record.
func (s *MemoryStore) Update(addr string, fn func(*Record)) {
	for {
		e := s.acquire(addr)

		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}

		fn(&e.rec)
		e.touched = s.now()
		e.mu.Unlock()
		return
	}
}

// acquire finds or creates the entry for addr, pruning stale entries
// while it holds the map lock.
func (s *MemoryStore) acquire(addr string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now, addr)

	e, ok := s.records[addr]
	if !ok {
		e = &entry{rec: Record{Address: addr}, touched: now}
		s.records[addr] = e
	}
	return e
}

// PruneStale drops every entry past retention whose lockout has
// elapsed, returning the number removed. The lazy prune in acquire only
// runs when attempts arrive; a background sweeper calls this so a quiet
// server does not hold address records indefinitely.
func (s *MemoryStore) PruneStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now(), "")
}

// pruneLocked removes stale entries except keep. Callers hold s.mu.
// Entries are only examined under their own lock: a held lock means an
// update is in flight and the entry is not stale.
func (s *MemoryStore) pruneLocked(now time.Time, keep string) int {
	removed := 0
	for key, e := range s.records {
		if key == keep {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		if now.Sub(e.touched) > s.retention && !isLocked(&e.rec, now) {
			e.evicted = true
			delete(s.records, key)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Len reports the number of tracked addresses.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func isLocked(rec *Record, now time.Time) bool {
	return rec.LockedUntil != nil && now.Before(*rec.LockedUntil)
}
