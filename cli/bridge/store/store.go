package store

import (
	"sync"
	"time"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/telemetry"
)

var now = time.Now // For mocking time.Now() in tests

// Store holds the latest snapshot and a bounded in-memory history ring.
// Readers always see a whole snapshot; the critical section is pointer
// substitution only. Nothing here survives a restart.
type Store struct {
	mu     sync.RWMutex
	latest *telemetry.Snapshot
	ring   []*telemetry.Snapshot
	head   int
	count  int
}

func New(historySize int) *Store {
	if historySize <= 0 {
		historySize = 1024
	}
	return &Store{ring: make([]*telemetry.Snapshot, historySize)}
}

// Replace atomically installs s as the latest snapshot and appends it to
// the history ring, evicting the oldest entry when full.
func (st *Store) Replace(s *telemetry.Snapshot) {
	st.mu.Lock()
	st.latest = s
	st.ring[st.head] = s
	st.head = (st.head + 1) % len(st.ring)
	if st.count < len(st.ring) {
		st.count++
	}
	st.mu.Unlock()
}

// Get returns the latest snapshot and whether one exists yet.
func (st *Store) Get() (*telemetry.Snapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.latest == nil {
		return nil, false
	}
	return st.latest, true
}

// Age reports how long ago the latest snapshot was produced. Staleness is
// reported, never enforced: an old snapshot stays available.
func (st *Store) Age() (time.Duration, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.latest == nil {
		return 0, false
	}
	return now().Sub(st.latest.Timestamp), true
}

// History returns up to limit of the most recent snapshots, oldest first.
// A limit of zero or above the retained count returns everything retained.
func (st *Store) History(limit int) []*telemetry.Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if limit <= 0 || limit > st.count {
		limit = st.count
	}
	n := len(st.ring)
	oldest := (st.head - st.count + 2*n) % n

	out := make([]*telemetry.Snapshot, 0, limit)
	for i := st.count - limit; i < st.count; i++ {
		out = append(out, st.ring[(oldest+i)%n])
	}
	return out
}
