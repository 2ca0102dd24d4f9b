package rates

import (
	"sync"
	"time"
)

// Limiter tracks submission counts per (playerID, actionKind) key.
// Counters accumulate until Cleanup or Reset removes them; there is no
// implicit decay. The host owns the cleanup cadence.
//
// Construct one per process and inject it by reference; tests build
// isolated instances with their own clocks.
type Limiter struct {
	mu      sync.Mutex
	entries map[limitKey]*limitEntry

	retention time.Duration
	now       func() time.Time
}

type limitKey struct {
	PlayerID string
	Kind     string
}

type limitEntry struct {
	Count    int
	LastSeen time.Time
}

func NewLimiter(retention time.Duration) *Limiter {
	return &Limiter{
		entries:   map[limitKey]*limitEntry{},
		retention: retention,
		now:       time.Now,
	}
}

// NewLimiterWithClock is for tests that need a deterministic clock.
func NewLimiterWithClock(retention time.Duration, now func() time.Time) *Limiter {
	l := NewLimiter(retention)
	l.now = now
	return l
}

// Bump increments the counter for (playerID, kind) and returns the new
// count. Concurrent bumps on the same key serialize under the lock.
func (l *Limiter) Bump(playerID, kind string) int {
	k := limitKey{PlayerID: playerID, Kind: kind}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[k]
	if e == nil {
		e = &limitEntry{}
		l.entries[k] = e
	}
	e.Count++
	e.LastSeen = l.now()
	return e.Count
}

// Count is a pure read of the current counter; missing keys read as 0.
func (l *Limiter) Count(playerID, kind string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e := l.entries[limitKey{PlayerID: playerID, Kind: kind}]; e != nil {
		return e.Count
	}
	return 0
}

// IsRateLimited reports whether the current count has reached threshold.
// Read-only: it never bumps the counter.
func (l *Limiter) IsRateLimited(playerID, kind string, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	return l.Count(playerID, kind) >= threshold
}

// Counts returns a copy of this player's counters keyed by action kind,
// for embedding into a validation context snapshot.
func (l *Limiter) Counts(playerID string) map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[string]int{}
	for k, e := range l.entries {
		if k.PlayerID == playerID && e.Count > 0 {
			out[k.Kind] = e.Count
		}
	}
	return out
}

// Reset drops the counter for one key.
func (l *Limiter) Reset(playerID, kind string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, limitKey{PlayerID: playerID, Kind: kind})
}

// Cleanup removes entries idle past the retention window and returns
// how many were dropped. Removal is snapshot-and-remove per key: a key
// is only deleted if its LastSeen still matches the stale snapshot, so
// an increment racing with cleanup keeps its entry.
func (l *Limiter) Cleanup() int {
	cutoff := l.now().Add(-l.retention)

	type staleKey struct {
		key  limitKey
		seen time.Time
	}
	l.mu.Lock()
	stale := make([]staleKey, 0)
	for k, e := range l.entries {
		if e.LastSeen.Before(cutoff) {
			stale = append(stale, staleKey{key: k, seen: e.LastSeen})
		}
	}
	l.mu.Unlock()

	removed := 0
	for _, s := range stale {
		l.mu.Lock()
		if e := l.entries[s.key]; e != nil && e.LastSeen.Equal(s.seen) {
			delete(l.entries, s.key)
			removed++
		}
		l.mu.Unlock()
	}
	return removed
}

// Len reports the number of live (player, kind) entries.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
