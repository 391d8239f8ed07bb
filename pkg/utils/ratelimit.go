package utils

import (
	"sync"
	"time"
)

// RateLimiter bounds request volume per client identifier over a sliding
// time window. It is purely in-memory and single-instance: state resets on
// process restart and is not shared across processes.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	// ops counts Admit calls since the last map-wide sweep.
	ops int

	// now is replaceable in tests.
	now func() time.Time
}

// pruneInterval is how many Admit calls pass between map-wide sweeps of
// fully aged-out clients. Per-client pruning still happens on every call.
const pruneInterval = 1024

// NewRateLimiter creates a limiter admitting at most limit requests per
// client within the trailing window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Admit reports whether a request from clientID may proceed. Timestamps
// older than the window are pruned before the count check; a rejected
// request is never recorded, so the retained count for an admitted client
// never exceeds the limit.
func (l *RateLimiter) Admit(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	l.ops++
	if l.ops >= pruneInterval {
		l.ops = 0
		l.pruneLocked(cutoff)
	}

	recent := l.hits[clientID][:0]
	for _, ts := range l.hits[clientID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.hits[clientID] = recent
		return false
	}

	l.hits[clientID] = append(recent, now)
	return true
}

// Prune drops clients whose every timestamp has aged out of the window,
// keeping the map from growing without bound under churning client IDs.
// Admit runs the same sweep every pruneInterval calls.
func (l *RateLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now().Add(-l.window))
}

func (l *RateLimiter) pruneLocked(cutoff time.Time) {
	for id, stamps := range l.hits {
		live := false
		for _, ts := range stamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.hits, id)
		}
	}
}
