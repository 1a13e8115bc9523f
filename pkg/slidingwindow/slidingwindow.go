// Package slidingwindow implements a per-key sliding-window rate limiter.
// Bookkeeping for a key is dropped explicitly via Forget and keys with no
// activity beyond the idle horizon are swept opportunistically on Allow.
package slidingwindow

import (
	"sync"
	"time"
)

type Limiter struct {
	window      time.Duration
	limit       int
	idleHorizon time.Duration

	mu        sync.Mutex
	events    map[string][]time.Time
	lastSweep time.Time

	now func() time.Time
}

func New(window time.Duration, limit int, idleHorizon time.Duration) *Limiter {
	return &Limiter{
		window:      window,
		limit:       limit,
		idleHorizon: idleHorizon,
		events:      make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow records an event for key and reports whether it fits into the
// trailing window. A rejected event is not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	cutoff := now.Add(-l.window)
	recent := l.events[key][:0]
	for _, ts := range l.events[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.events[key] = recent
		return false
	}

	l.events[key] = append(recent, now)

	return true
}

// Forget drops all bookkeeping for key.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.events, key)
}

func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleHorizon {
		return
	}
	l.lastSweep = now

	cutoff := now.Add(-l.idleHorizon)
	for key, timestamps := range l.events {
		if len(timestamps) == 0 || timestamps[len(timestamps)-1].Before(cutoff) {
			delete(l.events, key)
		}
	}
}
