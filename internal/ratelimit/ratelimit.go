// Package ratelimit throttles requests per client key with a token bucket
// for each key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter holds one token bucket per key. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// PerMinute creates a limiter allowing n requests per minute per key, with
// bursts of up to n. n <= 0 disables limiting.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		return New(rate.Inf, 0)
	}
	return New(rate.Limit(float64(n)/60), n)
}

// New creates a limiter with the given refill rate and burst.
func New(limit rate.Limit, burst int) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// SetClock replaces the wall clock. Tests only.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Allow reports whether a request for key may proceed and consumes a token
// if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastAccess = now
	return e.limiter.AllowN(now, 1)
}

// Sweep forgets keys idle for longer than idle and returns how many were
// removed.
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	n := 0
	for key, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
