// Package ratelimiter throttles repeated operations per key (for example login
// attempts per client IP).
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether one more operation for key may proceed now.
type Limiter interface {
	Allow(key string) bool
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key. Buckets unused for longer than
// idleTTL are dropped on the next sweep.
type KeyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	entries map[string]*entry

	now       func() time.Time
	lastSweep time.Time
}

// NewKeyedLimiter allows perMinute operations per key per minute with bursts
// of up to burst. perMinute<=0 defaults to 10, burst<=0 defaults to perMinute.
func NewKeyedLimiter(perMinute, burst int) *KeyedLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &KeyedLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     burst,
		idleTTL:   10 * time.Minute,
		entries:   make(map[string]*entry),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Allow reports whether an operation for key may happen now and consumes a
// token if so.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *KeyedLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.entries, k)
		}
	}
	l.lastSweep = now
}
