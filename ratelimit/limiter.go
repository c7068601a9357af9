// Package ratelimit implements fixed-window admission control keyed by a
// caller identifier (user ID or remote address).
package ratelimit

import (
	"sync"
	"time"
)

// Default policy applied by the HTTP surface when no override is configured.
const (
	DefaultMaxRequests = 60
	DefaultWindow      = time.Minute
)

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter holds one window entry per identifier. Entries are created
// lazily on first request and replaced, not incremented, once their
// window has expired.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Admit reports whether the identifier may proceed and records the
// request against its current window. The whole check-and-increment is a
// single critical section: two concurrent calls for the same identifier
// can never both pass a full window.
func (l *Limiter) Admit(identifier string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetAt) {
		l.entries[identifier] = &entry{count: 1, resetAt: now.Add(window)}
		return true
	}
	if e.count < maxRequests {
		e.count++
		return true
	}
	return false
}

// RetryAfter returns how long the identifier has to wait before its
// window resets. Zero when the identifier is unknown or already expired.
func (l *Limiter) RetryAfter(identifier string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok {
		return 0
	}
	remaining := e.resetAt.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Prune drops expired entries so the table does not grow with every
// identifier ever seen. Called periodically by the cleanup worker.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked identifiers.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
