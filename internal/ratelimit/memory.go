package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/thanghienlanh/web33/internal/validation"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps one fixed window per identifier in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Check never returns an error; the signature matches Limiter.
func (l *MemoryLimiter) Check(_ context.Context, identifier string, maxRequests int, windowLen time.Duration) (validation.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[identifier]
	if !exists || now.After(w.resetAt) {
		l.windows[identifier] = &window{count: 1, resetAt: now.Add(windowLen)}
		return validation.OK(), nil
	}

	if w.count >= maxRequests {
		return exceeded(maxRequests, windowLen), nil
	}

	w.count++
	return validation.OK(), nil
}

// Sweep drops windows that have already expired and returns how many were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked identifiers.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
