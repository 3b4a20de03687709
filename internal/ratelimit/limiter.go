package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one counted attempt.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long the caller must wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.Before(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Limiter counts attempts per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) Decision
	Reset(ctx context.Context, key string) error
}

// InMemoryLimiter keeps counters in process memory.
type InMemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	items  map[string]entry
}

type entry struct {
	count   int
	resetAt time.Time
}

func NewInMemory(window time.Duration) *InMemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &InMemoryLimiter{
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
		items:  make(map[string]entry),
	}
}

func (l *InMemoryLimiter) Allow(_ context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanup(now)

	curr, ok := l.items[key]
	if !ok {
		curr = entry{resetAt: now.Add(l.window)}
	}
	curr.count++
	l.items[key] = curr
	return decide(curr.count, limit, curr.resetAt)
}

func (l *InMemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, key)
	return nil
}

func (l *InMemoryLimiter) cleanup(now time.Time) {
	for k, v := range l.items {
		if !now.Before(v.resetAt) {
			delete(l.items, k)
		}
	}
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
