package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter throttles failed attempts per key with a token bucket each.
// Only failures spend tokens; a key without failures has no bucket.
type AttemptLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewAttemptLimiter allows burst failures per key, refilled at every.
// Buckets unused for idle are dropped by Sweep.
func NewAttemptLimiter(every time.Duration, burst int, idle time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		limit:   rate.Every(every),
		burst:   burst,
		idle:    idle,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Exhausted reports whether key has no failures left. It never spends a token.
func (l *AttemptLimiter) Exhausted(key string) bool {
	if l == nil || l.burst <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return false
	}
	return b.limiter.TokensAt(l.now()) < 1
}

// Fail records one failed attempt for key.
func (l *AttemptLimiter) Fail(key string) {
	if l == nil || l.burst <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	b.limiter.AllowN(now, 1)
}

// Forget drops the bucket for key.
func (l *AttemptLimiter) Forget(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Sweep drops idle buckets and returns how many were removed.
func (l *AttemptLimiter) Sweep() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	var n int
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}
