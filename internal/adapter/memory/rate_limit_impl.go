package memory

import (
	"context"
	"sync"
	"time"

	"github.com/user/backlink-reclaim/internal/repository"
)

// RateLimiterImpl keeps (domain, day) entries in process memory. It is created at process start,
// never persisted, and only cleared by a restart; a multi-instance deployment needs the redis backend.
type RateLimiterImpl struct {
	mu      sync.Mutex
	entries map[string]struct{}
}

// NewRateLimiter creates an empty in-process limiter.
func NewRateLimiter() *RateLimiterImpl {
	return &RateLimiterImpl{
		entries: make(map[string]struct{}),
	}
}

func key(domain string, day time.Time) string {
	return domain + "|" + repository.DayKey(day)
}

// CheckAndMark never fails.
func (l *RateLimiterImpl) CheckAndMark(_ context.Context, domain string, day time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(domain, day)
	if _, exists := l.entries[k]; exists {
		return false, nil
	}
	l.entries[k] = struct{}{}
	return true, nil
}

// Release removes the entry for (domain, day).
func (l *RateLimiterImpl) Release(_ context.Context, domain string, day time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key(domain, day))
	return nil
}

// Len reports the number of live entries.
func (l *RateLimiterImpl) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// NoopRateLimiter allows every scan. It is only wired when rate limiting is explicitly disabled.
type NoopRateLimiter struct{}

func (NoopRateLimiter) CheckAndMark(context.Context, string, time.Time) (bool, error) { return true, nil }

func (NoopRateLimiter) Release(context.Context, string, time.Time) error { return nil }
