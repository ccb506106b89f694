package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/backlink-reclaim/internal/repository"
)

const rateLimitPrefix = "ratelimit:scan:"

// expiryGrace keeps a key alive a little past midnight so clock skew between instances
// cannot reopen a domain early.
const expiryGrace = time.Hour

// RateLimiterImpl provides a concrete implementation for the RateLimiter interface using Redis,
// shared by every instance of the service.
type RateLimiterImpl struct {
	client *redis.Client
	now    func() time.Time
}

// NewRateLimiter creates a new instance of RateLimiterImpl.
func NewRateLimiter(client *redis.Client) *RateLimiterImpl {
	return &RateLimiterImpl{client: client, now: time.Now}
}

func (r *RateLimiterImpl) generateKey(domain string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", rateLimitPrefix, domain, repository.DayKey(day))
}

func (r *RateLimiterImpl) expiry(day time.Time) time.Duration {
	ttl := repository.NextReset(day).Sub(r.now()) + expiryGrace
	if ttl < expiryGrace {
		return expiryGrace
	}
	return ttl
}

// CheckAndMark uses SET NX, which is atomic across instances.
func (r *RateLimiterImpl) CheckAndMark(ctx context.Context, domain string, day time.Time) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.generateKey(domain, day), "1", r.expiry(day)).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check for %s: %w", domain, err)
	}
	return ok, nil
}

// Release removes the (domain, day) key.
func (r *RateLimiterImpl) Release(ctx context.Context, domain string, day time.Time) error {
	return r.client.Del(ctx, r.generateKey(domain, day)).Err()
}
