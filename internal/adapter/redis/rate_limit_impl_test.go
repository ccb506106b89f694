package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RateLimiterImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client), mr
}

func TestRateLimiter_CheckAndMark(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()
	day := time.Now()

	allowed, err := l.CheckAndMark(ctx, "example.com", day)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.CheckAndMark(ctx, "example.com", day)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = l.CheckAndMark(ctx, "example.com", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_KeyExpiresAfterMidnight(t *testing.T) {
	l, mr := newTestLimiter(t)
	now := time.Date(2026, 10, 16, 22, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, err := l.CheckAndMark(context.Background(), "example.com", now)
	require.NoError(t, err)

	ttl := mr.TTL("ratelimit:scan:example.com:2026-10-16")
	assert.Equal(t, 3*time.Hour, ttl, "two hours to midnight plus grace")
}

func TestRateLimiter_Release(t *testing.T) {
	l, mr := newTestLimiter(t)
	ctx := context.Background()
	day := time.Now()

	_, err := l.CheckAndMark(ctx, "example.com", day)
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx, "example.com", day))
	assert.Empty(t, mr.Keys())

	allowed, err := l.CheckAndMark(ctx, "example.com", day)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_StoreFailure(t *testing.T) {
	l, mr := newTestLimiter(t)
	mr.Close()

	_, err := l.CheckAndMark(context.Background(), "example.com", time.Now())
	assert.Error(t, err)
}

func TestNewClient_EmptyAddress(t *testing.T) {
	client, err := NewClient("", "", 0)
	assert.ErrorIs(t, err, ErrEmptyAddress)
	assert.Nil(t, client)
}

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	client.Close()
}
