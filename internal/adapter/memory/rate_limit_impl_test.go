package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SameDayBlocksSecondScan(t *testing.T) {
	l := NewRateLimiter()
	ctx := context.Background()
	day := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	allowed, err := l.CheckAndMark(ctx, "example.com", day)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.CheckAndMark(ctx, "example.com", day.Add(10*time.Hour))
	require.NoError(t, err)
	assert.False(t, allowed, "same calendar day must be blocked")

	allowed, err = l.CheckAndMark(ctx, "example.com", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, allowed, "next day must be allowed again")

	allowed, err = l.CheckAndMark(ctx, "other.com", day)
	require.NoError(t, err)
	assert.True(t, allowed, "different domain is independent")
	assert.Equal(t, 3, l.Len())
}

func TestRateLimiter_DeniedCheckHasNoSideEffects(t *testing.T) {
	l := NewRateLimiter()
	ctx := context.Background()
	day := time.Now()

	_, _ = l.CheckAndMark(ctx, "example.com", day)
	_, _ = l.CheckAndMark(ctx, "example.com", day)
	_, _ = l.CheckAndMark(ctx, "example.com", day)
	assert.Equal(t, 1, l.Len())
}

func TestRateLimiter_Release(t *testing.T) {
	l := NewRateLimiter()
	ctx := context.Background()
	day := time.Now()

	allowed, _ := l.CheckAndMark(ctx, "example.com", day)
	require.True(t, allowed)
	require.NoError(t, l.Release(ctx, "example.com", day))

	allowed, _ = l.CheckAndMark(ctx, "example.com", day)
	assert.True(t, allowed)
}

func TestRateLimiter_ConcurrentFirstCheckAllowsExactlyOne(t *testing.T) {
	l := NewRateLimiter()
	day := time.Now()

	var allowedCount atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.CheckAndMark(context.Background(), "example.com", day); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), allowedCount.Load())
}

func TestNoopRateLimiter(t *testing.T) {
	var l NoopRateLimiter
	for range 3 {
		ok, err := l.CheckAndMark(context.Background(), "example.com", time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
