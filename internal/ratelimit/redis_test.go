package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T, window time.Duration, max int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLimiter(client, window, max), mr
}

func TestRedisLimiterAdmitsUpToMax(t *testing.T) {
	l, _ := newTestRedisLimiter(t, time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "submission %d", i+1)
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLimiterWindowExpiry(t *testing.T) {
	l, mr := newTestRedisLimiter(t, time.Minute, 2)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	require.False(t, ok)

	// The key TTL is the window; once it lapses the identity starts
	// fresh.
	mr.FastForward(61 * time.Second)

	ok, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterRejectionDoesNotIncrement(t *testing.T) {
	l, mr := newTestRedisLimiter(t, time.Minute, 1)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		ok, _ = l.Allow(ctx, "a")
		require.False(t, ok)
	}

	got, err := mr.Get("ratelimit:intake:a")
	require.NoError(t, err)
	assert.Equal(t, "1", got, "rejections must not increment the counter")
}

func TestRedisLimiterIdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestRedisLimiter(t, time.Minute, 1)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	require.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
}
