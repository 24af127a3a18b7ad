package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for an atomic window check. Prevents the race in a
// GET → check → INCR sequence when multiple intake processes share one
// Redis. The key TTL set at creation is the sweep: a window disappears
// on its own once it expires, and a rejection neither increments the
// count nor extends the window.
const windowLuaScript = `
local key = KEYS[1]
local maxHits = tonumber(ARGV[1])
local windowMs = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")

if current >= maxHits then
    return {0, current}  -- denied, no increment
end

local newVal = redis.call("INCR", key)
if newVal == 1 then
    redis.call("PEXPIRE", key, windowMs)
end

return {1, newVal}  -- admitted
`

// RedisLimiter implements Limiter with an atomic Lua script, keyed per
// client identity.
type RedisLimiter struct {
	redis  *redis.Client
	script *redis.Script
	window time.Duration
	max    int
}

// NewRedisLimiter creates a limiter over an existing Redis client.
func NewRedisLimiter(client *redis.Client, window time.Duration, max int) *RedisLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxHits
	}
	return &RedisLimiter{
		redis:  client,
		script: redis.NewScript(windowLuaScript),
		window: window,
		max:    max,
	}
}

// NewRedisLimiterFromURL connects to Redis and verifies the connection.
func NewRedisLimiterFromURL(redisURL string, window time.Duration, max int) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisLimiter(client, window, max), nil
}

// Allow atomically checks and increments the identity's window.
func (l *RedisLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	key := "ratelimit:intake:" + identity

	result, err := l.script.Run(ctx, l.redis,
		[]string{key},
		l.max,
		l.window.Milliseconds(),
	).Slice()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	admitted, ok := result[0].(int64)
	if !ok {
		return false, fmt.Errorf("unexpected rate limit script result: %v", result)
	}
	return admitted == 1, nil
}

// Close closes the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.redis.Close()
}
