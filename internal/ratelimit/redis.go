package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

const redisTimeout = 2 * time.Second

// RedisLimiter shares counters across instances. Redis failures degrade to the
// in-memory fallback so a cache outage never locks operators out.
type RedisLimiter struct {
	Client   *redis.Client
	Window   time.Duration
	Prefix   string
	Fallback *InMemoryLimiter
	Logger   *zap.Logger
}

func NewRedis(client *redis.Client, window time.Duration, logger *zap.Logger) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		Client:   client,
		Window:   window,
		Prefix:   "rl:",
		Fallback: NewInMemory(window),
		Logger:   logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	if l.Client == nil {
		return l.Fallback.Allow(ctx, key, limit)
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	res, err := fixedWindowScript.Run(ctx, l.Client, []string{l.Prefix + key}, l.Window.Milliseconds()).Result()
	if err != nil {
		l.Logger.Warn("rate limit script failed; using memory fallback", zap.String("key", key), zap.Error(err))
		return l.Fallback.Allow(ctx, key, limit)
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		return l.Fallback.Allow(ctx, key, limit)
	}

	count, _ := vals[0].(int64)
	ttlMs, _ := vals[1].(int64)
	if ttlMs < 0 {
		ttlMs = l.Window.Milliseconds()
	}
	return decide(int(count), limit, time.Now().UTC().Add(time.Duration(ttlMs)*time.Millisecond))
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	_ = l.Fallback.Reset(ctx, key)
	if l.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return l.Client.Del(ctx, l.Prefix+key).Err()
}
