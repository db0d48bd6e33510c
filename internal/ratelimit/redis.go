package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow implements ClaimWindow on a Redis ZSET so several engine
// replicas can share one claim window. The check-and-record is atomic via a
// Lua script.
type RedisWindow struct {
	client *redis.Client
}

const allowScript = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, now)
		redis.call('EXPIRE', key, ttl)
		return 1
	else
		return 0
	end
`

// NewRedisWindow connects to Redis and verifies the connection.
func NewRedisWindow(redisURL string) (*RedisWindow, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisWindow{client: client}, nil
}

// NewRedisWindowWithClient wraps an existing client (tests).
func NewRedisWindowWithClient(client *redis.Client) *RedisWindow {
	return &RedisWindow{client: client}
}

func (r *RedisWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()
	// Keys expire a little after the window so abandoned subjects get
	// cleaned up.
	ttl := int64(window.Seconds()) + 60

	result, err := r.client.Eval(ctx, allowScript, []string{"claims:" + key}, now, windowStart, max, ttl).Int()
	if err != nil {
		return false, fmt.Errorf("claim window check failed: %w", err)
	}

	return result == 1, nil
}

func (r *RedisWindow) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
