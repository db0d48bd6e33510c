package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWindowEnforcesCap(t *testing.T) {
	w := NewMemoryWindow()
	ctx := context.Background()

	allowed, err := w.Allow(ctx, "e1:alice", time.Hour, 2)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = w.Allow(ctx, "e1:alice", time.Hour, 2)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = w.Allow(ctx, "e1:alice", time.Hour, 2)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Independent keys have independent windows.
	allowed, err = w.Allow(ctx, "e1:bob", time.Hour, 2)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryWindowSlides(t *testing.T) {
	w := NewMemoryWindow()
	ctx := context.Background()

	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	})

	allowed, _ := w.Allow(ctx, "e1:alice", time.Hour, 1)
	assert.True(t, allowed)
	allowed, _ = w.Allow(ctx, "e1:alice", time.Hour, 1)
	assert.False(t, allowed)

	mu.Lock()
	now = now.Add(61 * time.Minute)
	mu.Unlock()

	allowed, _ = w.Allow(ctx, "e1:alice", time.Hour, 1)
	assert.True(t, allowed)
}

func TestMemoryWindowDeniedAttemptWritesNothing(t *testing.T) {
	w := NewMemoryWindow()
	ctx := context.Background()

	_, _ = w.Allow(ctx, "e1:alice", time.Hour, 1)
	for i := 0; i < 5; i++ {
		allowed, err := w.Allow(ctx, "e1:alice", time.Hour, 1)
		require.NoError(t, err)
		assert.False(t, allowed)
	}
	// Still exactly one recorded claim.
	assert.Len(t, w.entries["e1:alice"], 1)
}
