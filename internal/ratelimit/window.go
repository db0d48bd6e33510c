// Package ratelimit provides the sliding-window counters behind claim
// intervals. Claims are idempotent-by-window: hitting the cap is reported as
// success with no new state written, never as an error.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// ClaimWindow counts prior claims for a subject inside a trailing window and
// records the new claim when under the cap. Allow returns false when the cap
// is already reached (the claim becomes an "alreadyJoined" success upstream).
type ClaimWindow interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (bool, error)
	Close() error
}

// MemoryWindow is the in-process implementation.
type MemoryWindow struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	now     func() time.Time
}

func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{
		entries: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// SetClock overrides the time source (tests).
func (m *MemoryWindow) SetClock(now func() time.Time) {
	m.now = now
}

func (m *MemoryWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-window)

	kept := m.entries[key][:0]
	for _, t := range m.entries[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= max {
		m.entries[key] = kept
		return false, nil
	}

	m.entries[key] = append(kept, now)
	return true, nil
}

func (m *MemoryWindow) Close() error { return nil }
