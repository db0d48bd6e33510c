package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/we-ne/sentinel/internal/ledger"
	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/internal/ratelimit"
	"github.com/we-ne/sentinel/internal/repository"
)

// fakeClock is a mutable time source shared by the engine, the ledger, and
// the claim windows under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	engine *Engine
	repo   *repository.InMemoryRepository
	clock  *fakeClock
	claims *ratelimit.MemoryWindow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newFakeClock()
	repo := repository.NewInMemoryRepository()
	claims := ratelimit.NewMemoryWindow()
	claims.SetClock(clock.Now)

	led := ledger.New(ledger.WithClock(clock.Now))
	logger := &logging.Logger{Logger: slog.Default()}

	engine := NewEngine(repo, led, claims, logger, WithClock(clock.Now))
	return &testEnv{engine: engine, repo: repo, clock: clock, claims: claims}
}

func adminActor(id string) models.Actor {
	return models.Actor{ActorID: "admin:" + id, Role: models.RoleAdmin, AdminID: id}
}

func masterActor(id string) models.Actor {
	return models.Actor{ActorID: "admin:" + id, Role: models.RoleMaster, AdminID: id}
}

func ipActor(ip string) models.Actor {
	return models.Actor{ActorID: "ip:" + ip, Role: models.RoleUnknown}
}

// registerMasters enrolls the given masters into the operator community.
func (env *testEnv) registerMasters(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := env.engine.RegisterOperator(context.Background(), masterActor(id))
		require.NoError(t, err)
	}
}

// createCleanEvent issues an event that trips no signals.
func (env *testEnv) createCleanEvent(t *testing.T, actor models.Actor, maxClaims *int) *models.Event {
	t.Helper()
	event, err := env.engine.CreateEvent(context.Background(), actor, &models.CreateEventRequest{
		Title:                "Community Meetup",
		Host:                 "example.com",
		ClaimIntervalDays:    30,
		MaxClaimsPerInterval: maxClaims,
	}, browserUA, false)
	require.NoError(t, err)
	return event
}

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// requireEngineError asserts err is a typed engine error with the given
// status and code.
func requireEngineError(t *testing.T, err error, status int, code string) *Error {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := err.(*Error)
	require.True(t, ok, "expected *service.Error, got %T: %v", err, err)
	require.Equal(t, status, svcErr.Status, "unexpected status: %v", svcErr)
	require.Equal(t, code, svcErr.Code, "unexpected code: %v", svcErr)
	return svcErr
}

// ledgerActions returns the chain's action names, oldest first.
func (env *testEnv) ledgerActions() []string {
	entries := env.engine.Ledger().List("", 500)
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Action)
	}
	return out
}
