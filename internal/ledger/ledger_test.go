package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-ne/sentinel/internal/models"
)

func testActor() models.Actor {
	return models.Actor{ActorID: "admin:alice", Role: models.RoleMaster, AdminID: "alice"}
}

func TestAppendChainsFromGenesis(t *testing.T) {
	l := New()

	first := l.Append(models.CategoryAudit, models.ActionEventCreated, testActor(), "", map[string]any{"eventId": "e1"})

	assert.Equal(t, GenesisHash, first.PrevHash)
	assert.Len(t, first.EntryHash, 64)
	assert.Equal(t, first.EntryHash, l.LastHash())

	second := l.Append(models.CategoryExecution, models.ActionFreezeEnforced, testActor(), "admin:bob", nil)
	assert.Equal(t, first.EntryHash, second.PrevHash)
	assert.Equal(t, second.EntryHash, l.LastHash())
	assert.Equal(t, 2, l.Len())
}

func TestVerifyDetectsTampering(t *testing.T) {
	l := New()
	l.Append(models.CategoryAudit, models.ActionEventCreated, testActor(), "", nil)
	entry := l.Append(models.CategoryAudit, models.ActionEventCreated, testActor(), "", map[string]any{"eventId": "e2"})
	l.Append(models.CategoryExecution, models.ActionFreezeEnforced, testActor(), "admin:bob", nil)

	require.NoError(t, l.Verify())

	// Mutating a recorded field must break recomputation.
	entry.Action = models.ActionAdminUnlocked
	err := l.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestVerifyDetectsBrokenLinkage(t *testing.T) {
	l := New()
	l.Append(models.CategoryAudit, models.ActionEventCreated, testActor(), "", nil)
	entry := l.Append(models.CategoryAudit, models.ActionEventCreated, testActor(), "", nil)

	entry.PrevHash = strings.Repeat("f", 64)
	entry.EntryHash = ComputeEntryHash(entry)

	err := l.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain broken")
}

func TestListNewestFirstWithCategoryFilter(t *testing.T) {
	l := New()
	l.Append(models.CategoryAudit, "a1", testActor(), "", nil)
	l.Append(models.CategoryExecution, "x1", testActor(), "", nil)
	l.Append(models.CategoryAudit, "a2", testActor(), "", nil)

	all := l.List("", 0)
	require.Len(t, all, 3)
	assert.Equal(t, "a2", all[0].Action)
	assert.Equal(t, "x1", all[1].Action)
	assert.Equal(t, "a1", all[2].Action)

	audits := l.List(models.CategoryAudit, 0)
	require.Len(t, audits, 2)
	assert.Equal(t, "a2", audits[0].Action)

	limited := l.List("", 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "a2", limited[0].Action)
}

func TestListClampsLimit(t *testing.T) {
	l := New()
	for i := 0; i < 10; i++ {
		l.Append(models.CategoryAudit, "a", testActor(), "", nil)
	}

	assert.Len(t, l.List("", -5), 10) // default kicks in, more than enough
	assert.Len(t, l.List("", 600), 10)
	assert.Len(t, l.List("", 3), 3)
}

func TestLastHashEmptyChainIsGenesis(t *testing.T) {
	l := New()
	assert.Equal(t, GenesisHash, l.LastHash())
	assert.Equal(t, 0, l.Len())
	assert.NoError(t, l.Verify())
}

func TestComputeEntryHashDeterministic(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := &models.LedgerEntry{
		ID:        "id-1",
		Timestamp: ts,
		Category:  models.CategoryAudit,
		Action:    models.ActionEventCreated,
		Actor:     testActor(),
		Details:   map[string]any{"b": 2, "a": 1},
		PrevHash:  GenesisHash,
	}

	h1 := ComputeEntryHash(entry)
	h2 := ComputeEntryHash(entry)
	assert.Equal(t, h1, h2)

	entry.Details["a"] = 3
	assert.NotEqual(t, h1, ComputeEntryHash(entry))
}
