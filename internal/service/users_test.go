package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-ne/sentinel/internal/models"
)

func TestFreezeUserBlocksClaims(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")
	event := env.createCleanEvent(t, adminActor("alice"), nil)

	resp, err := env.engine.FreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "Bob@Example.com", Reason: "fraudulent claims",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// The id was normalized on the way in.
	rec, err2 := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	require.NoError(t, err2)
	assert.Equal(t, models.UserFrozen, rec.Status)
	assert.NotEmpty(t, rec.ReportID)

	// Frozen users cannot claim, case-insensitively.
	_, err = env.engine.ClaimEvent(context.Background(), &models.ClaimRequest{
		EventID: event.ID, Subject: "BOB@example.com",
	})
	requireEngineError(t, err, http.StatusForbidden, CodeUserFrozen)

	// Other users are unaffected.
	claim, err := env.engine.ClaimEvent(context.Background(), &models.ClaimRequest{
		EventID: event.ID, Subject: "carol@example.com",
	})
	require.NoError(t, err)
	assert.True(t, claim.Success)
}

func TestUnfreezeUserResolvesObligation(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")

	_, err := env.engine.FreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)

	rep, err2 := env.repo.FindRequiredReport(context.Background(), models.ReportTypeUserFreeze, "user:bob@example.com")
	require.NoError(t, err2)

	resp, err := env.engine.UnfreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	rec, _ := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	assert.Equal(t, models.UserActive, rec.Status)

	got, err2 := env.repo.GetReport(context.Background(), rep.ReportID)
	require.NoError(t, err2)
	assert.Equal(t, models.ReportResolved, got.Status)
}

func TestDeleteUserImpliesFrozen(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")
	event := env.createCleanEvent(t, adminActor("alice"), nil)

	_, err := env.engine.DeleteUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com", Reason: "account takeover",
	})
	require.NoError(t, err)

	rec, _ := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	assert.Equal(t, models.UserDeleted, rec.Status)
	assert.True(t, rec.IsFrozen())

	// Deleted reads as frozen on the claim path.
	_, err = env.engine.ClaimEvent(context.Background(), &models.ClaimRequest{
		EventID: event.ID, Subject: "bob@example.com",
	})
	requireEngineError(t, err, http.StatusForbidden, CodeUserFrozen)

	// Deleted users cannot be unfrozen; restore is the inverse.
	_, err = env.engine.UnfreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	requireEngineError(t, err, http.StatusConflict, CodeConflict)
}

func TestRestoreUser(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")

	_, err := env.engine.DeleteUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)

	resp, err := env.engine.RestoreUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	rec, _ := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	assert.Equal(t, models.UserActive, rec.Status)

	_, err2 := env.repo.FindRequiredReport(context.Background(), models.ReportTypeUserDeletion, "user:bob@example.com")
	assert.Error(t, err2)
}

func TestRestoreFrozenUserConflict(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")

	_, err := env.engine.FreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)

	// Frozen-but-not-deleted goes through unfreeze, not restore.
	_, err = env.engine.RestoreUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	requireEngineError(t, err, http.StatusConflict, CodeConflict)
}

func TestDeleteFrozenUserDirectly(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")

	_, err := env.engine.FreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)

	_, err = env.engine.DeleteUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)

	rec, _ := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	assert.Equal(t, models.UserDeleted, rec.Status)
}

func TestUserModerationRequiresConsensus(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1", "m2")

	resp, err := env.engine.FreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)
	assert.True(t, resp.Pending())

	// Not applied until unanimous.
	_, err2 := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	assert.Error(t, err2)

	resp, err = env.engine.FreezeUser(context.Background(), masterActor("m2"), &models.GovernRequest{
		UserID: "bob@example.com", ProposalID: resp.Proposal.ProposalID,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	rec, _ := env.repo.GetUserModeration(context.Background(), "user:bob@example.com")
	assert.Equal(t, models.UserFrozen, rec.Status)
}

func TestFreezeStatusListsEverything(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")
	frozenAdmin := adminActor("alice")
	env.freezeActor(t, frozenAdmin)

	_, err := env.engine.FreezeUser(context.Background(), masterActor("m1"), &models.GovernRequest{
		UserID: "bob@example.com",
	})
	require.NoError(t, err)

	// A warned-but-not-frozen actor.
	_, err = env.engine.CreateEvent(context.Background(), adminActor("dave"), &models.CreateEventRequest{
		Title: "auto enroll", Host: "example.com",
	}, browserUA, false)
	requireEngineError(t, err, http.StatusConflict, CodeSecurityWarning)

	status, err := env.engine.FreezeStatus(context.Background(), masterActor("m1"))
	require.NoError(t, err)

	require.Len(t, status.Frozen, 1)
	assert.Equal(t, frozenAdmin.ActorID, status.Frozen[0].ActorID)
	require.Len(t, status.Warned, 1)
	assert.Equal(t, "admin:dave", status.Warned[0].ActorID)
	assert.Empty(t, status.Revoked)
	require.Len(t, status.Operators, 1)
	require.Len(t, status.Users, 1)
	assert.Equal(t, models.UserFrozen, status.Users[0].Status)
}

func TestLedgerVerifyEndpointFlow(t *testing.T) {
	env := newTestEnv(t)
	env.registerMasters(t, "m1")
	env.createCleanEvent(t, adminActor("alice"), nil)

	result, err := env.engine.VerifyLedger(context.Background(), masterActor("m1"))
	require.NoError(t, err)
	assert.Equal(t, true, result["valid"])

	logs, err := env.engine.Logs(context.Background(), masterActor("m1"), "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, logs.Items)
	assert.Equal(t, logs.Items[0].EntryHash, logs.ChainLastHash)
}
