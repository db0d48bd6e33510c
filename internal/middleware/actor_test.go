package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/pkg/tokens"
)

func newResolver(t *testing.T) (*ActorResolver, *tokens.Issuer) {
	t.Helper()
	issuer := tokens.NewIssuer("test-secret", time.Hour)
	return NewActorResolver(issuer), issuer
}

func TestResolveJWTWinsOverHeaders(t *testing.T) {
	resolver, issuer := newResolver(t)

	token, _, err := issuer.Issue("admin:alice", "alice", "master", 0)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/events", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("X-Admin-Id", "mallory")
	r.Header.Set("X-Admin-Role", "admin")

	actor := resolver.Resolve(r)
	assert.Equal(t, "admin:alice", actor.ActorID)
	assert.Equal(t, models.RoleMaster, actor.Role)
	assert.True(t, actor.Authenticated())
}

func TestResolveAdminIDHeader(t *testing.T) {
	resolver, _ := newResolver(t)

	r := httptest.NewRequest("POST", "/events", nil)
	r.Header.Set("X-Admin-Id", "Alice")
	r.Header.Set("X-Admin-Role", "MASTER")

	actor := resolver.Resolve(r)
	assert.Equal(t, "admin:alice", actor.ActorID)
	assert.Equal(t, models.RoleMaster, actor.Role)
	assert.Equal(t, "alice", actor.AdminID)
}

func TestResolveOpaqueBearerIsHashed(t *testing.T) {
	resolver, _ := newResolver(t)

	r := httptest.NewRequest("POST", "/events", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")

	sum := sha256.Sum256([]byte("not-a-jwt"))
	want := "token:" + hex.EncodeToString(sum[:])[:16]

	actor := resolver.Resolve(r)
	assert.Equal(t, want, actor.ActorID)
	assert.True(t, actor.Authenticated())

	// Same token, same identity.
	assert.Equal(t, actor.ActorID, resolver.Resolve(r).ActorID)
}

func TestResolveFallsBackToIP(t *testing.T) {
	resolver, _ := newResolver(t)

	r := httptest.NewRequest("POST", "/events", nil)
	r.RemoteAddr = "203.0.113.7:41234"

	actor := resolver.Resolve(r)
	assert.Equal(t, "ip:203.0.113.7", actor.ActorID)
	assert.Equal(t, models.RoleUnknown, actor.Role)
	assert.False(t, actor.Authenticated())
}

func TestResolveForwardedFor(t *testing.T) {
	resolver, _ := newResolver(t)

	r := httptest.NewRequest("POST", "/events", nil)
	r.RemoteAddr = "10.0.0.1:9999"
	r.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")

	actor := resolver.Resolve(r)
	assert.Equal(t, "ip:198.51.100.4", actor.ActorID)
}

func TestResolveExpiredTokenFallsThrough(t *testing.T) {
	resolver, issuer := newResolver(t)

	token, _, err := issuer.Issue("admin:alice", "alice", "master", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	r := httptest.NewRequest("POST", "/events", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.RemoteAddr = "10.0.0.1:9999"

	// Invalid claims: the raw token is treated as an opaque bearer.
	actor := resolver.Resolve(r)
	assert.NotEqual(t, "admin:alice", actor.ActorID)
	assert.Contains(t, actor.ActorID, "token:")
}

func TestBearerTokenParsing(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
}
