package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/we-ne/sentinel/internal/httputil"
	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/pkg/tokens"
)

const actorKey = contextKey("actor")

// ActorResolver derives a stable Actor from a request's identity headers at
// the boundary, so the engine itself never parses headers. Priority:
// engine-issued JWT claims > X-Admin-Id > hashed bearer token > source IP.
// Resolution never fails; gating happens downstream.
type ActorResolver struct {
	issuer *tokens.Issuer
}

func NewActorResolver(issuer *tokens.Issuer) *ActorResolver {
	return &ActorResolver{issuer: issuer}
}

// Resolve computes the request's actor. The id is derived once and never
// mutated afterwards.
func (ar *ActorResolver) Resolve(r *http.Request) models.Actor {
	role := models.ParseRole(r.Header.Get("X-Admin-Role"))

	bearer := bearerToken(r.Header.Get("Authorization"))
	if bearer != "" && ar.issuer != nil {
		if claims, err := ar.issuer.Validate(bearer); err == nil {
			return models.Actor{
				ActorID: claims.ActorID,
				Role:    models.ParseRole(claims.Role),
				AdminID: claims.AdminID,
			}
		}
	}

	if adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id")); adminID != "" {
		id := strings.ToLower(adminID)
		return models.Actor{
			ActorID: "admin:" + id,
			Role:    role,
			AdminID: id,
		}
	}

	if bearer != "" {
		sum := sha256.Sum256([]byte(bearer))
		return models.Actor{
			ActorID: "token:" + hex.EncodeToString(sum[:])[:16],
			Role:    role,
		}
	}

	return models.Actor{
		ActorID: "ip:" + httputil.GetClientIP(r),
		Role:    role,
	}
}

// WithActor resolves the actor once per request and stores it in the
// context.
func (ar *ActorResolver) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ar.Resolve(r)
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor returns the actor resolved for this request. The zero Actor is
// returned when resolution middleware did not run (tests hitting handlers
// directly).
func GetActor(ctx context.Context) models.Actor {
	if a, ok := ctx.Value(actorKey).(models.Actor); ok {
		return a
	}
	return models.Actor{Role: models.RoleUnknown}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	// A bare token without a scheme still identifies the caller.
	return strings.TrimSpace(header)
}
