package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/we-ne/sentinel/internal/handlers"
	"github.com/we-ne/sentinel/internal/httputil"
	"github.com/we-ne/sentinel/internal/middleware"
)

// NewRouter constructs the ServeMux with the engine's routes registered and
// the actor resolver plus request-id middleware wrapped around it.
func NewRouter(sec *handlers.SecurityHandler, ev *handlers.EventsHandler, resolver *middleware.ActorResolver) http.Handler {
	mux := http.NewServeMux()

	// Ticket issuance and claiming
	mux.HandleFunc("POST /events", ev.Create)
	mux.HandleFunc("POST /events/claim", ev.Claim)
	mux.HandleFunc("POST /events/pause", ev.Pause)

	// Operator read surfaces
	mux.HandleFunc("GET /admin/security/freeze-status", sec.FreezeStatus)
	mux.HandleFunc("GET /admin/security/logs", sec.Logs)
	mux.HandleFunc("GET /admin/security/ledger/verify", sec.VerifyLedger)
	mux.HandleFunc("GET /admin/security/report-obligations", sec.Reports)
	mux.HandleFunc("GET /admin/security/proposals", sec.Proposals)

	// Governed admin actions (unanimous operator consensus)
	mux.Handle("POST /admin/security/unlock", sec.UnlockAdmin())
	mux.Handle("POST /admin/security/revoke-access", sec.RevokeAccess())
	mux.Handle("POST /admin/security/restore-access", sec.RestoreAccess())
	mux.Handle("POST /admin/security/operator/revoke", sec.RevokeOperator())
	mux.Handle("POST /admin/security/operator/restore", sec.RestoreOperator())
	mux.Handle("POST /admin/security/users/freeze", sec.FreezeUser())
	mux.Handle("POST /admin/security/users/unfreeze", sec.UnfreezeUser())
	mux.Handle("POST /admin/security/users/delete", sec.DeleteUser())
	mux.Handle("POST /admin/security/users/restore", sec.RestoreUser())

	// Operator community
	mux.HandleFunc("POST /admin/security/operator/register", sec.RegisterOperator)
	mux.HandleFunc("POST /admin/security/token", sec.MintToken)

	// Health and metrics
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(resolver.WithActor(mux))
}
