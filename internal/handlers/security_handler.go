package handlers

import (
	"net/http"

	"github.com/we-ne/sentinel/internal/httputil"
	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/middleware"
	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/internal/service"
	"github.com/we-ne/sentinel/pkg/tokens"
)

// SecurityHandler serves the /admin/security surface.
type SecurityHandler struct {
	engine *service.Engine
	issuer *tokens.Issuer
	logger *logging.Logger
}

func NewSecurityHandler(engine *service.Engine, issuer *tokens.Issuer, logger *logging.Logger) *SecurityHandler {
	return &SecurityHandler{engine: engine, issuer: issuer, logger: logger}
}

// FreezeStatus handles GET /admin/security/freeze-status.
func (h *SecurityHandler) FreezeStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	resp, err := h.engine.FreezeStatus(r.Context(), actor)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Logs handles GET /admin/security/logs?category=&limit=.
func (h *SecurityHandler) Logs(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	category := r.URL.Query().Get("category")
	limit := httputil.ParseIntParam(r.URL.Query().Get("limit"), 0)

	resp, err := h.engine.Logs(r.Context(), actor, category, limit)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// VerifyLedger handles GET /admin/security/ledger/verify.
func (h *SecurityHandler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	result, err := h.engine.VerifyLedger(r.Context(), actor)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// Reports handles GET /admin/security/report-obligations?status=&limit=.
func (h *SecurityHandler) Reports(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	status := r.URL.Query().Get("status")
	limit := httputil.ParseIntParam(r.URL.Query().Get("limit"), 0)

	resp, err := h.engine.ListReports(r.Context(), actor, status, limit)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Proposals handles GET /admin/security/proposals.
func (h *SecurityHandler) Proposals(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	views, err := h.engine.ListProposals(r.Context(), actor)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": views})
}

// RegisterOperator handles POST /admin/security/operator/register.
func (h *SecurityHandler) RegisterOperator(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	op, err := h.engine.RegisterOperator(r.Context(), actor)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, op)
}

// MintToken handles POST /admin/security/token.
func (h *SecurityHandler) MintToken(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	var req models.TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.engine.MintToken(r.Context(), actor, h.issuer, &req)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// governedFunc is one of the engine's consensus-gated operations.
type governedFunc func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error)

// governed wraps the shared decode/dispatch/encode of every consensus
// endpoint: 202 while pending, 200 once executed or replayed.
func (h *SecurityHandler) governed(fn governedFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.GetActor(r.Context())
		var req models.GovernRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := fn(r, actor, &req)
		if err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		status := http.StatusOK
		if resp.Pending() {
			status = http.StatusAccepted
		}
		httputil.WriteJSON(w, status, resp)
	}
}

// UnlockAdmin handles POST /admin/security/unlock.
func (h *SecurityHandler) UnlockAdmin() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.UnlockAdmin(r.Context(), actor, req)
	})
}

// RevokeAccess handles POST /admin/security/revoke-access.
func (h *SecurityHandler) RevokeAccess() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.RevokeAccess(r.Context(), actor, req)
	})
}

// RestoreAccess handles POST /admin/security/restore-access.
func (h *SecurityHandler) RestoreAccess() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.RestoreAccess(r.Context(), actor, req)
	})
}

// RevokeOperator handles POST /admin/security/operator/revoke.
func (h *SecurityHandler) RevokeOperator() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.RevokeOperator(r.Context(), actor, req)
	})
}

// RestoreOperator handles POST /admin/security/operator/restore.
func (h *SecurityHandler) RestoreOperator() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.RestoreOperator(r.Context(), actor, req)
	})
}

// FreezeUser handles POST /admin/security/users/freeze.
func (h *SecurityHandler) FreezeUser() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.FreezeUser(r.Context(), actor, req)
	})
}

// UnfreezeUser handles POST /admin/security/users/unfreeze.
func (h *SecurityHandler) UnfreezeUser() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.UnfreezeUser(r.Context(), actor, req)
	})
}

// DeleteUser handles POST /admin/security/users/delete.
func (h *SecurityHandler) DeleteUser() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.DeleteUser(r.Context(), actor, req)
	})
}

// RestoreUser handles POST /admin/security/users/restore.
func (h *SecurityHandler) RestoreUser() http.HandlerFunc {
	return h.governed(func(r *http.Request, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
		return h.engine.RestoreUser(r.Context(), actor, req)
	})
}
