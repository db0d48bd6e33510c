package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/pkg/tokens"
)

// FreezeStatus lists frozen/warned/revoked security states, the operator
// community, and moderated users. Calling it as a master also registers the
// caller into the community (bootstrap behavior retained deliberately).
func (e *Engine) FreezeStatus(ctx context.Context, actor models.Actor) (*models.FreezeStatusResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, true); err != nil {
		return nil, err
	}

	now := e.now()
	resp := &models.FreezeStatusResponse{
		Frozen:  []*models.SecurityState{},
		Warned:  []*models.SecurityState{},
		Revoked: []*models.SecurityState{},
	}
	for _, s := range e.repo.ListSecurityStates(ctx) {
		switch {
		case s.Revoked != nil:
			resp.Revoked = append(resp.Revoked, s)
		case s.Frozen != nil:
			resp.Frozen = append(resp.Frozen, s)
		case s.PendingWarning != nil && !s.PendingWarning.Expired(now):
			resp.Warned = append(resp.Warned, s)
		}
	}
	resp.Operators = e.repo.ListOperators(ctx)
	resp.Users = e.repo.ListUserModeration(ctx)
	return resp, nil
}

// Logs reads the ledger, newest first, with the shared limit clamping.
func (e *Engine) Logs(ctx context.Context, actor models.Actor, category string, limit int) (*models.LogsResponse, error) {
	e.mu.Lock()
	if err := e.requireOperatorLocked(ctx, actor, true); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	return &models.LogsResponse{
		Items:         e.ledger.List(category, limit),
		ChainLastHash: e.ledger.LastHash(),
	}, nil
}

// VerifyLedger re-walks the hash chain and reports whether it is intact.
func (e *Engine) VerifyLedger(ctx context.Context, actor models.Actor) (map[string]any, error) {
	e.mu.Lock()
	if err := e.requireOperatorLocked(ctx, actor, true); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	result := map[string]any{
		"entries":       e.ledger.Len(),
		"chainLastHash": e.ledger.LastHash(),
		"valid":         true,
	}
	if err := e.ledger.Verify(); err != nil {
		result["valid"] = false
		result["error"] = err.Error()
	}
	return result, nil
}

// UnlockAdmin is the governed inverse of the unilateral freeze.
func (e *Engine) UnlockAdmin(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.TargetActorID)
	if target == "" {
		return nil, errValidation("targetActorId is required")
	}
	if req.ProposalID == "" {
		state, err := e.repo.GetSecurityState(ctx, target)
		if err != nil || state.Frozen == nil {
			return nil, errNotFound("target actor is not frozen")
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "governed unlock of frozen admin"
	}

	return e.processGovernanceActionLocked(ctx, actor, governedAction{
		actionType: models.ActionUnlockAdmin,
		targetID:   target,
		reason:     reason,
		proposalID: req.ProposalID,
		approvers:  req.RequiredApproverIDs,
		execute: func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error) {
			state, err := e.repo.GetSecurityState(ctx, target)
			if err != nil || state.Frozen == nil {
				return nil, errNotFound("target actor is not frozen")
			}
			state.Frozen = nil
			state.PendingWarning = nil
			state.IssueAttempts = nil

			e.appendLocked(models.CategoryExecution, models.ActionAdminUnlocked, executor, target, map[string]any{
				"proposalId": p.ProposalID,
			})
			result := map[string]any{"targetActorId": target, "unlocked": true}
			if rep := e.resolveObligationLocked(ctx, executor, models.ReportTypeFreeze, target); rep != nil {
				result["resolvedReportId"] = rep.ReportID
			}
			return result, nil
		},
	})
}

// RevokeAccess is the governed, stronger lockout of an admin account.
func (e *Engine) RevokeAccess(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.TargetActorID)
	if target == "" {
		return nil, errValidation("targetActorId is required")
	}

	reason := req.Reason
	if reason == "" {
		reason = "governed admin access revocation"
	}

	return e.processGovernanceActionLocked(ctx, actor, governedAction{
		actionType: models.ActionRevokeAdminAccess,
		targetID:   target,
		reason:     reason,
		proposalID: req.ProposalID,
		approvers:  req.RequiredApproverIDs,
		execute: func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error) {
			state := e.repo.EnsureSecurityState(ctx, target)
			if state.Revoked != nil {
				return map[string]any{"targetActorId": target, "alreadyRevoked": true}, nil
			}
			// Revocation supersedes freeze: the two are mutually exclusive.
			state.Frozen = nil
			state.Revoked = &models.RevocationRecord{
				RevokedAt: e.now().UTC(),
				Reason:    reason,
			}

			entry := e.appendLocked(models.CategoryExecution, models.ActionAccessRevoked, executor, target, map[string]any{
				"proposalId": p.ProposalID,
				"reason":     reason,
			})
			rep := e.createObligationLocked(ctx, models.ReportTypeAccessRevocation, target, executor.ActorID, reason, entry.ID)
			state.Revoked.ReportID = rep.ReportID

			return map[string]any{
				"targetActorId": target,
				"revoked":       true,
				"reportId":      rep.ReportID,
			}, nil
		},
	})
}

// RestoreAccess is the governed inverse of RevokeAccess.
func (e *Engine) RestoreAccess(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.TargetActorID)
	if target == "" {
		return nil, errValidation("targetActorId is required")
	}
	if req.ProposalID == "" {
		state, err := e.repo.GetSecurityState(ctx, target)
		if err != nil || state.Revoked == nil {
			return nil, errNotFound("target actor is not revoked")
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "governed admin access restore"
	}

	return e.processGovernanceActionLocked(ctx, actor, governedAction{
		actionType: models.ActionRestoreAdminAccess,
		targetID:   target,
		reason:     reason,
		proposalID: req.ProposalID,
		approvers:  req.RequiredApproverIDs,
		execute: func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error) {
			state, err := e.repo.GetSecurityState(ctx, target)
			if err != nil || state.Revoked == nil {
				return nil, errNotFound("target actor is not revoked")
			}
			state.Revoked = nil

			e.appendLocked(models.CategoryExecution, models.ActionAccessRestored, executor, target, map[string]any{
				"proposalId": p.ProposalID,
			})
			result := map[string]any{"targetActorId": target, "restored": true}
			if rep := e.resolveObligationLocked(ctx, executor, models.ReportTypeAccessRevocation, target); rep != nil {
				result["resolvedReportId"] = rep.ReportID
			}
			return result, nil
		},
	})
}

// MintToken issues an operator JWT so the CLI can authenticate without
// replaying raw identity headers. Master only, and only for the caller's
// own identity: a token minted for another actor would let one operator
// impersonate the rest of the community and forge their approvals.
func (e *Engine) MintToken(ctx context.Context, actor models.Actor, issuer *tokens.Issuer, req *models.TokenRequest) (*models.TokenResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	if req.ActorID != "" && req.ActorID != actor.ActorID {
		return nil, E(http.StatusForbidden, CodeForbidden, "tokens are minted for the caller's own identity only")
	}
	actorID := actor.ActorID
	role := models.ParseRole(req.Role)
	if role == models.RoleUnknown {
		role = actor.Role
	}

	var ttl time.Duration
	if req.TTL != "" {
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil || parsed <= 0 {
			return nil, errValidation("ttl must be a positive duration")
		}
		ttl = parsed
	}

	signed, expiresAt, err := issuer.Issue(actorID, "", string(role), ttl)
	if err != nil {
		return nil, E(http.StatusInternalServerError, "token_mint_failed", "failed to sign token")
	}

	return &models.TokenResponse{
		Token:     signed,
		ActorID:   actorID,
		Role:      string(role),
		ExpiresAt: expiresAt,
	}, nil
}
