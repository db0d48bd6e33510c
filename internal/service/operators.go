package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/we-ne/sentinel/internal/models"
)

// RegisterOperator explicitly enrolls the calling master into the operator
// community. Registration is idempotent.
func (e *Engine) RegisterOperator(ctx context.Context, actor models.Actor) (*models.OperatorRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !actor.Authenticated() {
		return nil, errUnauthorized()
	}
	if actor.Role != models.RoleMaster {
		return nil, E(http.StatusForbidden, CodeForbidden, "only master-role actors join the operator community")
	}
	if op, err := e.repo.GetOperator(ctx, actor.ActorID); err == nil {
		if !op.Active() {
			return nil, E(http.StatusForbidden, CodeOperatorRevoked, "operator has been revoked")
		}
		return op, nil
	}

	e.registerOperatorLocked(ctx, actor)
	op, err := e.repo.GetOperator(ctx, actor.ActorID)
	if err != nil {
		return nil, E(http.StatusInternalServerError, "operator_registration_failed", "operator registration failed")
	}
	return op, nil
}

// RevokeOperator removes an operator from the active community, governed by
// the remaining operators. Self-revocation and revoking the last active
// operator are both rejected so the community can never govern itself into a
// dead end.
func (e *Engine) RevokeOperator(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.TargetOperatorActorID)
	if target == "" {
		return nil, errValidation("targetOperatorActorId is required")
	}
	if target == actor.ActorID {
		return nil, E(http.StatusConflict, CodeSelfRevocation, "operators cannot revoke themselves")
	}

	op, err := e.repo.GetOperator(ctx, target)
	if err != nil {
		return nil, errNotFound("target operator not found")
	}
	if req.ProposalID == "" {
		if !op.Active() {
			// Already revoked is a success, not a conflict: retried workflows
			// land here.
			return &models.GovernanceResponse{
				Success: true,
				Status:  models.ProposalExecuted,
				Result:  map[string]any{"targetOperatorActorId": target, "alreadyRevoked": true},
			}, nil
		}
		if err := e.checkLastOperatorLocked(ctx, target); err != nil {
			return nil, err
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "governed operator revocation"
	}

	return e.processGovernanceActionLocked(ctx, actor, governedAction{
		actionType: models.ActionRevokeOperator,
		targetID:   target,
		reason:     reason,
		proposalID: req.ProposalID,
		approvers:  req.RequiredApproverIDs,
		execute: func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error) {
			op, err := e.repo.GetOperator(ctx, target)
			if err != nil {
				return nil, errNotFound("target operator not found")
			}
			if !op.Active() {
				return map[string]any{"targetOperatorActorId": target, "alreadyRevoked": true}, nil
			}
			// The community may have shrunk since the proposal was created;
			// re-check at execute time.
			if err := e.checkLastOperatorLocked(ctx, target); err != nil {
				return nil, err
			}

			op.Revoked = &models.OperatorRevocation{
				RevokedAt:        e.now().UTC(),
				Reason:           reason,
				RevokedByActorID: executor.ActorID,
			}
			_ = e.repo.UpsertOperator(ctx, op)

			entry := e.appendLocked(models.CategoryExecution, models.ActionOperatorRevoked, executor, target, map[string]any{
				"proposalId": p.ProposalID,
				"reason":     reason,
			})
			rep := e.createObligationLocked(ctx, models.ReportTypeOperatorRevocation, target, executor.ActorID, reason, entry.ID)
			op.Revoked.ReportID = rep.ReportID

			return map[string]any{
				"targetOperatorActorId": target,
				"revoked":               true,
				"reportId":              rep.ReportID,
			}, nil
		},
	})
}

// RestoreOperator re-admits a revoked operator, governed by the remaining
// active community.
func (e *Engine) RestoreOperator(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.TargetOperatorActorID)
	if target == "" {
		return nil, errValidation("targetOperatorActorId is required")
	}
	op, err := e.repo.GetOperator(ctx, target)
	if err != nil {
		return nil, errNotFound("target operator not found")
	}
	if req.ProposalID == "" && op.Active() {
		return &models.GovernanceResponse{
			Success: true,
			Status:  models.ProposalExecuted,
			Result:  map[string]any{"targetOperatorActorId": target, "alreadyActive": true},
		}, nil
	}

	reason := req.Reason
	if reason == "" {
		reason = "governed operator restore"
	}

	return e.processGovernanceActionLocked(ctx, actor, governedAction{
		actionType: models.ActionRestoreOperator,
		targetID:   target,
		reason:     reason,
		proposalID: req.ProposalID,
		approvers:  req.RequiredApproverIDs,
		execute: func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error) {
			op, err := e.repo.GetOperator(ctx, target)
			if err != nil {
				return nil, errNotFound("target operator not found")
			}
			if op.Active() {
				return map[string]any{"targetOperatorActorId": target, "alreadyActive": true}, nil
			}
			op.Revoked = nil
			_ = e.repo.UpsertOperator(ctx, op)

			e.appendLocked(models.CategoryExecution, models.ActionOperatorRestored, executor, target, map[string]any{
				"proposalId": p.ProposalID,
			})
			result := map[string]any{"targetOperatorActorId": target, "restored": true}
			if rep := e.resolveObligationLocked(ctx, executor, models.ReportTypeOperatorRevocation, target); rep != nil {
				result["resolvedReportId"] = rep.ReportID
			}
			return result, nil
		},
	})
}

// checkLastOperatorLocked rejects revoking the last active operator.
func (e *Engine) checkLastOperatorLocked(ctx context.Context, target string) *Error {
	active := e.repo.ActiveOperatorIDs(ctx)
	remaining := 0
	for _, id := range active {
		if id != target {
			remaining++
		}
	}
	if remaining == 0 {
		return E(http.StatusConflict, CodeLastOperator, "cannot revoke the last active operator")
	}
	return nil
}
