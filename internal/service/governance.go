package service

import (
	"context"
	"net/http"

	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/metrics"
	"github.com/we-ne/sentinel/internal/models"
)

// StatusPendingConsensus is the governance response status while approvals
// are still outstanding; handlers map it to 202.
const StatusPendingConsensus = "pending_consensus"

// executeFunc applies a proposal's side effect. It runs exactly once, after
// unanimity, still inside the engine's critical section. Returning an error
// leaves the proposal pending.
type executeFunc func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error)

// governedAction describes one request into the consensus workflow.
type governedAction struct {
	actionType models.GovernanceActionType
	targetID   string
	reason     string
	proposalID string
	approvers  []string // optional explicit override, creation time only
	execute    executeFunc
}

// processGovernanceActionLocked is the single consensus algorithm every
// governed action runs through; only the execute closure and reason default
// vary per action. Callers hold e.mu and have already authorized the actor
// as an active master.
func (e *Engine) processGovernanceActionLocked(ctx context.Context, actor models.Actor, act governedAction) (*models.GovernanceResponse, error) {
	var proposal *models.GovernanceProposal

	if act.proposalID != "" {
		p, err := e.repo.GetProposal(ctx, act.proposalID)
		if err != nil {
			return nil, errNotFound("proposal not found")
		}
		if p.ActionType != act.actionType || p.TargetID != act.targetID {
			return nil, E(http.StatusConflict, CodeProposalMismatch, "proposal does not match this action and target")
		}
		if p.Status == models.ProposalExecuted {
			// Idempotent replay: no re-execution, no new ledger entry.
			return &models.GovernanceResponse{
				Success:         true,
				Status:          models.ProposalExecuted,
				AlreadyExecuted: true,
				Proposal:        p.View(),
			}, nil
		}
		proposal = p
	} else {
		explicit := models.NormalizeApprovers(act.approvers)
		for _, p := range e.repo.PendingProposals(ctx, act.actionType, act.targetID) {
			if len(explicit) > 0 && !p.SameApprovers(explicit) {
				continue
			}
			proposal = p
			break
		}

		if proposal == nil {
			approvers := explicit
			if len(approvers) == 0 {
				approvers = e.defaultApproversLocked(ctx, act)
			}
			if len(approvers) == 0 {
				return nil, E(http.StatusConflict, CodeConflict, "no active operators available to approve")
			}

			proposal = &models.GovernanceProposal{
				ProposalID:          newID(),
				ActionType:          act.actionType,
				TargetID:            act.targetID,
				Reason:              act.reason,
				CreatedAt:           e.now().UTC(),
				RequestedByActorID:  actor.ActorID,
				RequiredApproverIDs: approvers,
				Status:              models.ProposalPending,
			}
			_ = e.repo.CreateProposal(ctx, proposal)
			metrics.ProposalsCreated.Inc()
			e.appendLocked(models.CategoryAudit, models.ActionProposalCreated, actor, act.targetID, map[string]any{
				"proposalId": proposal.ProposalID,
				"actionType": string(act.actionType),
				"reason":     act.reason,
				"required":   len(approvers),
			})
			e.logger.InfoContext(ctx, "governance proposal created",
				logging.ProposalID(proposal.ProposalID),
				logging.Action(string(act.actionType)),
				logging.TargetID(act.targetID),
			)
		}
	}

	if !proposal.IsRequiredApprover(actor.ActorID) {
		return nil, E(http.StatusForbidden, CodeForbidden, "actor is not a required approver of this proposal")
	}

	if !proposal.HasApproval(actor.ActorID) {
		proposal.Approvals = append(proposal.Approvals, models.Approval{
			ActorID:    actor.ActorID,
			ApprovedAt: e.now().UTC(),
		})
		metrics.ProposalsApproved.Inc()
		e.appendLocked(models.CategoryAudit, models.ActionProposalApproved, actor, proposal.TargetID, map[string]any{
			"proposalId": proposal.ProposalID,
			"approved":   len(proposal.Approvals),
			"required":   len(proposal.RequiredApproverIDs),
		})
	}

	if !proposal.Unanimous() {
		return &models.GovernanceResponse{
			Status:   StatusPendingConsensus,
			Proposal: proposal.View(),
		}, nil
	}

	result, err := act.execute(ctx, proposal, actor)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	proposal.Status = models.ProposalExecuted
	proposal.ExecutedAt = &now
	proposal.ExecutedByActorID = actor.ActorID
	metrics.ProposalsExecuted.Inc()
	e.appendLocked(models.CategoryExecution, models.ActionProposalExecuted, actor, proposal.TargetID, map[string]any{
		"proposalId": proposal.ProposalID,
		"actionType": string(proposal.ActionType),
	})
	e.logger.InfoContext(ctx, "governance proposal executed",
		logging.ProposalID(proposal.ProposalID),
		logging.Action(string(proposal.ActionType)),
		logging.TargetID(proposal.TargetID),
	)

	return &models.GovernanceResponse{
		Success:  true,
		Status:   models.ProposalExecuted,
		Proposal: proposal.View(),
		Result:   result,
	}, nil
}

// defaultApproversLocked snapshots the required approver set at proposal
// creation: the full active operator community, minus the target when the
// target is itself an operator. Later community changes never touch open
// proposals.
func (e *Engine) defaultApproversLocked(ctx context.Context, act governedAction) []string {
	ids := e.repo.ActiveOperatorIDs(ctx)
	filtered := ids[:0]
	for _, id := range ids {
		if id == act.targetID {
			continue
		}
		filtered = append(filtered, id)
	}
	return models.NormalizeApprovers(filtered)
}

// ListProposals returns every proposal for the read-only listing endpoint.
func (e *Engine) ListProposals(ctx context.Context, actor models.Actor) ([]*models.ProposalView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, true); err != nil {
		return nil, err
	}

	proposals := e.repo.ListProposals(ctx)
	views := make([]*models.ProposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, p.View())
	}
	return views, nil
}
