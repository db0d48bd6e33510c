package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/we-ne/sentinel/internal/models"
)

// FreezeUser blocks an end user from claiming, governed by the operator
// community.
func (e *Engine) FreezeUser(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	return e.moderateUser(ctx, actor, req, models.ActionFreezeUser, "governed user freeze",
		func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor, userID, reason string) (map[string]any, error) {
			rec := e.repo.EnsureUserModeration(ctx, userID)
			if rec.Status != models.UserActive {
				return map[string]any{"userId": userID, "status": rec.Status}, nil
			}
			e.setUserStatusLocked(rec, models.UserFrozen, reason, executor.ActorID)

			entry := e.appendLocked(models.CategoryExecution, models.ActionUserFrozen, executor, userID, map[string]any{
				"proposalId": p.ProposalID,
				"reason":     reason,
			})
			rep := e.createObligationLocked(ctx, models.ReportTypeUserFreeze, userID, executor.ActorID, reason, entry.ID)
			rec.ReportID = rep.ReportID

			return map[string]any{"userId": userID, "status": rec.Status, "reportId": rep.ReportID}, nil
		})
}

// UnfreezeUser lifts a governed freeze. A deleted user cannot be unfrozen;
// restore is the only way back from deletion.
func (e *Engine) UnfreezeUser(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	return e.moderateUser(ctx, actor, req, models.ActionUnfreezeUser, "governed user unfreeze",
		func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor, userID, reason string) (map[string]any, error) {
			rec, err := e.repo.GetUserModeration(ctx, userID)
			if err != nil || rec.Status == models.UserActive {
				return nil, errNotFound("user is not frozen")
			}
			if rec.IsDeleted() {
				return nil, E(http.StatusConflict, CodeConflict, "deleted users must be restored, not unfrozen")
			}
			e.setUserStatusLocked(rec, models.UserActive, reason, executor.ActorID)

			e.appendLocked(models.CategoryExecution, models.ActionUserUnfrozen, executor, userID, map[string]any{
				"proposalId": p.ProposalID,
			})
			result := map[string]any{"userId": userID, "status": rec.Status}
			if rep := e.resolveObligationLocked(ctx, executor, models.ReportTypeUserFreeze, userID); rep != nil {
				result["resolvedReportId"] = rep.ReportID
			}
			return result, nil
		})
}

// DeleteUser marks an end user deleted. Deletion implies frozen on every
// read surface, so a frozen user may be deleted directly.
func (e *Engine) DeleteUser(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	return e.moderateUser(ctx, actor, req, models.ActionDeleteUser, "governed user deletion",
		func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor, userID, reason string) (map[string]any, error) {
			rec := e.repo.EnsureUserModeration(ctx, userID)
			if rec.IsDeleted() {
				return map[string]any{"userId": userID, "status": rec.Status, "alreadyDeleted": true}, nil
			}
			e.setUserStatusLocked(rec, models.UserDeleted, reason, executor.ActorID)

			entry := e.appendLocked(models.CategoryExecution, models.ActionUserDeleted, executor, userID, map[string]any{
				"proposalId": p.ProposalID,
				"reason":     reason,
			})
			rep := e.createObligationLocked(ctx, models.ReportTypeUserDeletion, userID, executor.ActorID, reason, entry.ID)
			rec.ReportID = rep.ReportID

			return map[string]any{"userId": userID, "status": rec.Status, "reportId": rep.ReportID}, nil
		})
}

// RestoreUser returns a deleted user to active, resolving the deletion
// obligation. Restoring a merely frozen user is a conflict; unfreeze is the
// matching inverse there.
func (e *Engine) RestoreUser(ctx context.Context, actor models.Actor, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	return e.moderateUser(ctx, actor, req, models.ActionRestoreUser, "governed user restore",
		func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor, userID, reason string) (map[string]any, error) {
			rec, err := e.repo.GetUserModeration(ctx, userID)
			if err != nil || rec.Status == models.UserActive {
				return nil, errNotFound("user is not deleted")
			}
			if !rec.IsDeleted() {
				return nil, E(http.StatusConflict, CodeConflict, "frozen users are unfrozen, not restored")
			}
			e.setUserStatusLocked(rec, models.UserActive, reason, executor.ActorID)

			e.appendLocked(models.CategoryExecution, models.ActionUserRestored, executor, userID, map[string]any{
				"proposalId": p.ProposalID,
			})
			result := map[string]any{"userId": userID, "status": rec.Status}
			if rep := e.resolveObligationLocked(ctx, executor, models.ReportTypeUserDeletion, userID); rep != nil {
				result["resolvedReportId"] = rep.ReportID
			}
			return result, nil
		})
}

type moderationFunc func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor, userID, reason string) (map[string]any, error)

// moderateUser wraps the shared request plumbing of the four user moderation
// actions around the consensus workflow.
func (e *Engine) moderateUser(ctx context.Context, actor models.Actor, req *models.GovernRequest, actionType models.GovernanceActionType, defaultReason string, apply moderationFunc) (*models.GovernanceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, false); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.UserID) == "" {
		return nil, errValidation("userId is required")
	}
	userID := models.NormalizeUserID(req.UserID)

	reason := req.Reason
	if reason == "" {
		reason = defaultReason
	}

	return e.processGovernanceActionLocked(ctx, actor, governedAction{
		actionType: actionType,
		targetID:   userID,
		reason:     reason,
		proposalID: req.ProposalID,
		approvers:  req.RequiredApproverIDs,
		execute: func(ctx context.Context, p *models.GovernanceProposal, executor models.Actor) (map[string]any, error) {
			return apply(ctx, p, executor, userID, reason)
		},
	})
}

func (e *Engine) setUserStatusLocked(rec *models.UserModerationRecord, status models.UserStatus, reason, byActorID string) {
	now := e.now().UTC()
	rec.Status = status
	rec.At = &now
	rec.Reason = reason
	rec.ByActorID = byActorID
	if status == models.UserActive {
		rec.ReportID = ""
	}
}
