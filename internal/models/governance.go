package models

import (
	"sort"
	"time"
)

// GovernanceActionType enumerates the high-impact actions that only take
// effect after unanimous operator approval.
type GovernanceActionType string

const (
	ActionUnlockAdmin         GovernanceActionType = "unlock_admin"
	ActionRevokeAdminAccess   GovernanceActionType = "revoke_admin_access"
	ActionRestoreAdminAccess  GovernanceActionType = "restore_admin_access"
	ActionRevokeOperator      GovernanceActionType = "revoke_operator"
	ActionRestoreOperator     GovernanceActionType = "restore_operator"
	ActionFreezeUser          GovernanceActionType = "freeze_user"
	ActionUnfreezeUser        GovernanceActionType = "unfreeze_user"
	ActionDeleteUser          GovernanceActionType = "delete_user"
	ActionRestoreUser         GovernanceActionType = "restore_user"
)

// Proposal statuses. The only legal transition is pending -> executed.
const (
	ProposalPending  = "pending"
	ProposalExecuted = "executed"
)

// Approval records one operator's consent on a proposal.
type Approval struct {
	ActorID    string    `json:"actorId"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// GovernanceProposal is a pending high-impact action awaiting unanimous
// consent. RequiredApproverIDs is snapshotted at creation time: operators
// registered or revoked afterwards do not change an open proposal.
type GovernanceProposal struct {
	ProposalID          string               `json:"proposalId"`
	ActionType          GovernanceActionType `json:"actionType"`
	TargetID            string               `json:"targetId"`
	Reason              string               `json:"reason"`
	CreatedAt           time.Time            `json:"createdAt"`
	RequestedByActorID  string               `json:"requestedByActorId"`
	RequiredApproverIDs []string             `json:"requiredApproverIds"`
	Approvals           []Approval           `json:"approvals"`
	Status              string               `json:"status"`
	ExecutedAt          *time.Time           `json:"executedAt,omitempty"`
	ExecutedByActorID   string               `json:"executedByActorId,omitempty"`
}

// NormalizeApprovers sorts and dedupes an approver id list so proposal
// comparisons and snapshots are stable.
func NormalizeApprovers(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SameApprovers reports whether a normalized approver list matches the
// proposal's snapshot.
func (p *GovernanceProposal) SameApprovers(ids []string) bool {
	if len(ids) != len(p.RequiredApproverIDs) {
		return false
	}
	for i, id := range ids {
		if p.RequiredApproverIDs[i] != id {
			return false
		}
	}
	return true
}

// IsRequiredApprover reports whether the actor is in the approver snapshot.
func (p *GovernanceProposal) IsRequiredApprover(actorID string) bool {
	for _, id := range p.RequiredApproverIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// HasApproval reports whether the actor has already approved.
func (p *GovernanceProposal) HasApproval(actorID string) bool {
	for _, a := range p.Approvals {
		if a.ActorID == actorID {
			return true
		}
	}
	return false
}

// MissingApprovers returns the required approvers who have not approved yet.
func (p *GovernanceProposal) MissingApprovers() []string {
	missing := make([]string, 0, len(p.RequiredApproverIDs))
	for _, id := range p.RequiredApproverIDs {
		if !p.HasApproval(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// Unanimous reports whether every required approver has approved.
func (p *GovernanceProposal) Unanimous() bool {
	return len(p.MissingApprovers()) == 0
}

// ProposalView is the client-facing projection of a proposal returned by
// every governance endpoint.
type ProposalView struct {
	ProposalID       string               `json:"proposalId"`
	ActionType       GovernanceActionType `json:"actionType"`
	TargetID         string               `json:"targetId"`
	Reason           string               `json:"reason"`
	Status           string               `json:"status"`
	ApprovedCount    int                  `json:"approvedCount"`
	RequiredCount    int                  `json:"requiredCount"`
	MissingApprovers []string             `json:"missingApprovers"`
	Approvals        []Approval           `json:"approvals"`
	CreatedAt        time.Time            `json:"createdAt"`
	ExecutedAt       *time.Time           `json:"executedAt,omitempty"`
}

// View builds the client projection of the proposal.
func (p *GovernanceProposal) View() *ProposalView {
	return &ProposalView{
		ProposalID:       p.ProposalID,
		ActionType:       p.ActionType,
		TargetID:         p.TargetID,
		Reason:           p.Reason,
		Status:           p.Status,
		ApprovedCount:    len(p.Approvals),
		RequiredCount:    len(p.RequiredApproverIDs),
		MissingApprovers: p.MissingApprovers(),
		Approvals:        append([]Approval(nil), p.Approvals...),
		CreatedAt:        p.CreatedAt,
		ExecutedAt:       p.ExecutedAt,
	}
}
