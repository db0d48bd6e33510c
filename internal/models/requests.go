package models

import "time"

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title                string     `json:"title"`
	Host                 string     `json:"host"`
	ClaimIntervalDays    int        `json:"claimIntervalDays"`
	MaxClaimsPerInterval *int       `json:"maxClaimsPerInterval"`
	StartAt              *time.Time `json:"startAt,omitempty"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
	AllowedSubjects      []string   `json:"allowedSubjects,omitempty"`
}

// ClaimRequest is the body of POST /events/claim. Subject is the claim
// identity key (wallet address or join token).
type ClaimRequest struct {
	EventID string `json:"eventId"`
	Subject string `json:"subject"`
}

// ClaimResponse reports the window outcome. AlreadyJoined is a success, not
// an error: claims are idempotent-by-window.
type ClaimResponse struct {
	Success       bool   `json:"success"`
	EventID       string `json:"eventId"`
	Subject       string `json:"subject"`
	AlreadyJoined bool   `json:"alreadyJoined"`
}

// PauseEventRequest toggles claiming on an event.
type PauseEventRequest struct {
	EventID string `json:"eventId"`
	Paused  bool   `json:"paused"`
}

// GovernRequest is the shared body of the governed admin endpoints. Exactly
// one of TargetActorID / TargetOperatorActorID / UserID is used depending on
// the endpoint; ProposalID submits an approval against an in-flight
// proposal; RequiredApproverIDs optionally overrides the default approver
// snapshot at creation time.
type GovernRequest struct {
	TargetActorID         string   `json:"targetActorId,omitempty"`
	TargetOperatorActorID string   `json:"targetOperatorActorId,omitempty"`
	UserID                string   `json:"userId,omitempty"`
	Reason                string   `json:"reason,omitempty"`
	ProposalID            string   `json:"proposalId,omitempty"`
	RequiredApproverIDs   []string `json:"requiredApproverIds,omitempty"`
}

// GovernanceResponse is returned by every governed endpoint: 202 while
// consensus is pending, 200 once executed (or replayed).
type GovernanceResponse struct {
	Success         bool           `json:"success"`
	Status          string         `json:"status"`
	AlreadyExecuted bool           `json:"alreadyExecuted,omitempty"`
	Proposal        *ProposalView  `json:"proposal"`
	Result          map[string]any `json:"result,omitempty"`
}

// Pending reports whether the proposal is still waiting on approvers.
func (g *GovernanceResponse) Pending() bool {
	return g.Status == "pending_consensus"
}

// FreezeStatusResponse is the admin security dashboard payload.
type FreezeStatusResponse struct {
	Frozen    []*SecurityState        `json:"frozen"`
	Warned    []*SecurityState        `json:"warned"`
	Revoked   []*SecurityState        `json:"revoked"`
	Operators []*OperatorRecord       `json:"operators"`
	Users     []*UserModerationRecord `json:"users"`
}

// LogsResponse is the ledger read payload.
type LogsResponse struct {
	Items         []*LedgerEntry `json:"items"`
	ChainLastHash string         `json:"chainLastHash"`
}

// ReportsResponse is the report obligation read payload.
type ReportsResponse struct {
	Items []*ReportObligation `json:"items"`
}

// TokenRequest mints an operator JWT for CLI use. ActorID, when set, must
// match the calling actor; tokens are never minted for someone else.
type TokenRequest struct {
	ActorID string `json:"actorId,omitempty"`
	Role    string `json:"role,omitempty"`
	TTL     string `json:"ttl,omitempty"`
}

// TokenResponse carries the minted operator token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ActorID   string    `json:"actorId"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
