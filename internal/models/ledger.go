package models

import "time"

// Ledger entry categories.
const (
	CategoryAudit     = "audit"
	CategoryExecution = "execution"
)

// Ledger actions. Audit entries record that something was observed or
// denied; execution entries record a state transition that actually took
// effect.
const (
	ActionSecurityWarningIssued   = "security_warning_issued"
	ActionEventCreationBlocked    = "event_creation_blocked"
	ActionEventCreated            = "event_created"
	ActionEventPauseToggled       = "event_pause_toggled"
	ActionFreezeEnforced          = "freeze_enforced"
	ActionAdminUnlocked           = "admin_unlocked"
	ActionAccessRevoked           = "access_revoked"
	ActionAccessRestored          = "access_restored"
	ActionOperatorRegistered      = "operator_registered"
	ActionOperatorRevoked         = "operator_revoked"
	ActionOperatorRestored        = "operator_restored"
	ActionUserFrozen              = "user_frozen"
	ActionUserUnfrozen            = "user_unfrozen"
	ActionUserDeleted             = "user_deleted"
	ActionUserRestored            = "user_restored"
	ActionReportResolved          = "report_obligation_resolved"
	ActionProposalCreated         = "governance_proposal_created"
	ActionProposalApproved        = "governance_proposal_approved"
	ActionProposalExecuted        = "governance_proposal_executed"
)

// LedgerEntry is one link of the tamper-evident hash chain. EntryHash
// commits to every field plus the previous entry's hash; the genesis entry
// chains from the all-zero hash.
type LedgerEntry struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"ts"`
	Category      string         `json:"category"`
	Action        string         `json:"action"`
	Actor         Actor          `json:"actor"`
	TargetActorID string         `json:"targetActorId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	PrevHash      string         `json:"prevHash"`
	EntryHash     string         `json:"entryHash"`
}
