package models

import "time"

// Report obligation types, one per disclosure-worthy action.
const (
	ReportTypeFreeze             = "freeze"
	ReportTypeAccessRevocation   = "access_revocation"
	ReportTypeOperatorRevocation = "operator_revocation"
	ReportTypeUserFreeze         = "user_freeze"
	ReportTypeUserDeletion       = "user_deletion"
)

// Report obligation statuses.
const (
	ReportRequired = "required"
	ReportResolved = "resolved"
)

// ReportObligation is a disclosure record decoupling "action taken" from
// "action accounted for". It is created by freeze/revoke style actions and
// resolved only by the matching inverse action.
type ReportObligation struct {
	ReportID          string     `json:"reportId"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	TargetActorID     string     `json:"targetActorId"`
	ActionByActorID   string     `json:"actionByActorId"`
	Reason            string     `json:"reason"`
	CreatedAt         time.Time  `json:"createdAt"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	ResolvedByActorID string     `json:"resolvedByActorId,omitempty"`
	LogEntryID        string     `json:"logEntryId"`
}
