package models

import "time"

// Alert colors for anomaly warnings. Only red is issued today; the field is
// kept so the UI contract doesn't change if softer tiers are added.
const AlertColorRed = "red"

// Anomaly signal names attached to warnings.
const (
	SignalSuspiciousKeyword  = "suspicious_keyword"
	SignalBotLikeUserAgent   = "bot_like_user_agent"
	SignalRapidIssueAttempts = "rapid_issue_attempts"
)

// Warning is an unresolved anomaly flag on an actor. It expires silently
// once ExpiresAt has passed; proceeding against an unexpired warning with an
// explicit override triggers the unilateral freeze.
type Warning struct {
	ID              string    `json:"id"`
	IssuedAt        time.Time `json:"issuedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
	AlertColor      string    `json:"alertColor"`
	Signals         []string  `json:"signals"`
	FreezeOnProceed bool      `json:"freezeOnProceed"`
}

// Expired reports whether the warning TTL has passed at the given instant.
func (w *Warning) Expired(now time.Time) bool {
	return now.After(w.ExpiresAt)
}

// FreezeRecord marks an actor as frozen pending a governed unlock.
type FreezeRecord struct {
	FrozenAt  time.Time `json:"frozenAt"`
	Reason    string    `json:"reason"`
	WarningID string    `json:"warningId,omitempty"`
	ReportID  string    `json:"reportId,omitempty"`
}

// RevocationRecord marks an actor's admin access as revoked pending a
// governed restore. Revocation and freeze are mutually exclusive; setting
// one clears the other.
type RevocationRecord struct {
	RevokedAt time.Time `json:"revokedAt"`
	Reason    string    `json:"reason"`
	ReportID  string    `json:"reportId,omitempty"`
}

// SecurityState is the per-actor mutable security record, created lazily on
// first reference and kept for the process lifetime.
type SecurityState struct {
	ActorID        string            `json:"actorId"`
	IssueAttempts  []time.Time       `json:"-"`
	PendingWarning *Warning          `json:"pendingWarning,omitempty"`
	Frozen         *FreezeRecord     `json:"frozen,omitempty"`
	Revoked        *RevocationRecord `json:"revokedAccess,omitempty"`
}
