package models

import (
	"strings"
	"time"
)

// Event is a check-in event whose tickets the engine gates. Claim interval
// fields drive the idempotent-by-window claim limiter; pause, the
// start/expiry bounds, and the optional subject allowlist gate claims
// before the window is consulted.
type Event struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Host                 string     `json:"host"`
	CreatedBy            string     `json:"createdBy"`
	CreatedAt            time.Time  `json:"createdAt"`
	ClaimIntervalDays    int        `json:"claimIntervalDays"`
	MaxClaimsPerInterval *int       `json:"maxClaimsPerInterval"`
	Paused               bool       `json:"paused"`
	StartAt              *time.Time `json:"startAt,omitempty"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
	AllowedSubjects      []string   `json:"allowedSubjects,omitempty"`
}

// SubjectAllowed reports whether the subject may claim. An empty allowlist
// admits everyone; the allowlist is opt-in per event.
func (e *Event) SubjectAllowed(subject string) bool {
	if len(e.AllowedSubjects) == 0 {
		return true
	}
	for _, s := range e.AllowedSubjects {
		if strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}

// ClaimReceipt records one successful claim by a subject.
type ClaimReceipt struct {
	EventID   string    `json:"eventId"`
	Subject   string    `json:"subject"`
	ClaimedAt time.Time `json:"claimedAt"`
}
