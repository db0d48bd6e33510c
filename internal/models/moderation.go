package models

import (
	"strings"
	"time"
)

// OperatorRevocation marks an operator as removed from the active community.
type OperatorRevocation struct {
	RevokedAt        time.Time `json:"revokedAt"`
	Reason           string    `json:"reason"`
	RevokedByActorID string    `json:"revokedByActorId,omitempty"`
	ReportID         string    `json:"reportId,omitempty"`
}

// OperatorRecord tracks a master-role actor ever seen by the engine.
type OperatorRecord struct {
	ActorID      string              `json:"actorId"`
	RegisteredAt time.Time           `json:"registeredAt"`
	Revoked      *OperatorRevocation `json:"revoked,omitempty"`
}

// Active reports whether the operator may still request or approve
// governance actions.
func (o *OperatorRecord) Active() bool {
	return o.Revoked == nil
}

// UserStatus is the moderation state of an end user. A single tagged status
// replaces the overlapping frozen/deleted flags: deleted implies frozen on
// every read surface, so there is nothing to keep in sync.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserFrozen  UserStatus = "frozen"
	UserDeleted UserStatus = "deleted"
)

// UserModerationRecord is the moderation state for one end user, keyed by
// the normalized user id.
type UserModerationRecord struct {
	UserID    string     `json:"userId"`
	Status    UserStatus `json:"status"`
	At        *time.Time `json:"at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	ByActorID string     `json:"byActorId,omitempty"`
	ReportID  string     `json:"reportId,omitempty"`
}

// IsFrozen reports whether the user is blocked from claiming. Deletion is
// the stronger state and implies frozen.
func (u *UserModerationRecord) IsFrozen() bool {
	return u.Status == UserFrozen || u.Status == UserDeleted
}

// IsDeleted reports whether the user record has been deleted.
func (u *UserModerationRecord) IsDeleted() bool {
	return u.Status == UserDeleted
}

// NormalizeUserID maps a raw user id onto the moderation namespace. Already
// namespaced ids pass through unchanged.
func NormalizeUserID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if strings.HasPrefix(id, "user:") {
		return id
	}
	return "user:" + id
}
