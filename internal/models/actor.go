package models

import "strings"

// Role is the privilege level derived from the identity headers.
type Role string

const (
	// RoleAdmin can issue event tickets but cannot initiate or approve
	// governance proposals.
	RoleAdmin Role = "admin"
	// RoleMaster is a governance operator: may request and approve
	// high-impact actions.
	RoleMaster Role = "master"
	// RoleUnknown is any caller without a recognized role header.
	RoleUnknown Role = "unknown"
)

// ParseRole parses the X-Admin-Role header value case-insensitively.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "master":
		return RoleMaster
	default:
		return RoleUnknown
	}
}

// Actor is the resolved identity of a request. ActorID is derived once at
// the boundary and never mutated afterwards.
type Actor struct {
	ActorID string `json:"actorId"`
	Role    Role   `json:"role"`
	AdminID string `json:"adminId,omitempty"`
}

// Authenticated reports whether the actor presented any credential at all.
// IP-derived actors did not; they get 401 on admin surfaces.
func (a Actor) Authenticated() bool {
	return !strings.HasPrefix(a.ActorID, "ip:")
}
