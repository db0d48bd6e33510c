package logging

import "log/slog"

// Common field names so log lines stay greppable across the engine.
const (
	FieldService  = "service"
	FieldActorID  = "actor_id"
	FieldRole     = "role"
	FieldTargetID = "target_id"
	FieldAction   = "action"
	FieldProposal = "proposal_id"
	FieldReport   = "report_id"
	FieldEventID  = "event_id"
	FieldIP       = "ip"
	FieldError    = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// ActorID returns a slog attribute for the acting identity.
func ActorID(id string) slog.Attr {
	return slog.String(FieldActorID, id)
}

// Role returns a slog attribute for the actor role.
func Role(role string) slog.Attr {
	return slog.String(FieldRole, role)
}

// TargetID returns a slog attribute for the target of an action.
func TargetID(id string) slog.Attr {
	return slog.String(FieldTargetID, id)
}

// Action returns a slog attribute for a security action name.
func Action(action string) slog.Attr {
	return slog.String(FieldAction, action)
}

// ProposalID returns a slog attribute for a governance proposal id.
func ProposalID(id string) slog.Attr {
	return slog.String(FieldProposal, id)
}

// ReportID returns a slog attribute for a report obligation id.
func ReportID(id string) slog.Attr {
	return slog.String(FieldReport, id)
}

// EventID returns a slog attribute for an event id.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// IP returns a slog attribute for a client IP.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
