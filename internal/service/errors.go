package service

import "net/http"

// Stable error codes returned in the "code" field of every error body.
// Clients branch on these, never on messages.
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeConsensusRequired = "operator_consensus_required"
	CodeOperatorRevoked   = "operator_revoked"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeProposalMismatch  = "proposal_mismatch"
	CodeLastOperator      = "last_operator"
	CodeSelfRevocation    = "self_revocation"
	CodeSecurityWarning   = "security_warning"
	CodeAccountFrozen     = "account_frozen"
	CodeAccessRevoked     = "access_revoked"
	CodeUserFrozen        = "user_frozen"
	CodeSubjectNotAllowed = "subject_not_allowed"
	CodeEventPaused       = "event_paused"
	CodeEventNotStarted   = "event_not_started"
	CodeEventExpired      = "event_expired"
)

// Error is the engine's typed failure: an HTTP status, a stable code, and a
// human-readable message. Optional Details are merged into the error body
// (e.g. the warning payload on a security_warning rejection).
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// E builds a typed engine error.
func E(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// WithDetails attaches extra response fields to the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func errValidation(message string) *Error {
	return E(http.StatusBadRequest, CodeValidation, message)
}

func errUnauthorized() *Error {
	return E(http.StatusUnauthorized, CodeUnauthorized, "missing credentials")
}

func errNotFound(message string) *Error {
	return E(http.StatusNotFound, CodeNotFound, message)
}
