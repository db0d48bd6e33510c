// Package service implements the Admin Security & Governance Consensus
// Engine: anomaly gating on ticket issuance, unilateral freeze, unanimous
// multi-operator governance for every other high-impact action, the
// hash-chained ledger, and report obligations.
package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/we-ne/sentinel/internal/anomaly"
	"github.com/we-ne/sentinel/internal/ledger"
	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/metrics"
	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/internal/ratelimit"
	"github.com/we-ne/sentinel/internal/repository"
)

// DefaultWarningTTL is how long an unresolved anomaly warning stays armed.
const DefaultWarningTTL = 120 * time.Second

// Engine is the security/governance core. Every request's full mutation
// chain (gate, detect, execute, ledger append, obligation updates) runs
// inside one critical section, preserving the reference run-to-completion
// model; stores keep their own locks only for direct reads.
type Engine struct {
	mu       sync.Mutex
	repo     repository.Repository
	ledger   *ledger.Ledger
	detector *anomaly.Detector
	claims   ratelimit.ClaimWindow
	logger   *logging.Logger

	warningTTL time.Duration
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithWarningTTL overrides the warning lifetime.
func WithWarningTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.warningTTL = ttl }
}

// WithDetector overrides the anomaly detector.
func WithDetector(d *anomaly.Detector) Option {
	return func(e *Engine) { e.detector = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(repo repository.Repository, led *ledger.Ledger, claims ratelimit.ClaimWindow, logger *logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo:       repo,
		ledger:     led,
		detector:   anomaly.NewDetector(),
		claims:     claims,
		logger:     logger,
		warningTTL: DefaultWarningTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ledger exposes the chain for read endpoints.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

func newID() string {
	id, _ := uuid.NewV7()
	return id.String()
}

// appendLocked writes the next ledger entry. Callers hold e.mu.
func (e *Engine) appendLocked(category, action string, actor models.Actor, targetActorID string, details map[string]any) *models.LedgerEntry {
	entry := e.ledger.Append(category, action, actor, targetActorID, details)
	metrics.LedgerEntries.WithLabelValues(category).Inc()
	return entry
}

// registerOperatorLocked adds a master-role actor to the operator community
// on first sight. Revoked operators are never reactivated here.
func (e *Engine) registerOperatorLocked(ctx context.Context, actor models.Actor) {
	if actor.Role != models.RoleMaster || !actor.Authenticated() {
		return
	}
	if _, err := e.repo.GetOperator(ctx, actor.ActorID); err == nil {
		return
	}
	op := &models.OperatorRecord{
		ActorID:      actor.ActorID,
		RegisteredAt: e.now().UTC(),
	}
	_ = e.repo.UpsertOperator(ctx, op)
	e.appendLocked(models.CategoryAudit, models.ActionOperatorRegistered, actor, actor.ActorID, nil)
	e.logger.InfoContext(ctx, "operator registered", logging.ActorID(actor.ActorID))
}

// gateLocked enforces the freeze/revocation gate, in that order, and prunes
// an expired warning as a side effect.
func (e *Engine) gateLocked(ctx context.Context, state *models.SecurityState) *Error {
	if state.Revoked != nil {
		return E(http.StatusForbidden, CodeAccessRevoked, "admin access has been revoked")
	}
	if state.Frozen != nil {
		return E(http.StatusLocked, CodeAccountFrozen, "account is frozen pending governed unlock")
	}
	if state.PendingWarning != nil && state.PendingWarning.Expired(e.now()) {
		state.PendingWarning = nil
	}
	return nil
}

// requireOperatorLocked authorizes access to the operator surfaces.
// readOnly grants admin-role actors the status/read endpoints; governed
// mutations always demand an active master whose own account clears the
// freeze/revocation gate. A frozen or revoked caller cannot initiate or
// approve governance, so their approvals never count toward unanimity.
func (e *Engine) requireOperatorLocked(ctx context.Context, actor models.Actor, readOnly bool) *Error {
	if !actor.Authenticated() {
		return errUnauthorized()
	}
	if op, err := e.repo.GetOperator(ctx, actor.ActorID); err == nil && !op.Active() {
		return E(http.StatusForbidden, CodeOperatorRevoked, "operator has been revoked")
	}
	if !readOnly {
		if state, err := e.repo.GetSecurityState(ctx, actor.ActorID); err == nil {
			if gateErr := e.gateLocked(ctx, state); gateErr != nil {
				return gateErr
			}
		}
	}
	switch actor.Role {
	case models.RoleMaster:
		e.registerOperatorLocked(ctx, actor)
		return nil
	case models.RoleAdmin:
		if readOnly {
			return nil
		}
		return E(http.StatusForbidden, CodeConsensusRequired, "governed actions require an operator of the community")
	default:
		return E(http.StatusForbidden, CodeForbidden, "operator role required")
	}
}

// createObligationLocked opens a report obligation for a disclosure-worthy
// action.
func (e *Engine) createObligationLocked(ctx context.Context, reportType, targetActorID, actionBy, reason, logEntryID string) *models.ReportObligation {
	rep := &models.ReportObligation{
		ReportID:        newID(),
		Type:            reportType,
		Status:          models.ReportRequired,
		TargetActorID:   targetActorID,
		ActionByActorID: actionBy,
		Reason:          reason,
		CreatedAt:       e.now().UTC(),
		LogEntryID:      logEntryID,
	}
	_ = e.repo.CreateReport(ctx, rep)
	return rep
}

// resolveObligationLocked resolves the newest open obligation of the given
// type for the target. Resolving when none is open is a no-op; resolving an
// already-resolved obligation never errors.
func (e *Engine) resolveObligationLocked(ctx context.Context, actor models.Actor, reportType, targetActorID string) *models.ReportObligation {
	rep, err := e.repo.FindRequiredReport(ctx, reportType, targetActorID)
	if err != nil {
		return nil
	}
	now := e.now().UTC()
	rep.Status = models.ReportResolved
	rep.ResolvedAt = &now
	rep.ResolvedByActorID = actor.ActorID
	e.appendLocked(models.CategoryAudit, models.ActionReportResolved, actor, targetActorID, map[string]any{
		"reportId":   rep.ReportID,
		"reportType": rep.Type,
	})
	return rep
}
