package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/metrics"
	"github.com/we-ne/sentinel/internal/models"
)

// defaultClaimIntervalDays applies when an event caps claims without naming
// an interval.
const defaultClaimIntervalDays = 30

// CreateEvent is the gated ticket-issuance path: resolve state, enforce the
// freeze/revocation gate, run the anomaly detector, and only then create the
// event. override is the X-Admin-Security-Override: continue signal;
// proceeding with it against an unexpired warning triggers the unilateral
// freeze.
func (e *Engine) CreateEvent(ctx context.Context, actor models.Actor, req *models.CreateEventRequest, userAgent string, override bool) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(req.Title) == "" {
		return nil, errValidation("title is required")
	}
	if req.ClaimIntervalDays < 0 {
		return nil, errValidation("claimIntervalDays must not be negative")
	}

	e.registerOperatorLocked(ctx, actor)
	state := e.repo.EnsureSecurityState(ctx, actor.ActorID)

	if gateErr := e.gateLocked(ctx, state); gateErr != nil {
		metrics.AdminActionsTotal.WithLabelValues("create_event", gateErr.Code).Inc()
		return nil, gateErr
	}

	if w := state.PendingWarning; w != nil {
		if override {
			// Proceeding against an active warning is the one unilateral
			// transition in the engine: freeze immediately, no consensus.
			return nil, e.enforceFreezeLocked(ctx, actor, state, w)
		}
		metrics.AdminActionsTotal.WithLabelValues("create_event", CodeSecurityWarning).Inc()
		e.appendLocked(models.CategoryAudit, models.ActionEventCreationBlocked, actor, "", map[string]any{
			"warningId": w.ID,
		})
		return nil, E(http.StatusConflict, CodeSecurityWarning, "a security warning is pending for this account").
			WithDetails(map[string]any{"warning": w})
	}

	now := e.now()
	signals, attempts := e.detector.Inspect(req.Title, req.Host, userAgent, state.IssueAttempts, now)
	state.IssueAttempts = attempts

	if len(signals) > 0 {
		warning := &models.Warning{
			ID:              newID(),
			IssuedAt:        now.UTC(),
			ExpiresAt:       now.Add(e.warningTTL).UTC(),
			AlertColor:      models.AlertColorRed,
			Signals:         signals,
			FreezeOnProceed: true,
		}
		state.PendingWarning = warning
		metrics.WarningsIssued.Inc()
		metrics.AdminActionsTotal.WithLabelValues("create_event", CodeSecurityWarning).Inc()
		e.appendLocked(models.CategoryAudit, models.ActionSecurityWarningIssued, actor, "", map[string]any{
			"warningId": warning.ID,
			"signals":   signals,
			"title":     req.Title,
		})
		e.logger.WarnContext(ctx, "security warning issued",
			logging.ActorID(actor.ActorID),
			logging.Action(models.ActionSecurityWarningIssued),
		)
		return nil, E(http.StatusConflict, CodeSecurityWarning, "event creation blocked by security warning").
			WithDetails(map[string]any{"warning": warning})
	}

	intervalDays := req.ClaimIntervalDays
	if intervalDays == 0 && req.MaxClaimsPerInterval != nil {
		intervalDays = defaultClaimIntervalDays
	}

	var allowlist []string
	for _, s := range req.AllowedSubjects {
		if s = strings.TrimSpace(s); s != "" {
			allowlist = append(allowlist, s)
		}
	}

	event := &models.Event{
		ID:                   newID(),
		Title:                req.Title,
		Host:                 req.Host,
		CreatedBy:            actor.ActorID,
		CreatedAt:            now.UTC(),
		ClaimIntervalDays:    intervalDays,
		MaxClaimsPerInterval: req.MaxClaimsPerInterval,
		StartAt:              req.StartAt,
		ExpiresAt:            req.ExpiresAt,
		AllowedSubjects:      allowlist,
	}
	if err := e.repo.CreateEvent(ctx, event); err != nil {
		return nil, E(http.StatusConflict, CodeConflict, "event already exists")
	}

	metrics.AdminActionsTotal.WithLabelValues("create_event", "success").Inc()
	e.appendLocked(models.CategoryAudit, models.ActionEventCreated, actor, "", map[string]any{
		"eventId": event.ID,
		"title":   event.Title,
	})
	return event, nil
}

// enforceFreezeLocked applies the unilateral freeze: clear the warning, set
// frozen, ledger the transition, and open the freeze report obligation.
// Always returns the 423 rejection the caller relays.
func (e *Engine) enforceFreezeLocked(ctx context.Context, actor models.Actor, state *models.SecurityState, w *models.Warning) *Error {
	now := e.now().UTC()
	state.PendingWarning = nil
	state.Frozen = &models.FreezeRecord{
		FrozenAt:  now,
		Reason:    "proceeded against active security warning",
		WarningID: w.ID,
	}

	entry := e.appendLocked(models.CategoryExecution, models.ActionFreezeEnforced, actor, actor.ActorID, map[string]any{
		"warningId": w.ID,
		"signals":   w.Signals,
	})
	rep := e.createObligationLocked(ctx, models.ReportTypeFreeze, actor.ActorID, actor.ActorID,
		state.Frozen.Reason, entry.ID)
	state.Frozen.ReportID = rep.ReportID

	metrics.FreezesEnforced.Inc()
	metrics.AdminActionsTotal.WithLabelValues("create_event", CodeAccountFrozen).Inc()
	e.logger.WarnContext(ctx, "freeze enforced",
		logging.ActorID(actor.ActorID),
		logging.ReportID(rep.ReportID),
	)

	return E(http.StatusLocked, CodeAccountFrozen, "account frozen after overriding a security warning")
}

// PauseEvent toggles claiming on an event. Only the creator may pause.
func (e *Engine) PauseEvent(ctx context.Context, actor models.Actor, req *models.PauseEventRequest) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if req.EventID == "" {
		return nil, errValidation("eventId is required")
	}

	event, err := e.repo.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, errNotFound("event not found")
	}
	if event.CreatedBy != actor.ActorID {
		return nil, E(http.StatusForbidden, CodeForbidden, "only the event creator may pause it")
	}

	event.Paused = req.Paused
	e.appendLocked(models.CategoryAudit, models.ActionEventPauseToggled, actor, "", map[string]any{
		"eventId": event.ID,
		"paused":  event.Paused,
	})
	return event, nil
}

// ClaimEvent applies the idempotent-by-window claim limiter. Hitting the cap
// inside the interval reports alreadyJoined with success semantics; it never
// errors and writes no new state.
func (e *Engine) ClaimEvent(ctx context.Context, req *models.ClaimRequest) (*models.ClaimResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if req.EventID == "" || strings.TrimSpace(req.Subject) == "" {
		return nil, errValidation("eventId and subject are required")
	}

	event, err := e.repo.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, errNotFound("event not found")
	}

	now := e.now()
	if event.Paused {
		return nil, E(http.StatusConflict, CodeEventPaused, "event is paused")
	}
	if event.StartAt != nil && now.Before(*event.StartAt) {
		return nil, E(http.StatusConflict, CodeEventNotStarted, "event has not started")
	}
	if event.ExpiresAt != nil && now.After(*event.ExpiresAt) {
		return nil, E(http.StatusConflict, CodeEventExpired, "event has expired")
	}

	subject := strings.TrimSpace(req.Subject)
	if !event.SubjectAllowed(subject) {
		metrics.ClaimsTotal.WithLabelValues(CodeSubjectNotAllowed).Inc()
		return nil, E(http.StatusForbidden, CodeSubjectNotAllowed, "subject is not on the event allowlist")
	}
	if mod, err := e.repo.GetUserModeration(ctx, models.NormalizeUserID(subject)); err == nil && mod.IsFrozen() {
		metrics.ClaimsTotal.WithLabelValues(CodeUserFrozen).Inc()
		return nil, E(http.StatusForbidden, CodeUserFrozen, "subject is frozen by moderation")
	}

	if event.MaxClaimsPerInterval != nil {
		window := time.Duration(event.ClaimIntervalDays) * 24 * time.Hour
		key := event.ID + ":" + subject
		allowed, err := e.claims.Allow(ctx, key, window, *event.MaxClaimsPerInterval)
		if err != nil {
			return nil, E(http.StatusInternalServerError, "claim_window_unavailable", "claim window backend failed")
		}
		if !allowed {
			metrics.ClaimsTotal.WithLabelValues("already_joined").Inc()
			return &models.ClaimResponse{
				Success:       true,
				EventID:       event.ID,
				Subject:       subject,
				AlreadyJoined: true,
			}, nil
		}
	}

	_ = e.repo.AddClaimReceipt(ctx, &models.ClaimReceipt{
		EventID:   event.ID,
		Subject:   subject,
		ClaimedAt: now.UTC(),
	})
	metrics.ClaimsTotal.WithLabelValues("claimed").Inc()

	return &models.ClaimResponse{
		Success: true,
		EventID: event.ID,
		Subject: subject,
	}, nil
}
