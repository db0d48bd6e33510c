package service

import (
	"context"

	"github.com/we-ne/sentinel/internal/httputil"
	"github.com/we-ne/sentinel/internal/models"
)

// ListReports returns report obligations, newest first, optionally filtered
// by status ("required" or "resolved").
func (e *Engine) ListReports(ctx context.Context, actor models.Actor, status string, limit int) (*models.ReportsResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperatorLocked(ctx, actor, true); err != nil {
		return nil, err
	}

	if status != "" && status != models.ReportRequired && status != models.ReportResolved {
		return nil, errValidation("status must be required or resolved")
	}

	return &models.ReportsResponse{
		Items: e.repo.ListReports(ctx, status, httputil.ClampLimit(limit, 100, 500)),
	}, nil
}
