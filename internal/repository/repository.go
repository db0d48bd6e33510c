package repository

import (
	"context"
	"errors"

	"github.com/we-ne/sentinel/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEventExists = errors.New("event already exists")
)

// Repository owns the engine's mutable state maps. Everything is created
// lazily on first reference and lives for the process lifetime; callers
// serialize full request chains through the engine's critical section, the
// repository's own locking only protects direct reads.
type Repository interface {
	// Security states
	EnsureSecurityState(ctx context.Context, actorID string) *models.SecurityState
	GetSecurityState(ctx context.Context, actorID string) (*models.SecurityState, error)
	ListSecurityStates(ctx context.Context) []*models.SecurityState

	// Operator community
	GetOperator(ctx context.Context, actorID string) (*models.OperatorRecord, error)
	UpsertOperator(ctx context.Context, op *models.OperatorRecord) error
	ListOperators(ctx context.Context) []*models.OperatorRecord
	ActiveOperatorIDs(ctx context.Context) []string

	// User moderation
	EnsureUserModeration(ctx context.Context, userID string) *models.UserModerationRecord
	GetUserModeration(ctx context.Context, userID string) (*models.UserModerationRecord, error)
	ListUserModeration(ctx context.Context) []*models.UserModerationRecord

	// Governance proposals
	CreateProposal(ctx context.Context, p *models.GovernanceProposal) error
	GetProposal(ctx context.Context, proposalID string) (*models.GovernanceProposal, error)
	PendingProposals(ctx context.Context, actionType models.GovernanceActionType, targetID string) []*models.GovernanceProposal
	ListProposals(ctx context.Context) []*models.GovernanceProposal

	// Report obligations
	CreateReport(ctx context.Context, r *models.ReportObligation) error
	GetReport(ctx context.Context, reportID string) (*models.ReportObligation, error)
	FindRequiredReport(ctx context.Context, reportType, targetActorID string) (*models.ReportObligation, error)
	ListReports(ctx context.Context, status string, limit int) []*models.ReportObligation

	// Events and claim receipts
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	AddClaimReceipt(ctx context.Context, r *models.ClaimReceipt) error
	ListClaimReceipts(ctx context.Context, eventID string) []*models.ClaimReceipt
}

// LedgerArchive mirrors ledger entries into durable storage. The in-memory
// chain stays authoritative; the archive is write-behind.
type LedgerArchive interface {
	ArchiveEntry(ctx context.Context, entry *models.LedgerEntry) error
	Close()
}
