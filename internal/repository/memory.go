package repository

import (
	"context"
	"sync"

	"github.com/we-ne/sentinel/internal/models"
)

// InMemoryRepository is the default backing store. Maps plus a RWMutex; the
// engine's critical section provides cross-map atomicity per request.
type InMemoryRepository struct {
	states    map[string]*models.SecurityState
	operators map[string]*models.OperatorRecord
	users     map[string]*models.UserModerationRecord
	proposals map[string]*models.GovernanceProposal
	// proposalOrder preserves insertion order for deterministic listings.
	proposalOrder []string
	reports       map[string]*models.ReportObligation
	reportOrder   []string
	events        map[string]*models.Event
	receipts      map[string][]*models.ClaimReceipt
	mu            sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		states:    make(map[string]*models.SecurityState),
		operators: make(map[string]*models.OperatorRecord),
		users:     make(map[string]*models.UserModerationRecord),
		proposals: make(map[string]*models.GovernanceProposal),
		reports:   make(map[string]*models.ReportObligation),
		events:    make(map[string]*models.Event),
		receipts:  make(map[string][]*models.ClaimReceipt),
	}
}

func (r *InMemoryRepository) EnsureSecurityState(ctx context.Context, actorID string) *models.SecurityState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.states[actorID]; ok {
		return s
	}
	s := &models.SecurityState{ActorID: actorID}
	r.states[actorID] = s
	return s
}

func (r *InMemoryRepository) GetSecurityState(ctx context.Context, actorID string) (*models.SecurityState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.states[actorID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *InMemoryRepository) ListSecurityStates(ctx context.Context) []*models.SecurityState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.SecurityState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s)
	}
	return out
}

func (r *InMemoryRepository) GetOperator(ctx context.Context, actorID string) (*models.OperatorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.operators[actorID]
	if !ok {
		return nil, ErrNotFound
	}
	return op, nil
}

func (r *InMemoryRepository) UpsertOperator(ctx context.Context, op *models.OperatorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.operators[op.ActorID] = op
	return nil
}

func (r *InMemoryRepository) ListOperators(ctx context.Context) []*models.OperatorRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.OperatorRecord, 0, len(r.operators))
	for _, op := range r.operators {
		out = append(out, op)
	}
	return out
}

func (r *InMemoryRepository) ActiveOperatorIDs(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.operators))
	for id, op := range r.operators {
		if op.Active() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *InMemoryRepository) EnsureUserModeration(ctx context.Context, userID string) *models.UserModerationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		return u
	}
	u := &models.UserModerationRecord{UserID: userID, Status: models.UserActive}
	r.users[userID] = u
	return u
}

func (r *InMemoryRepository) GetUserModeration(ctx context.Context, userID string) (*models.UserModerationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *InMemoryRepository) ListUserModeration(ctx context.Context) []*models.UserModerationRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.UserModerationRecord, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

func (r *InMemoryRepository) CreateProposal(ctx context.Context, p *models.GovernanceProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.proposals[p.ProposalID] = p
	r.proposalOrder = append(r.proposalOrder, p.ProposalID)
	return nil
}

func (r *InMemoryRepository) GetProposal(ctx context.Context, proposalID string) (*models.GovernanceProposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[proposalID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) PendingProposals(ctx context.Context, actionType models.GovernanceActionType, targetID string) []*models.GovernanceProposal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.GovernanceProposal
	for _, id := range r.proposalOrder {
		p := r.proposals[id]
		if p.Status == models.ProposalPending && p.ActionType == actionType && p.TargetID == targetID {
			out = append(out, p)
		}
	}
	return out
}

func (r *InMemoryRepository) ListProposals(ctx context.Context) []*models.GovernanceProposal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.GovernanceProposal, 0, len(r.proposalOrder))
	for _, id := range r.proposalOrder {
		out = append(out, r.proposals[id])
	}
	return out
}

func (r *InMemoryRepository) CreateReport(ctx context.Context, rep *models.ReportObligation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[rep.ReportID] = rep
	r.reportOrder = append(r.reportOrder, rep.ReportID)
	return nil
}

func (r *InMemoryRepository) GetReport(ctx context.Context, reportID string) (*models.ReportObligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[reportID]
	if !ok {
		return nil, ErrNotFound
	}
	return rep, nil
}

func (r *InMemoryRepository) FindRequiredReport(ctx context.Context, reportType, targetActorID string) (*models.ReportObligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first so the most recent open obligation wins.
	for i := len(r.reportOrder) - 1; i >= 0; i-- {
		rep := r.reports[r.reportOrder[i]]
		if rep.Status == models.ReportRequired && rep.Type == reportType && rep.TargetActorID == targetActorID {
			return rep, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) ListReports(ctx context.Context, status string, limit int) []*models.ReportObligation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.ReportObligation, 0, limit)
	for i := len(r.reportOrder) - 1; i >= 0 && len(out) < limit; i-- {
		rep := r.reports[r.reportOrder[i]]
		if status != "" && rep.Status != status {
			continue
		}
		out = append(out, rep)
	}
	return out
}

func (r *InMemoryRepository) CreateEvent(ctx context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[e.ID]; exists {
		return ErrEventExists
	}
	r.events[e.ID] = e
	return nil
}

func (r *InMemoryRepository) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (r *InMemoryRepository) AddClaimReceipt(ctx context.Context, rec *models.ClaimReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.receipts[rec.EventID] = append(r.receipts[rec.EventID], rec)
	return nil
}

func (r *InMemoryRepository) ListClaimReceipts(ctx context.Context, eventID string) []*models.ClaimReceipt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*models.ClaimReceipt(nil), r.receipts[eventID]...)
}
