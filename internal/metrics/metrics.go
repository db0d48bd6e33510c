package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gate and detector metrics
	AdminActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_admin_actions_total",
			Help: "Total admin actions processed, by action and result",
		},
		[]string{"action", "result"},
	)

	WarningsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_warnings_issued_total",
			Help: "Total anomaly warnings issued",
		},
	)

	FreezesEnforced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_freezes_enforced_total",
			Help: "Total unilateral freezes enforced",
		},
	)

	// Governance metrics
	ProposalsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_proposals_created_total",
			Help: "Total governance proposals created",
		},
	)

	ProposalsApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_proposal_approvals_total",
			Help: "Total approvals recorded on governance proposals",
		},
	)

	ProposalsExecuted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_proposals_executed_total",
			Help: "Total governance proposals executed",
		},
	)

	// Ledger metrics
	LedgerEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_ledger_entries_total",
			Help: "Total ledger entries appended, by category",
		},
		[]string{"category"},
	)

	// Claim metrics
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_claims_total",
			Help: "Total claim attempts, by result",
		},
		[]string{"result"},
	)
)
