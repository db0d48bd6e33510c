package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/we-ne/sentinel/internal/cli/output"
	"github.com/we-ne/sentinel/internal/models"
)

// governEndpoints maps the action subcommand to its engine path and the
// request field carrying the target.
var governEndpoints = map[string]struct {
	path   string
	target string // "actor", "operator", or "user"
}{
	"unlock":           {"/admin/security/unlock", "actor"},
	"revoke-access":    {"/admin/security/revoke-access", "actor"},
	"restore-access":   {"/admin/security/restore-access", "actor"},
	"revoke-operator":  {"/admin/security/operator/revoke", "operator"},
	"restore-operator": {"/admin/security/operator/restore", "operator"},
	"freeze-user":      {"/admin/security/users/freeze", "user"},
	"unfreeze-user":    {"/admin/security/users/unfreeze", "user"},
	"delete-user":      {"/admin/security/users/delete", "user"},
	"restore-user":     {"/admin/security/users/restore", "user"},
}

var governCmd = &cobra.Command{
	Use:   "govern [action] [target]",
	Short: "Request or approve a governed action",
	Long: `Request a governed action or approve an in-flight proposal.

Actions: unlock, revoke-access, restore-access, revoke-operator,
restore-operator, freeze-user, unfreeze-user, delete-user, restore-user.

The first call creates a proposal and records your approval; repeat the
call with --proposal to add approvals from other operators. The action
executes once every required approver has approved.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, target := args[0], args[1]
		ep, ok := governEndpoints[action]
		if !ok {
			return fmt.Errorf("unknown action %q", action)
		}

		reason, _ := cmd.Flags().GetString("reason")
		proposalID, _ := cmd.Flags().GetString("proposal")

		req := &models.GovernRequest{Reason: reason, ProposalID: proposalID}
		switch ep.target {
		case "actor":
			req.TargetActorID = target
		case "operator":
			req.TargetOperatorActorID = target
		case "user":
			req.UserID = target
		}

		resp, err := newClient(cmd).Govern(ep.path, req)
		if err != nil {
			return fmt.Errorf("governed action failed: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(resp)
		}

		p := resp.Proposal
		switch {
		case resp.AlreadyExecuted:
			output.Info("Proposal %s was already executed", p.ProposalID)
		case resp.Pending():
			output.Info("Consensus pending: %d/%d approvals", p.ApprovedCount, p.RequiredCount)
			output.Info("Proposal ID: %s", p.ProposalID)
			output.Info("Missing approvers: %v", p.MissingApprovers)
		default:
			output.Success("Action %s executed on %s", action, target)
			output.Info("Proposal ID: %s", p.ProposalID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(governCmd)

	governCmd.Flags().StringP("reason", "r", "", "Reason recorded on the proposal and ledger")
	governCmd.Flags().StringP("proposal", "p", "", "Approve an existing proposal by ID")
}
