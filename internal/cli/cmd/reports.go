package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/we-ne/sentinel/internal/cli/output"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List report obligations",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := newClient(cmd).Reports(status, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch reports: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(resp)
		}

		if len(resp.Items) == 0 {
			output.Info("No report obligations found")
			return nil
		}

		table := output.NewTable([]string{"Report ID", "Type", "Status", "Target", "Created"})
		for _, r := range resp.Items {
			table.AddRow([]string{
				r.ReportID,
				r.Type,
				r.Status,
				r.TargetActorID,
				r.CreatedAt.Format(time.DateOnly),
			})
		}
		table.Render()
		return nil
	},
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List governance proposals",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := newClient(cmd).Proposals()
		if err != nil {
			return fmt.Errorf("failed to fetch proposals: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(items)
		}

		if len(items) == 0 {
			output.Info("No proposals found")
			return nil
		}

		table := output.NewTable([]string{"Proposal ID", "Action", "Target", "Status", "Approvals"})
		for _, p := range items {
			table.AddRow([]string{
				p.ProposalID,
				string(p.ActionType),
				p.TargetID,
				p.Status,
				fmt.Sprintf("%d/%d", p.ApprovedCount, p.RequiredCount),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(proposalsCmd)

	reportsCmd.Flags().String("status", "", "Filter by status (required, resolved)")
	reportsCmd.Flags().IntP("limit", "l", 50, "Maximum reports to fetch")
}
