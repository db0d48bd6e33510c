package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/we-ne/sentinel/internal/cli/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show freeze status and the operator community",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient(cmd).FreezeStatus()
		if err != nil {
			return fmt.Errorf("failed to fetch freeze status: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(resp)
		}

		output.Info("Frozen: %d  Warned: %d  Revoked: %d", len(resp.Frozen), len(resp.Warned), len(resp.Revoked))

		for _, s := range resp.Frozen {
			output.Info("  frozen  %s (%s)", s.ActorID, s.Frozen.Reason)
		}
		for _, s := range resp.Revoked {
			output.Info("  revoked %s (%s)", s.ActorID, s.Revoked.Reason)
		}
		for _, s := range resp.Warned {
			output.Info("  warned  %s (signals: %v)", s.ActorID, s.PendingWarning.Signals)
		}

		if len(resp.Operators) > 0 {
			output.Info("\nOperators:")
			table := output.NewTable([]string{"Actor ID", "Registered", "State"})
			for _, op := range resp.Operators {
				state := "active"
				if op.Revoked != nil {
					state = "revoked"
				}
				table.AddRow([]string{op.ActorID, op.RegisteredAt.Format(time.DateOnly), state})
			}
			table.Render()
		}

		if len(resp.Users) > 0 {
			output.Info("\nModerated users:")
			table := output.NewTable([]string{"User ID", "Status", "Reason"})
			for _, u := range resp.Users {
				table.AddRow([]string{u.UserID, string(u.Status), u.Reason})
			}
			table.Render()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
