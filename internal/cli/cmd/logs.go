package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/we-ne/sentinel/internal/cli/output"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Read the hash-chained ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := newClient(cmd).Logs(category, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch ledger: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(resp)
		}

		if len(resp.Items) == 0 {
			output.Info("Ledger is empty")
			return nil
		}

		table := output.NewTable([]string{"Timestamp", "Category", "Action", "Actor", "Target"})
		for _, e := range resp.Items {
			table.AddRow([]string{
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Category,
				e.Action,
				e.Actor.ActorID,
				e.TargetActorID,
			})
		}
		table.Render()
		output.Info("\nChain head: %s", resp.ChainLastHash)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the ledger hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newClient(cmd).VerifyLedger()
		if err != nil {
			return fmt.Errorf("failed to verify ledger: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(result)
		}

		if valid, _ := result["valid"].(bool); valid {
			output.Success("Chain intact (%v entries, head %v)", result["entries"], result["chainLastHash"])
			return nil
		}
		output.Error("Chain broken: %v", result["error"])
		return fmt.Errorf("ledger verification failed")
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(verifyCmd)

	logsCmd.Flags().StringP("category", "c", "", "Filter by category (audit, execution)")
	logsCmd.Flags().IntP("limit", "l", 50, "Maximum entries to fetch")
}
