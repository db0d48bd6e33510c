package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/we-ne/sentinel/internal/cli/output"
	"github.com/we-ne/sentinel/internal/models"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator JWT",
	Long:  "Mint an operator JWT for your own identity (master credentials required).",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("token-role")
		ttl, _ := cmd.Flags().GetString("ttl")

		resp, err := newClient(cmd).MintToken(&models.TokenRequest{
			Role: role,
			TTL:  ttl,
		})
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(resp)
		}

		output.Success("Token minted for %s (role %s)", resp.ActorID, resp.Role)
		output.Info("Expires: %s", resp.ExpiresAt.Format("2006-01-02 15:04:05"))
		output.Info("%s", resp.Token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("token-role", "", "Role claim (defaults to the caller's role)")
	tokenCmd.Flags().String("ttl", "", "Token lifetime, e.g. 12h")
}
