// Package cmd implements the sentinelctl command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/we-ne/sentinel/internal/cli/client"
)

var rootCmd = &cobra.Command{
	Use:   "sentinelctl",
	Short: "Sentinel governance engine CLI",
	Long: `sentinelctl is the command-line interface for the sentinel admin
security and governance engine.

Inspect freeze status, read the hash-chained ledger, track report
obligations, and drive governed actions through operator consensus.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8086", "engine base URL")
	rootCmd.PersistentFlags().String("token", "", "operator JWT (Authorization: Bearer)")
	rootCmd.PersistentFlags().String("admin-id", "", "admin identity header (X-Admin-Id)")
	rootCmd.PersistentFlags().String("role", "", "role header (X-Admin-Role: admin or master)")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

// newClient builds an engine client from the persistent flags.
func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	adminID, _ := cmd.Flags().GetString("admin-id")
	role, _ := cmd.Flags().GetString("role")

	return client.New(server, client.Identity{
		Token:   token,
		AdminID: adminID,
		Role:    role,
	})
}

func jsonOutput(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}
