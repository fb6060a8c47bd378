package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the web app API and the claim context",
	Long: `Run the web app liveness probe and a forced claim-context refresh
concurrently and print the combined report as JSON.

Exits non-zero when either probe failed.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	report := newServices().prober().Report(cmd.Context())

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if !report.Healthy() {
		return errors.New("health check failed")
	}
	return nil
}
