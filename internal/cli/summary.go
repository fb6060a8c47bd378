package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <character>",
	Short: "Show a character's XP summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	character := args[0]
	out := cmd.OutOrStdout()

	summary, err := newServices().tracker.GetSummary(cmd.Context(), character)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Fprintf(out, "No summary found for %s.\n", character)
		return nil
	}

	fmt.Fprintln(out, summary.CharacterName)
	fmt.Fprintf(out, "Earned XP: %g\n", summary.EarnedXP)
	fmt.Fprintf(out, "Total XP: %g\n", summary.TotalXP)
	fmt.Fprintf(out, "Total Spends: %g\n", summary.TotalSpends)
	fmt.Fprintf(out, "Available XP: %g\n", summary.AvailableXP)
	return nil
}
