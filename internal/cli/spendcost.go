package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xpbridge/internal/model"
	"github.com/ppiankov/xpbridge/internal/xprules"
)

var (
	costCategory string
	costCurrent  int
	costNew      int
	costClaimed  int
)

var spendCostCmd = &cobra.Command{
	Use:   "spend-cost",
	Short: "Compute the XP cost of a spend",
	Long: `Compute the XP cost of raising a trait without contacting the web app.
With --claimed the computed cost is checked against the player's figure.

Example:
  xpbridge spend-cost --category Skill --current 1 --new 3
  xpbridge spend-cost --category Attribute --current 2 --new 3 --claimed 10`,
	Args: cobra.NoArgs,
	RunE: runSpendCost,
}

func init() {
	rootCmd.AddCommand(spendCostCmd)

	spendCostCmd.Flags().StringVar(&costCategory, "category", "", "spend category")
	spendCostCmd.Flags().IntVar(&costCurrent, "current", 0, "current dots")
	spendCostCmd.Flags().IntVar(&costNew, "new", 0, "new dots")
	spendCostCmd.Flags().IntVar(&costClaimed, "claimed", 0, "cost the player submitted")
	for _, name := range []string{"category", "new"} {
		_ = spendCostCmd.MarkFlagRequired(name)
	}
}

func runSpendCost(cmd *cobra.Command, args []string) error {
	category := model.SpendCategory(costCategory)
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("claimed") {
		v := xprules.ValidateSpendRequest(category, costCurrent, costNew, costClaimed)
		fmt.Fprintln(out, v.Message)
		if !v.Valid {
			return errors.New("invalid spend request")
		}
		if !v.Matches {
			return errors.New("claimed cost does not match")
		}
		return nil
	}

	cost, err := xprules.CalculateXPCost(category, costCurrent, costNew)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Calculated cost: %d XP (%s)\n", cost, xprules.Costs[category].Description)
	return nil
}
