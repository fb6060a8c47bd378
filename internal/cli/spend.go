package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xpbridge/internal/model"
	"github.com/ppiankov/xpbridge/internal/xprules"
)

var (
	spendCharacter     string
	spendCategory      string
	spendTrait         string
	spendCurrent       int
	spendNew           int
	spendInClan        bool
	spendJustification string
)

var spendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Request an XP spend",
	Long: `Send an XP spend request to the web app. The cost is computed locally and
printed before the request is sent; requests the cost rules reject are not sent.

Example:
  xpbridge spend --character Alice --category Skill --trait Brawl \
    --current 1 --new 2 --justification "Trained with the sheriff"`,
	Args: cobra.NoArgs,
	RunE: runSpend,
}

func init() {
	rootCmd.AddCommand(spendCmd)

	spendCmd.Flags().StringVar(&spendCharacter, "character", "", "character name")
	spendCmd.Flags().StringVar(&spendCategory, "category", "", "spend category")
	spendCmd.Flags().StringVar(&spendTrait, "trait", "", "trait name")
	spendCmd.Flags().IntVar(&spendCurrent, "current", 0, "current dots")
	spendCmd.Flags().IntVar(&spendNew, "new", 0, "new dots")
	spendCmd.Flags().BoolVar(&spendInClan, "in-clan", false, "discipline is in-clan")
	spendCmd.Flags().StringVar(&spendJustification, "justification", "", "why the character improves")
	for _, name := range []string{"character", "category", "trait", "new", "justification"} {
		_ = spendCmd.MarkFlagRequired(name)
	}
}

func runSpend(cmd *cobra.Command, args []string) error {
	payload := model.SpendPayload{
		CharacterName: spendCharacter,
		SpendCategory: model.SpendCategory(spendCategory),
		TraitName:     spendTrait,
		CurrentDots:   spendCurrent,
		NewDots:       spendNew,
		IsInClan:      spendInClan,
		Justification: spendJustification,
	}
	if err := validateSpend(payload); err != nil {
		return err
	}
	cost, err := xprules.CalculateXPCost(payload.SpendCategory, payload.CurrentDots, payload.NewDots)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Calculated cost: %d XP\n", cost)

	return reportResult(cmd, newServices().tracker.SubmitSpend(cmd.Context(), payload))
}

func validateSpend(p model.SpendPayload) error {
	if !p.SpendCategory.Valid() {
		return fmt.Errorf("unknown spend category %q", p.SpendCategory)
	}
	if p.CurrentDots < 0 {
		return fmt.Errorf("current dots must not be negative")
	}
	if p.NewDots <= p.CurrentDots {
		return fmt.Errorf("new dots (%d) must exceed current dots (%d)", p.NewDots, p.CurrentDots)
	}
	return nil
}
