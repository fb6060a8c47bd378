package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xpbridge/internal/evidence"
	"github.com/ppiankov/xpbridge/internal/model"
	"github.com/ppiankov/xpbridge/internal/wizard"
)

var (
	claimCharacter string
	claimPeriod    string
	claimCategory  string
	claimLink      string
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Submit a single-category XP claim",
	Long: `Submit an XP claim for one category with its evidence link.
Use the wizard command to claim several categories at once.

Example:
  xpbridge claim --character Alice --period "Night 3" \
    --category combat --link https://discord.com/channels/1/2/3`,
	Args: cobra.NoArgs,
	RunE: runClaim,
}

func init() {
	rootCmd.AddCommand(claimCmd)

	claimCmd.Flags().StringVar(&claimCharacter, "character", "", "character name")
	claimCmd.Flags().StringVar(&claimPeriod, "period", "", "play period")
	claimCmd.Flags().StringVar(&claimCategory, "category", "", "claim category ("+categoryKeys()+")")
	claimCmd.Flags().StringVar(&claimLink, "link", "", "chat message link proving the category")
	for _, name := range []string{"character", "period", "category", "link"} {
		_ = claimCmd.MarkFlagRequired(name)
	}
}

func runClaim(cmd *cobra.Command, args []string) error {
	if !wizard.IsCategory(claimCategory) {
		return fmt.Errorf("unknown category %q (use one of %s)", claimCategory, categoryKeys())
	}
	if err := evidence.Validate(claimCategory, claimLink); err != nil {
		return err
	}

	result := newServices().tracker.SubmitClaim(cmd.Context(), model.ClaimPayload{
		CharacterName: claimCharacter,
		PlayPeriod:    claimPeriod,
		Categories:    map[string]string{claimCategory: strings.TrimSpace(claimLink)},
	})
	return reportResult(cmd, result)
}

// reportResult prints the submission message and fails the command when
// the web app rejected it
func reportResult(cmd *cobra.Command, result model.SubmitResult) error {
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if !result.OK {
		return errors.New("submission failed")
	}
	return nil
}

func categoryKeys() string {
	keys := make([]string, len(wizard.Categories))
	for i, c := range wizard.Categories {
		keys[i] = c.Key
	}
	return strings.Join(keys, ", ")
}
