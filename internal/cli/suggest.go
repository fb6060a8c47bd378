package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/xpbridge/internal/claimctx"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest characters|periods [query]",
	Short: "Autocomplete characters or play periods",
	Long: `Match a query against the cached claim context, prefix matches first.

Example:
  xpbridge suggest characters ali
  xpbridge suggest periods "night 1"`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"characters", "periods"},
	RunE:      runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().IntVar(&suggestLimit, "limit", claimctx.MaxSuggestions, "maximum suggestions")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 2 {
		query = args[1]
	}

	res, err := newServices().fetcher.Get(cmd.Context(), false)
	if err != nil {
		return err
	}

	var values []string
	switch args[0] {
	case "characters", "character":
		values = res.Context.ActiveCharacters
	case "periods", "period":
		values = res.Context.OpenPeriods
	default:
		return fmt.Errorf("unknown suggestion kind %q (use characters or periods)", args[0])
	}

	for _, v := range claimctx.Suggest(values, query, suggestLimit) {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
