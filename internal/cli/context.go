package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/xpbridge/internal/claimctx"
	"github.com/ppiankov/xpbridge/internal/model"
)

var (
	contextRefresh bool
	contextJSON    bool
)

// contextView is the printable form of a fetch result
type contextView struct {
	Context    model.ClaimContext `json:"context" yaml:"context"`
	Source     claimctx.Source    `json:"source" yaml:"source"`
	Retries    int                `json:"retries" yaml:"retries"`
	LatencyMs  int64              `json:"latencyMs" yaml:"latency_ms"`
	CacheAgeMs int64              `json:"cacheAgeMs" yaml:"cache_age_ms"`
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Fetch the claim context",
	Long: `Fetch the active characters, open play periods and current night from the
web app, using the same cache, retry and stale fallback as the wizard.

Example:
  xpbridge context
  xpbridge context --refresh --json`,
	Args: cobra.NoArgs,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)

	contextCmd.Flags().BoolVar(&contextRefresh, "refresh", false, "bypass the cache")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "print JSON instead of YAML")
}

func runContext(cmd *cobra.Command, args []string) error {
	res, err := newServices().fetcher.Get(cmd.Context(), contextRefresh)
	if err != nil {
		return err
	}

	view := contextView{
		Context:    res.Context,
		Source:     res.Source,
		Retries:    res.Retries,
		LatencyMs:  res.LatencyMs(),
		CacheAgeMs: res.CacheAgeMs(),
	}

	out := cmd.OutOrStdout()
	if contextJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("error marshaling context: %w", err)
	}
	_, err = out.Write(data)
	return err
}
