package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/xpbridge/internal/model"
)

const configHierarchy = `Configuration hierarchy (highest to lowest priority):
  1. CLI flags (--base-url, --token)
  2. Legacy environment (WEB_APP_BASE_URL, WEB_APP_API_TOKEN, *_MS, ...)
  3. Environment variables (XPBRIDGE_*)
  4. Config file (~/.xpbridge/config.yaml)
  5. Defaults`

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage xpbridge configuration",
	Long: `Manage xpbridge configuration files and settings.

` + configHierarchy,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the resolved configuration from all sources (defaults, config file, env vars, flags). The API token is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Fprintln(out, string(yamlData))
		fmt.Fprintln(out, configHierarchy)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.xpbridge/config.yaml with every available option.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".xpbridge")
		configPath := filepath.Join(configDir, "config.yaml")

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'xpbridge config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		data, err := defaultConfigFile()
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, data, 0o600); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  xpbridge config show\n")
		return nil
	},
}

// defaultConfigFile renders the defaults with a comment header
func defaultConfigFile() ([]byte, error) {
	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}

	header := "# xpbridge configuration file\n#\n"
	for _, line := range strings.Split(configHierarchy, "\n") {
		header += "# " + line + "\n"
	}
	header += "#\n# Keep the API token out of this file; prefer XPBRIDGE_API_TOKEN.\n\n"

	return append([]byte(header), yamlData...), nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
