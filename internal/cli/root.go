package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/xpbridge/internal/config"
	"github.com/ppiankov/xpbridge/internal/logging"
	"github.com/ppiankov/xpbridge/internal/model"
	"github.com/ppiankov/xpbridge/internal/telemetry"
)

// Version is set at build time
var Version = "0.3.0"

var (
	cfgFile string
	verbose bool
	baseURL string
	token   string

	cfg      *model.Config
	logger   = zap.NewNop()
	shutdown = func(context.Context) error { return nil }
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "xpbridge",
	Short: "xpbridge - chat front end for the XP tracker web app",
	Long: `xpbridge connects chat users to the XP tracker web app.

It caches the claim context (active characters, open play periods and the
current night), walks users through multi-category XP claims and forwards
claims and spend requests to the web app API.

The web app owns all XP records; xpbridge keeps nothing across restarts.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of xpbridge.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "xpbridge v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.xpbridge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "web app base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "web app API bearer token")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".xpbridge"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setup resolves configuration and starts logging and tracing for every
// command except version
func setup(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	var overrides config.Overrides
	if cmd.Flags().Changed("base-url") {
		overrides.BaseURL = &baseURL
	}
	if cmd.Flags().Changed("token") {
		overrides.Token = &token
	}

	loaded, err := config.Load(viper.GetViper(), overrides)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, verbose)
	if err != nil {
		return err
	}

	shutdown, err = telemetry.Setup(cmd.Context(), "xpbridge", Version)
	if err != nil {
		logger.Warn("telemetry_setup_failed", zap.Error(err))
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if err := shutdown(context.Background()); err != nil {
		logger.Warn("telemetry_shutdown_failed", zap.Error(err))
	}
	_ = logger.Sync()
	return nil
}
