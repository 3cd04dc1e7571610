// Package cli implements the slipo command line interface.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/slipo/internal/config"
	"github.com/me/slipo/internal/logging"
	"github.com/me/slipo/pkg/slipo"
)

var (
	flagConfig    string
	flagURL       string
	flagAPIKey    string
	flagInsecure  bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *slipo.Client
)

// NewRootCmd creates the root cobra command for the slipo CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slipo",
		Short: "slipo interacts with the SLIPO workbench API",
		Long: "slipo manages files, catalog resources and POI data integration\n" +
			"processes on a SLIPO workbench instance.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			profile, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if flagURL != "" {
				profile.URL = flagURL
			}
			if flagAPIKey != "" {
				profile.APIKey = flagAPIKey
			}
			if flagInsecure {
				profile.Insecure = true
			}
			if cmd.Flags().Changed("log-level") {
				profile.LogLevel = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				profile.LogFormat = flagLogFormat
			}

			logger = logging.New(profile.LogLevel, profile.LogFormat)

			cfg := slipo.DefaultConfig().WithAPIKey(profile.APIKey)
			if profile.URL != "" {
				cfg = cfg.WithBaseURL(profile.URL)
			}
			if profile.Insecure {
				cfg = cfg.WithInsecure()
			}

			client, err = slipo.NewClient(cfg, logger)
			return err
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Profile file (default ~/.slipo/config.yml)")
	root.PersistentFlags().StringVar(&flagURL, "url", "", "SLIPO API endpoint (or SLIPO_URL env)")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (or SLIPO_API_KEY env)")
	root.PersistentFlags().BoolVar(&flagInsecure, "insecure", false, "Allow plain-HTTP endpoints")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newFilesCmd(),
		newCatalogCmd(),
		newProcessCmd(),
		newTransformCmd(),
		newInterlinkCmd(),
		newFuseCmd(),
		newEnrichCmd(),
		newExportCmd(),
	)

	return root
}
