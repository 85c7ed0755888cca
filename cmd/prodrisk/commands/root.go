// Package commands defines all Cobra CLI commands for the prodrisk binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/audit"
	"github.com/furkancmc/prodrisk/internal/config"
	"github.com/furkancmc/prodrisk/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prodrisk",
		Short: "Semantic product search with e-commerce risk analysis",
		Long: `prodrisk searches a scraped product catalog by meaning rather than keywords
and scores every product's sales risk from its price, rating, and brand
competition.

The catalog is an SQLite database where each product category is a pair of
tables: the base table and its embedding side table. Categories are
discovered at startup, so new scrapes need no configuration.

The embedding backend is selected via the EMBEDDING_PROVIDER environment
variable or a YAML config file (~/.prodrisk/config.yaml).
See 'prodrisk --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A local .env is developer convenience; absence is not an error.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.prodrisk/config.yaml)")

	root.AddCommand(
		NewSearchCmd(),
		NewDetailsCmd(),
		NewStatsCmd(),
		NewBrandsCmd(),
		NewSalesCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
