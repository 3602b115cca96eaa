// =============================================================================
// Missouri Lobbying Ledger - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (lobbying)
//   ├── loadCmd    (lobbying load)     rebuild the store from the inputs
//   ├── reportCmd  (lobbying report)   print spending aggregates
//   ├── exportCmd  (lobbying export)   write the expenditure CSV download
//   ├── listCmd    (lobbying list)     print the legislator roster or organizations
//   ├── configCmd  (lobbying config)   print the effective configuration
//   └── versionCmd (lobbying version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration (file + LOBBY_* environment overrides)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/logger"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging and lists informational skips in the
// summary.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lobbying",
	Short: "Missouri Lobbying Ledger - Load and report lobbyist expenditure disclosures",
	Long: `Missouri Lobbying Ledger loads the ethics commission's yearly lobbyist
expenditure workbooks, reconciles them against the legislator roster and the
organization lookup table, and rebuilds a relational store for reporting.

Key Features:
  - Rows are classified by recipient; out-of-scope rows are skipped
  - Every anomaly is kept in a ledger with its year, sheet and row
  - All accepted expenditures are committed in one transaction
  - SQLite by default, PostgreSQL optionally

Example Usage:
  lobbying load                         # Rebuild the store from ./data
  lobbying load --config ./prod.yaml    # Use a custom configuration file
  lobbying report --top 10              # Top spenders and recipients
  lobbying export -o lobbying.csv       # Full expenditure download`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging and list skipped rows in the summary",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig reads the configuration. A missing default config file is not
// an error; the built-in defaults apply.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == defaultConfigFile && !utils.FileExists(path) {
		path = ""
	}
	return config.Load(path)
}

// setup loads the configuration and builds the logger, attached to the
// command's context.
func setup(cmd *cobra.Command) (*config.Config, context.Context, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level, cfg.Log.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cfg, logger.WithContext(ctx, log), log, nil
}

// openStore opens the configured store.
func openStore(cfg *config.Config, log zerolog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("driver", cfg.Database.Driver).Msg("store opened")
	return st, nil
}

// openReadStore opens the store for the read-only commands. Missing tables
// are created, so a fresh DSN reports empty results instead of failing.
func openReadStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Store, error) {
	st, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
