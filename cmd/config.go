// =============================================================================
// Missouri Lobbying Ledger - Config Command
// =============================================================================
//
// This file defines the 'config' command, which prints the effective
// configuration (file, environment overrides and defaults merged) as YAML.
//
// COMMAND USAGE:
//   lobbying config
//   LOBBY_DATABASE_DRIVER=postgres lobbying config
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
)

// configCmd represents the 'config' command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := config.Dump(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
