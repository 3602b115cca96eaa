// =============================================================================
// Missouri Lobbying Ledger - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes the full expenditure
// download as CSV.
//
// COMMAND USAGE:
//   lobbying export [-o missouri-lobbying.csv]
//
// Without -o the CSV goes to standard output.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/missouri-lobbying/internal/report"
)

// exportPath is the output file; empty means standard output.
var exportPath string

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every expenditure as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file (default standard output)")
}

func runExport(cmd *cobra.Command) (err error) {
	cfg, ctx, log, err := setup(cmd)
	if err != nil {
		return err
	}

	st, err := openReadStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = cmd.OutOrStdout()
	if exportPath != "" {
		f, cerr := os.Create(exportPath)
		if cerr != nil {
			return fmt.Errorf("failed to create export file: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	n, err := report.New(st).ExportCSV(ctx, w)
	if err != nil {
		return err
	}
	log.Info().Int("rows", n).Str("output", exportPath).Msg("export finished")
	return nil
}
