// =============================================================================
// Missouri Lobbying Ledger - Load Command
// =============================================================================
//
// This file defines the 'load' command, which rebuilds the store from the
// reference tables and the yearly expenditure workbooks.
//
// COMMAND USAGE:
//   lobbying load [flags]
//
// FLAGS:
//   --no-logs : Do not write ledger/summary files to the output directory
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Open the store
//   3. Run the ingest pipeline (reset, references, workbooks, commit)
//   4. Print the summary and write the log files
//
// The summary is printed even when the run fails, so the rows classified
// before the failure can still be reviewed.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/missouri-lobbying/internal/ingest"
)

// noLogs disables the ledger and summary log files.
var noLogs bool

// loadCmd represents the 'load' command.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Rebuild the store from the reference tables and workbooks",
	Long: `The load command drops and recreates every table, loads the organization
lookup table and the legislator roster, then classifies every row of every
yearly workbook in the expenditures directory.

Rows that cannot be attributed are skipped and reported; they never stop the
run. Missing inputs, malformed workbooks and store failures do stop it, and
nothing is committed in that case.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(
		&noLogs,
		"no-logs",
		false,
		"Do not write ledger and summary files to the output directory",
	)
}

// runLoad is the main function that orchestrates a load.
func runLoad(cmd *cobra.Command) error {
	cfg, ctx, log, err := setup(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	run := ingest.NewRun(cfg, st, log)
	stats, runErr := run.Execute(ctx)

	out := cmd.OutOrStdout()
	if err := run.WriteSummary(out, verbose); err != nil {
		return err
	}

	if !noLogs {
		paths, err := run.WriteLogs(verbose)
		if err != nil {
			log.Warn().Err(err).Msg("could not write log files")
		}
		for _, p := range paths {
			fmt.Fprintf(out, "Log written: %s\n", p)
		}
	}

	if runErr != nil {
		return fmt.Errorf("load aborted, nothing committed: %w", runErr)
	}

	fmt.Fprintf(out, "Loaded %d workbook(s), %d row(s), total spending $%s\n",
		stats.Workbooks, stats.Rows, stats.Total.StringFixed(2))
	return nil
}
