// =============================================================================
// Missouri Lobbying Ledger - List Command
// =============================================================================
//
// This file defines the 'list' command, which prints the reference entities
// loaded by the last run.
//
// COMMAND USAGE:
//   lobbying list legislators [--office senator|representative]
//   lobbying list organizations
//
// =============================================================================

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/missouri-lobbying/internal/report"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// listOffice restricts the roster to one chamber; empty lists both.
var listOffice string

// listCmd represents the 'list' command.
var listCmd = &cobra.Command{
	Use:       "list {legislators|organizations}",
	Short:     "Print the legislator roster or the canonical organizations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"legislators", "organizations"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listOffice, "office", "", "Chamber for the roster (senator or representative)")
}

func runList(cmd *cobra.Command, what string) error {
	cfg, ctx, log, err := setup(cmd)
	if err != nil {
		return err
	}

	st, err := openReadStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	switch what {
	case "organizations":
		orgs, err := st.Organizations(ctx)
		if err != nil {
			return err
		}
		for _, org := range orgs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", org.Slug, org.Name, org.Category)
		}

	case "legislators":
		var seats []store.Legislator
		if listOffice == "" {
			seats, err = st.Legislators(ctx)
		} else {
			office := types.ParseOffice(listOffice)
			if office == types.OfficeUnknown {
				return fmt.Errorf("unknown office %q", listOffice)
			}
			seats, err = report.New(st).Legislators(ctx, office)
		}
		if err != nil {
			return err
		}
		for _, leg := range seats {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", leg.Office, leg.District, leg.DisplayName(), leg.Party)
		}
	}

	return tw.Flush()
}
