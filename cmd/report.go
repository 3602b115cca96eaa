// =============================================================================
// Missouri Lobbying Ledger - Report Command
// =============================================================================
//
// This file defines the 'report' command, which prints the spending
// aggregates the web front end shows, straight from the store.
//
// COMMAND USAGE:
//   lobbying report [flags]
//
// FLAGS:
//   --top          : Rows per ranking (default 10, 0 = all)
//   --since        : Report-period floor, YYYY-MM-DD (default: recent window)
//   --all-time     : No report-period floor
//   --by           : Dimensions to rank (legislator, organization, category,
//                    lobbyist, group); repeatable
//   --legislator   : Restrict to one legislator (slug) and show its rank
//   --organization : Restrict to one organization (slug) and show its rank
//   --lobbyist     : Restrict to one lobbyist (slug) and show its rank
//   --group        : Restrict to one group (slug) and show its rank
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/missouri-lobbying/internal/report"
)

var (
	reportTop          int
	reportSince        string
	reportAllTime      bool
	reportBy           []string
	reportLegislator   string
	reportOrganization string
	reportLobbyist     string
	reportGroup        string
)

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print spending totals and rankings",
	Long: `The report command prints total spending and the top legislators,
organizations, industries, lobbyists and groups by spending.

By default only the recent window is counted: report periods from the first
day of the month after today, two years ago.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportTop, "top", 10, "Rows per ranking (0 = all)")
	reportCmd.Flags().StringVar(&reportSince, "since", "", "Report-period floor (YYYY-MM-DD)")
	reportCmd.Flags().BoolVar(&reportAllTime, "all-time", false, "Count every report period")
	reportCmd.Flags().StringSliceVar(&reportBy, "by", []string{"legislator", "organization", "category"}, "Dimensions to rank")
	reportCmd.Flags().StringVar(&reportLegislator, "legislator", "", "Restrict to one legislator (slug)")
	reportCmd.Flags().StringVar(&reportOrganization, "organization", "", "Restrict to one organization (slug)")
	reportCmd.Flags().StringVar(&reportLobbyist, "lobbyist", "", "Restrict to one lobbyist (slug)")
	reportCmd.Flags().StringVar(&reportGroup, "group", "", "Restrict to one group (slug)")
}

func runReport(cmd *cobra.Command) error {
	cfg, ctx, log, err := setup(cmd)
	if err != nil {
		return err
	}

	dims := make([]report.Dimension, 0, len(reportBy))
	for _, name := range reportBy {
		d, err := report.ParseDimension(name)
		if err != nil {
			return err
		}
		dims = append(dims, d)
	}

	var q report.Query
	switch {
	case reportAllTime:
	case reportSince != "":
		if q.Since, err = time.Parse("2006-01-02", reportSince); err != nil {
			return fmt.Errorf("--since: %w", err)
		}
	default:
		q.Since = report.RecentSince(time.Now())
	}

	st, err := openReadStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()
	rep := report.New(st)

	out := cmd.OutOrStdout()
	if q.Since.IsZero() {
		fmt.Fprintln(out, "Window: all time")
	} else {
		fmt.Fprintf(out, "Window: report periods since %s\n", q.Since.Format("2006-01-02"))
	}

	if reportLegislator != "" {
		leg, err := rep.LegislatorBySlug(ctx, reportLegislator)
		if err != nil {
			return err
		}
		rank, err := rep.Rank(ctx, report.ByLegislator, leg.ID, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Legislator: %s (rank %s)\n", leg.DisplayName(), rankLabel(rank))
		q.LegislatorID = leg.ID
	}
	if reportOrganization != "" {
		org, err := rep.OrganizationBySlug(ctx, reportOrganization)
		if err != nil {
			return err
		}
		rank, err := rep.Rank(ctx, report.ByOrganization, org.ID, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Organization: %s [%s] (rank %s)\n", org.Name, org.Category, rankLabel(rank))
		q.OrganizationID = org.ID
	}
	if reportLobbyist != "" {
		lob, err := rep.LobbyistBySlug(ctx, reportLobbyist)
		if err != nil {
			return err
		}
		rank, err := rep.Rank(ctx, report.ByLobbyist, lob.ID, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Lobbyist: %s (rank %s)\n", lob.DisplayName(), rankLabel(rank))
		q.LobbyistID = lob.ID
	}
	if reportGroup != "" {
		grp, err := rep.GroupBySlug(ctx, reportGroup)
		if err != nil {
			return err
		}
		rank, err := rep.Rank(ctx, report.ByGroup, grp.ID, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Group: %s (rank %s)\n", grp.Name, rankLabel(rank))
		q.GroupID = grp.ID
	}

	total, err := rep.Totals(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total spending: $%s in %d expenditures\n", total.Spending.StringFixed(2), total.Expenditures)

	for _, d := range []report.Dimension{report.ByOrganization, report.ByLobbyist, report.ByLegislator} {
		n, err := rep.CountDistinct(ctx, d, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-14s %d\n", d.String()+"s:", n)
	}

	for _, d := range dims {
		rows, err := rep.Top(ctx, d, q, reportTop)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		if err := writeRanking(out, d, rows); err != nil {
			return err
		}
	}
	return nil
}

func writeRanking(w io.Writer, d report.Dimension, rows []report.Row) error {
	fmt.Fprintf(w, "Top by %s:\n", d)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, row := range rows {
		fmt.Fprintf(tw, "%d.\t%s\t$%s\t%d\t\n", i+1, row.Name, row.Spending.StringFixed(2), row.Expenditures)
	}
	return tw.Flush()
}

func rankLabel(rank int) string {
	if rank == 0 {
		return "n/a"
	}
	return fmt.Sprintf("#%d", rank)
}
