package ledger

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

const rule = "================================================================================\n"

// WriteSummary renders the end-of-run summary. Informational skips are only
// listed individually when verbose is set; their count is always shown.
func (l *Ledger) WriteSummary(w io.Writer, verbose bool) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Missouri Lobbying Ledger - Run Summary\n")
	fmt.Fprint(bw, rule)
	fmt.Fprintf(bw, "  Run ID:         %s\n", l.RunID)
	fmt.Fprintf(bw, "  Started:        %s\n", l.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "  Duration:       %s\n", time.Since(l.StartedAt).Round(time.Millisecond))
	if len(l.batches) > 0 {
		fmt.Fprintf(bw, "  Batches:        %d (%s .. %s)\n", len(l.batches), l.batches[0], l.batches[len(l.batches)-1])
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Rows processed:\n")
	for _, kind := range types.SheetKinds {
		fmt.Fprintf(bw, "  %-14s  %d\n", kind.String()+":", l.rows[kind])
	}
	fmt.Fprintf(bw, "  %-14s  %d\n", "amended:", l.amended)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Entities created:\n")
	for _, kind := range types.EntityKinds {
		fmt.Fprintf(bw, "  %-14s  %d\n", kind.String()+":", l.created[kind])
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Diagnostics:\n")
	fmt.Fprintf(bw, "  %-14s  %d\n", "skipped:", l.Count(types.SeverityInfo))
	fmt.Fprintf(bw, "  %-14s  %d\n", "warnings:", l.Count(types.SeverityWarning))
	fmt.Fprintf(bw, "  %-14s  %d\n", "errors:", l.Count(types.SeverityError))
	fmt.Fprintln(bw)

	writeSection(bw, "Warnings", l.Warnings())
	writeSection(bw, "Errors", l.Errors())
	if verbose {
		writeSection(bw, "Skipped", l.Entries(types.SeverityInfo))
	}

	fmt.Fprintf(bw, "Imported %d expenditures\n", l.imported)
	fmt.Fprint(bw, rule)

	return bw.Flush()
}

// WriteEntries renders every warning and error, one per line, for the
// ledger log file.
func (l *Ledger) WriteEntries(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range l.entries {
		if e.Severity == types.SeverityInfo {
			continue
		}
		fmt.Fprintf(bw, "%-7s %s\n", e.Severity, e)
	}
	return bw.Flush()
}

func writeSection(w io.Writer, title string, entries []Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "--------------------------------------------------------------------------------\n")
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\n", e)
	}
	fmt.Fprintln(w)
}
