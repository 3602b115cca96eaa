// =============================================================================
// Missouri Lobbying Ledger - Diagnostics Ledger
// =============================================================================
//
// The ledger is the run's memory of everything that did not become an
// expenditure, plus the counters of everything that did. Entries are tagged
// with the batch (workbook year or reference table), the sheet and the row.
//
// SEVERITIES:
//   info    - expected skip (out-of-scope recipient, former legislator).
//             Counted; listed only in verbose summaries.
//   warning - anomalous but recoverable (bad date, malformed name field).
//   error   - needs a human (unknown recipient type, bad cost, unknown
//             organization).
//
// A Ledger belongs to exactly one run and is never shared between runs.
//
// =============================================================================

package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// Entry is one row-level diagnostic.
type Entry struct {
	Severity types.Severity
	Batch    string
	Sheet    string
	Line     int
	Message  string
}

func (e Entry) String() string {
	var loc []string
	if e.Batch != "" {
		loc = append(loc, e.Batch)
	}
	if e.Sheet != "" {
		loc = append(loc, e.Sheet)
	}
	where := strings.Join(loc, "/")
	if e.Line > 0 {
		if where != "" {
			where += " "
		}
		where += fmt.Sprintf("row %d", e.Line)
	}
	if where == "" {
		return e.Message
	}
	return fmt.Sprintf("[%s] %s", where, e.Message)
}

// Ledger accumulates diagnostics and counters for one run.
type Ledger struct {
	RunID     string
	StartedAt time.Time

	entries  []Entry
	rows     map[types.SheetKind]int
	created  map[types.EntityKind]int
	amended  int
	imported int
	batches  []string
}

// New creates an empty ledger for the run.
func New(runID string) *Ledger {
	return &Ledger{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		rows:      make(map[types.SheetKind]int),
		created:   make(map[types.EntityKind]int),
	}
}

// =============================================================================
// RECORDING
// =============================================================================

// Add appends an entry.
func (l *Ledger) Add(e Entry) {
	l.entries = append(l.entries, e)
}

// Warn records a recoverable anomaly.
func (l *Ledger) Warn(batch, sheet string, line int, format string, args ...any) {
	l.add(types.SeverityWarning, batch, sheet, line, format, args...)
}

func (l *Ledger) add(sev types.Severity, batch, sheet string, line int, format string, args ...any) {
	l.Add(Entry{
		Severity: sev,
		Batch:    batch,
		Sheet:    sheet,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// BeginBatch notes that a batch is being processed.
func (l *Ledger) BeginBatch(label string) {
	l.batches = append(l.batches, label)
}

// CountRow counts one processed row of the given sheet kind.
func (l *Ledger) CountRow(kind types.SheetKind) {
	l.rows[kind]++
}

// CountCreated counts one newly created entity.
func (l *Ledger) CountCreated(kind types.EntityKind) {
	l.created[kind]++
}

// CountAmended counts one amended row dropped before classification.
func (l *Ledger) CountAmended() {
	l.amended++
}

// SetImported records the number of committed expenditures.
func (l *Ledger) SetImported(n int) {
	l.imported = n
	l.created[types.EntityExpenditure] = n
}

// =============================================================================
// QUERIES
// =============================================================================

// Entries returns every entry of the given severity in recording order.
func (l *Ledger) Entries(sev types.Severity) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns the warning entries.
func (l *Ledger) Warnings() []Entry { return l.Entries(types.SeverityWarning) }

// Errors returns the error entries.
func (l *Ledger) Errors() []Entry { return l.Entries(types.SeverityError) }

// Count returns the number of entries of a severity.
func (l *Ledger) Count(sev types.Severity) int {
	n := 0
	for _, e := range l.entries {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Rows returns the processed row count of a sheet kind.
func (l *Ledger) Rows(kind types.SheetKind) int { return l.rows[kind] }

// Created returns the creation count of an entity kind.
func (l *Ledger) Created(kind types.EntityKind) int { return l.created[kind] }

// Amended returns the number of amended rows dropped.
func (l *Ledger) Amended() int { return l.amended }

// Imported returns the number of committed expenditures.
func (l *Ledger) Imported() int { return l.imported }

// Batches returns the batch labels in processing order.
func (l *Ledger) Batches() []string { return append([]string(nil), l.batches...) }
