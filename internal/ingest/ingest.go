// =============================================================================
// Missouri Lobbying Ledger - Ingest Run
// =============================================================================
//
// This module orchestrates one complete load. A Run owns every piece of
// mutable state for the load (ledger, resolver caches, pending expenditures);
// nothing survives between runs except the store itself.
//
// PIPELINE:
//   1. Check the input and output directories
//   2. Rebuild the store from empty (drop + recreate every table)
//   3. Load the organization lookup table and the legislator roster
//   4. For each yearly workbook, in file-name order:
//        parse -> classify every row -> record the outcome in the ledger
//   5. Commit every pending expenditure in one transaction
//
// Row problems never stop the run. Missing inputs, malformed workbooks and
// store faults do, and nothing is committed in that case.
//
// =============================================================================

package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/ledger"
	"github.com/ginjaninja78/missouri-lobbying/internal/reference"
	"github.com/ginjaninja78/missouri-lobbying/internal/resolver"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
	"github.com/ginjaninja78/missouri-lobbying/internal/validation"
	"github.com/ginjaninja78/missouri-lobbying/internal/xlsxparser"
	"github.com/ginjaninja78/missouri-lobbying/pkg/utils"
)

// =============================================================================
// RUN STRUCTURE
// =============================================================================

// Run is the context of one load.
type Run struct {
	// ID identifies the run in logs and log file names.
	ID uuid.UUID

	cfg    *config.Config
	store  *store.Store
	files  *utils.FileManager
	log    zerolog.Logger
	ledger *ledger.Ledger

	validator *validation.Validator
	pending   []store.Expenditure
	total     decimal.Decimal
}

// Stats describes a finished run.
type Stats struct {
	Workbooks int
	Rows      int
	Imported  int
	Total     decimal.Decimal
	Duration  time.Duration
}

// NewRun prepares a run against st. The store must be open; the run resets
// it when executed.
func NewRun(cfg *config.Config, st *store.Store, log zerolog.Logger) *Run {
	id := uuid.New()
	return &Run{
		ID:     id,
		cfg:    cfg,
		store:  st,
		files:  utils.NewFileManager(cfg.Inputs.ExpendituresDir, cfg.Inputs.OutputDir),
		log:    log.With().Str("run", id.String()).Logger(),
		ledger: ledger.New(id.String()),
		total:  decimal.Zero,
	}
}

// Ledger returns the run's diagnostics ledger.
func (r *Run) Ledger() *ledger.Ledger {
	return r.ledger
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Execute runs the whole pipeline.
//
// RETURNS:
//   - Statistics for the run.
//   - An error for fatal conditions only. Row-level problems are in the
//     ledger.
func (r *Run) Execute(ctx context.Context) (Stats, error) {
	var stats Stats

	// =========================================================================
	// STEP 1: CHECK DIRECTORIES
	// =========================================================================

	if err := r.files.EnsureDirectories(); err != nil {
		return stats, err
	}
	workbooks, err := r.files.DiscoverWorkbooks()
	if err != nil {
		return stats, err
	}
	stats.Workbooks = len(workbooks)
	r.log.Info().Int("workbooks", len(workbooks)).Str("dir", r.files.InputDir).Msg("starting load")

	// =========================================================================
	// STEP 2: REBUILD THE STORE
	// =========================================================================

	if err := r.store.Reset(ctx); err != nil {
		return stats, err
	}

	// =========================================================================
	// STEP 3: REFERENCE TABLES
	// =========================================================================

	names, err := reference.LoadOrganizations(ctx, r.store, r.cfg.Inputs.Organizations, r.ledger, r.log)
	if err != nil {
		return stats, err
	}
	if _, err := reference.LoadLegislators(ctx, r.store, r.cfg.Inputs.Legislators, r.ledger, r.log); err != nil {
		return stats, err
	}

	r.validator, err = validation.NewValidator(resolver.New(r.store, names), r.cfg.Rules)
	if err != nil {
		return stats, err
	}

	// =========================================================================
	// STEP 4: WORKBOOKS
	// =========================================================================

	for _, path := range workbooks {
		n, err := r.ProcessWorkbook(ctx, path)
		if err != nil {
			return stats, err
		}
		stats.Rows += n
	}

	// =========================================================================
	// STEP 5: COMMIT
	// =========================================================================

	if err := r.store.CommitExpenditures(ctx, r.pending, r.cfg.Rules.CommitBatchSize); err != nil {
		return stats, err
	}
	r.ledger.SetImported(len(r.pending))

	counts, err := r.store.Counts(ctx)
	if err != nil {
		return stats, err
	}
	stored := zerolog.Dict()
	for _, kind := range types.EntityKinds {
		stored.Int64(kind.String(), counts[kind])
	}
	r.log.Debug().Dict("stored", stored).Msg("store populated")

	stats.Imported = len(r.pending)
	stats.Total = r.total
	stats.Duration = time.Since(r.ledger.StartedAt)

	r.log.Info().
		Int("imported", stats.Imported).
		Str("total", stats.Total.StringFixed(2)).
		Int("warnings", r.ledger.Count(types.SeverityWarning)).
		Int("errors", r.ledger.Count(types.SeverityError)).
		Dur("duration", stats.Duration).
		Msg("load finished")

	return stats, nil
}

// ProcessWorkbook classifies every row of one workbook and buffers the
// accepted ones. It returns the number of rows read.
func (r *Run) ProcessWorkbook(ctx context.Context, path string) (int, error) {
	if r.validator == nil {
		return 0, fmt.Errorf("reference tables are not loaded")
	}

	wb, err := xlsxparser.Parse(path, r.cfg.Columns)
	if err != nil {
		return 0, fmt.Errorf("workbook %s: %w", path, err)
	}

	r.ledger.BeginBatch(wb.Batch)
	log := r.log.With().Str("batch", wb.Batch).Logger()
	log.Info().
		Int("individual", len(wb.Individual)).
		Int("solicitation", len(wb.Solicitation)).
		Int("group", len(wb.Groups)).
		Bool("date1904", wb.Epoch.Date1904).
		Msg("workbook parsed")

	accepted := len(r.pending)
	for _, rows := range [][]xlsxparser.RecipientRow{wb.Individual, wb.Solicitation} {
		for _, row := range rows {
			r.ledger.CountRow(row.Sheet)
			res, err := r.validator.ClassifyRecipient(ctx, wb.Batch, wb.Epoch, row)
			if err != nil {
				return 0, fmt.Errorf("%s %s row %d: %w", wb.Batch, row.Sheet, row.Line, err)
			}
			r.record(wb.Batch, res)
		}
	}
	for _, row := range wb.Groups {
		r.ledger.CountRow(row.Sheet)
		res, err := r.validator.ClassifyGroup(ctx, wb.Batch, wb.Epoch, row)
		if err != nil {
			return 0, fmt.Errorf("%s %s row %d: %w", wb.Batch, row.Sheet, row.Line, err)
		}
		r.record(wb.Batch, res)
	}

	log.Debug().Int("accepted", len(r.pending)-accepted).Msg("workbook classified")
	return wb.Rows(), nil
}

// record applies one classification to the ledger and the pending list.
func (r *Run) record(batch string, res validation.Result) {
	for _, kind := range res.Created {
		r.ledger.CountCreated(kind)
	}

	switch res.Outcome {
	case types.OutcomeAccepted:
		r.pending = append(r.pending, *res.Expenditure)
		r.total = r.total.Add(res.Expenditure.Cost)
	case types.OutcomeAmended:
		r.ledger.CountAmended()
	default:
		r.ledger.Add(ledger.Entry{
			Severity: res.Outcome.Severity(),
			Batch:    batch,
			Sheet:    res.Sheet.String(),
			Line:     res.Line,
			Message:  res.Message,
		})
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteSummary renders the end-of-run summary.
func (r *Run) WriteSummary(w io.Writer, verbose bool) error {
	return r.ledger.WriteSummary(w, verbose)
}

// WriteLogs writes the ledger and summary log files to the output directory
// and returns their paths.
func (r *Run) WriteLogs(verbose bool) ([]string, error) {
	if r.cfg.Inputs.OutputDir == "" {
		return nil, nil
	}

	var paths []string
	errLog, err := utils.WriteErrorLog(r.ledger, r.cfg.Inputs.OutputDir)
	if err != nil {
		return nil, err
	}
	if errLog != "" {
		paths = append(paths, errLog)
	}

	summary, err := utils.WriteSummaryLog(r.ledger, r.cfg.Inputs.OutputDir, verbose)
	if err != nil {
		return paths, err
	}
	return append(paths, summary), nil
}
