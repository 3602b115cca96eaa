// =============================================================================
// Missouri Lobbying Ledger - XLSX Workbook Parser
// =============================================================================
//
// This module reads one yearly expenditure workbook from the ethics
// commission. A workbook holds up to three sheets in a fixed order:
//
//   | Sheet | Kind         | Who received the expenditure           |
//   |-------|--------------|----------------------------------------|
//   | 1     | individual   | a named person ("NAME - TYPE")          |
//   | 2     | solicitation | a named person, solicited by them       |
//   | 3     | group        | a legislative body or caucus            |
//
// Row 1 of each sheet is the header. Columns are located by header label
// (case-insensitive), using the labels from the columns configuration, so
// the column order may change between years.
//
// Cells are read raw: numbers and dates come back as the stored value (a
// serial date is "42019", not "01-15-15"), and the workbook's 1904 date
// system flag is returned with the rows so the normalizer can decode them.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/normalize"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// ErrMissingColumn is returned when a sheet lacks a required header.
var ErrMissingColumn = errors.New("missing column")

// =============================================================================
// ROW STRUCTURES
// =============================================================================

// Common holds the fields shared by every sheet kind. Values are the raw,
// untrimmed cell text.
type Common struct {
	Sheet         types.SheetKind
	Line          int
	LobbyistFirst string
	LobbyistLast  string
	Report        string
	Date          string
	Type          string
	Description   string
	Cost          string
	Principal     string
	Amended       string
	EthicsID      string
}

// RecipientRow is a row of the individual or solicitation sheet.
type RecipientRow struct {
	Common

	// Recipient is the compound "NAME - TYPE" field.
	Recipient string

	// PublicOfficial is the compound field naming the official a staff or
	// family recipient is associated with.
	PublicOfficial string
}

// GroupRow is a row of the group sheet.
type GroupRow struct {
	Common
	Group string
}

// Workbook is one parsed yearly workbook.
type Workbook struct {
	// Path is the source file.
	Path string

	// Batch is the file name without its extension, usually the year.
	Batch string

	// Epoch carries the workbook's date system.
	Epoch normalize.Epoch

	Individual   []RecipientRow
	Solicitation []RecipientRow
	Groups       []GroupRow
}

// Rows returns the number of data rows across all sheets.
func (w *Workbook) Rows() int {
	return len(w.Individual) + len(w.Solicitation) + len(w.Groups)
}

// BatchLabel derives the batch label from a workbook path.
func BatchLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a workbook using the configured column labels.
func Parse(path string, cols config.ColumnsConfig) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{
		Path:  path,
		Batch: BatchLabel(path),
	}

	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook properties: %w", err)
	}
	if props.Date1904 != nil {
		wb.Epoch.Date1904 = *props.Date1904
	}

	sheets := f.GetSheetList()
	for i, kind := range types.SheetKinds {
		if i >= len(sheets) {
			break
		}

		rows, err := f.GetRows(sheets[i], excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[i], err)
		}
		if len(rows) == 0 {
			continue
		}

		switch kind {
		case types.SheetGroup:
			wb.Groups, err = parseGroupSheet(rows, cols.Group)
		case types.SheetSolicitation:
			wb.Solicitation, err = parseRecipientSheet(rows, cols.Recipient, kind)
		default:
			wb.Individual, err = parseRecipientSheet(rows, cols.Recipient, kind)
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %q (%s): %w", sheets[i], kind, err)
		}
	}

	return wb, nil
}

// =============================================================================
// SHEET PARSING
// =============================================================================

// header maps a header label onto its column index.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, label := range row {
		key := strings.ToLower(normalize.Clean(label))
		if _, seen := h[key]; key != "" && !seen {
			h[key] = i
		}
	}
	return h
}

// column finds a labelled column; required columns must exist.
func (h header) column(label string, required bool) (int, error) {
	if label == "" {
		return -1, nil
	}
	if i, ok := h[strings.ToLower(strings.TrimSpace(label))]; ok {
		return i, nil
	}
	if required {
		return -1, fmt.Errorf("%w: %q", ErrMissingColumn, label)
	}
	return -1, nil
}

// layout holds resolved column indexes; -1 means absent.
type layout struct {
	first, last, report, date, kind, description int
	cost, principal, amended, ethicsID            int
	recipient, publicOfficial, group              int
}

type binding struct {
	dst   *int
	label string
}

func resolveLayout(h header, cols config.SheetColumns, kind types.SheetKind) (layout, error) {
	var (
		l   layout
		err error
	)
	required := []binding{
		{&l.first, cols.LobbyistFirstName},
		{&l.last, cols.LobbyistLastName},
		{&l.report, cols.Report},
		{&l.date, cols.Date},
		{&l.kind, cols.Type},
		{&l.description, cols.Description},
		{&l.cost, cols.Cost},
		{&l.principal, cols.Principal},
	}
	if kind == types.SheetGroup {
		required = append(required, binding{&l.group, cols.Group})
	} else {
		required = append(required, binding{&l.recipient, cols.Recipient})
	}

	for _, c := range required {
		if *c.dst, err = h.column(c.label, true); err != nil {
			return l, err
		}
	}

	// Older workbooks lack these columns.
	l.amended, _ = h.column(cols.Amended, false)
	l.ethicsID, _ = h.column(cols.EthicsID, false)
	l.publicOfficial, _ = h.column(cols.PublicOfficial, false)
	if kind == types.SheetGroup {
		l.recipient, l.publicOfficial = -1, -1
	} else {
		l.group = -1
	}
	return l, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func (l layout) common(row []string, kind types.SheetKind, line int) Common {
	return Common{
		Sheet:         kind,
		Line:          line,
		LobbyistFirst: cell(row, l.first),
		LobbyistLast:  cell(row, l.last),
		Report:        cell(row, l.report),
		Date:          cell(row, l.date),
		Type:          cell(row, l.kind),
		Description:   cell(row, l.description),
		Cost:          cell(row, l.cost),
		Principal:     cell(row, l.principal),
		Amended:       cell(row, l.amended),
		EthicsID:      cell(row, l.ethicsID),
	}
}

func parseRecipientSheet(rows [][]string, cols config.SheetColumns, kind types.SheetKind) ([]RecipientRow, error) {
	l, err := resolveLayout(newHeader(rows[0]), cols, kind)
	if err != nil {
		return nil, err
	}

	var out []RecipientRow
	for i := 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		out = append(out, RecipientRow{
			Common:         l.common(rows[i], kind, i+1),
			Recipient:      cell(rows[i], l.recipient),
			PublicOfficial: cell(rows[i], l.publicOfficial),
		})
	}
	return out, nil
}

func parseGroupSheet(rows [][]string, cols config.SheetColumns) ([]GroupRow, error) {
	l, err := resolveLayout(newHeader(rows[0]), cols, types.SheetGroup)
	if err != nil {
		return nil, err
	}

	var out []GroupRow
	for i := 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		out = append(out, GroupRow{
			Common: l.common(rows[i], types.SheetGroup, i+1),
			Group:  cell(rows[i], l.group),
		})
	}
	return out, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
