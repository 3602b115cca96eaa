// =============================================================================
// Missouri Lobbying Ledger - Row Normalizer
// =============================================================================
//
// Pure functions that turn raw workbook cell text into typed values. A cell
// arrives either as text typed by a filer ("$1,000.00", "01/15/2015",
// "Jan-15") or as the raw value of a native spreadsheet cell (a number, or a
// serial date counted from the workbook's date epoch).
//
// PARSERS:
//   - ReportPeriod : month/year token or serial date -> first of the month
//   - EventDate    : m/d/y text or serial date -> calendar date
//   - Cost         : currency text or number -> signed decimal
//   - SplitCompound: "NAME - TYPE" -> (name, type) on the last separator
//   - StripNickname: "JANE (JJ)" -> "JANE"
//
// Every parse failure wraps ErrParse. None of these functions has side
// effects; deciding the severity of a failure is the validator's job.
//
// =============================================================================

package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrParse is wrapped by every normalizer failure.
var ErrParse = errors.New("parse error")

// CompoundSeparator separates the name and type halves of a compound field.
const CompoundSeparator = " - "

// Epoch selects how serial date cells are decoded.
type Epoch struct {
	// Date1904 is the workbook-level 1904 date system flag.
	Date1904 bool
}

// =============================================================================
// TEXT CLEANUP
// =============================================================================

// Clean trims surrounding whitespace, including the non-breaking spaces
// that leak out of the ethics commission's export.
func Clean(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "\u00a0", " "))
}

// StripNickname truncates a name at its first parenthesis and trims it.
// "SMITH, JANE (JJ)" becomes "SMITH, JANE".
func StripNickname(name string) string {
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	return Clean(name)
}

// SplitCompound splits a "NAME - TYPE" field on the last separator. The type
// suffix may contain spaces and hyphens but never the separator itself.
func SplitCompound(value string) (name, kind string, err error) {
	value = Clean(value)
	i := strings.LastIndex(value, CompoundSeparator)
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q is not a NAME - TYPE pair", ErrParse, value)
	}

	name = Clean(value[:i])
	kind = Clean(value[i+len(CompoundSeparator):])
	if name == "" || kind == "" {
		return "", "", fmt.Errorf("%w: %q has an empty name or type", ErrParse, value)
	}

	return name, kind, nil
}

// =============================================================================
// DATES
// =============================================================================

// reportLayouts are the textual month/year shapes seen in report columns.
// Two-digit years follow Go's (and the export's) pivot: 69-99 -> 19xx.
var reportLayouts = []string{
	"Jan-06",
	"January-06",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"1/2006",
	"01/2006",
	"2006-01",
}

// eventLayouts are the textual day shapes seen in date columns.
var eventLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
}

// ReportPeriod parses a report-period token into the first day of its month.
func ReportPeriod(raw string, epoch Epoch) (time.Time, error) {
	value := Clean(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty report period", ErrParse)
	}

	if t, ok, err := serialDate(value, epoch); ok {
		if err != nil {
			return time.Time{}, err
		}
		return firstOfMonth(t), nil
	}

	for _, layout := range reportLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return firstOfMonth(t), nil
		}
	}

	// Full dates sometimes land in the report column.
	if t, err := EventDate(value, epoch); err == nil {
		return firstOfMonth(t), nil
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised report period %q", ErrParse, value)
}

// EventDate parses a slash-delimited m/d/y date or a serial date cell.
func EventDate(raw string, epoch Epoch) (time.Time, error) {
	value := Clean(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrParse)
	}

	if t, ok, err := serialDate(value, epoch); ok {
		if err != nil {
			return time.Time{}, err
		}
		return truncateDay(t), nil
	}

	for _, layout := range eventLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrParse, value)
}

// serialDate decodes a numeric cell. ok is false when value is not numeric
// at all, so callers fall through to the textual layouts.
func serialDate(value string, epoch Epoch) (time.Time, bool, error) {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return time.Time{}, false, nil
	}

	t, err := excelize.ExcelDateToTime(serial, epoch.Date1904)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("%w: serial date %q: %v", ErrParse, value, err)
	}
	return t.UTC(), true, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// truncateDay drops the time-of-day part of a serial date.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// CURRENCY
// =============================================================================

// Cost parses currency text or a raw numeric cell. The sign is preserved:
// "($50.00)", "-50" and "(-50)" all yield -50; a negative marker is never
// cancelled by a second one. Rejecting negatives is the validator's
// decision, not the parser's. Thousands separators must group by three.
func Cost(raw string) (decimal.Decimal, error) {
	value := Clean(raw)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: empty cost", ErrParse)
	}

	negative := false
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		negative = true
		value = Clean(value[1 : len(value)-1])
	}

	value = strings.NewReplacer("$", "", " ", "").Replace(value)
	for strings.HasPrefix(value, "-") {
		negative = true
		value = value[1:]
	}
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: cost %q has no digits", ErrParse, raw)
	}
	if !validGrouping(value) {
		return decimal.Zero, fmt.Errorf("%w: cost %q has misplaced thousands separators", ErrParse, raw)
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cost %q: %v", ErrParse, raw, err)
	}
	if amount.IsNegative() {
		negative = true
		amount = amount.Abs()
	}

	if negative {
		return amount.Neg(), nil
	}
	return amount, nil
}

// validGrouping reports whether the commas in an unsigned amount separate
// groups of three digits in the integer part only.
func validGrouping(value string) bool {
	whole, frac, _ := strings.Cut(value, ".")
	if strings.Contains(frac, ",") {
		return false
	}
	if !strings.Contains(whole, ",") {
		return true
	}

	groups := strings.Split(whole, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// HasSubCent reports whether amount carries a fraction of a cent. Binary
// noise from numeric cells (19.989999999999998) is not counted.
func HasSubCent(amount decimal.Decimal) bool {
	return amount.Sub(amount.Round(2)).Abs().GreaterThan(subCentTolerance)
}

// subCentTolerance absorbs float64 representation error in raw cells.
var subCentTolerance = decimal.New(1, -9)

// =============================================================================
// FLAGS AND IDENTIFIERS
// =============================================================================

// Flag interprets a yes/no style cell. Anything non-empty that is not an
// explicit negative counts as set.
func Flag(raw string) bool {
	switch strings.ToLower(Clean(raw)) {
	case "", "n", "no", "false", "0", "f":
		return false
	default:
		return true
	}
}

// Integer parses an identifier cell; numeric cells may carry a ".0" suffix.
func Integer(raw string) (int64, error) {
	value := Clean(raw)
	if value == "" {
		return 0, fmt.Errorf("%w: empty identifier", ErrParse)
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("%w: identifier %q is not an integer", ErrParse, value)
	}
	return int64(f), nil
}
