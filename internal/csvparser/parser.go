// =============================================================================
// Missouri Lobbying Ledger - CSV Parser Module
// =============================================================================
//
// This module reads the reference tables that are kept as CSV files:
//   - the organization name-lookup table
//   - the legislator demographic roster
//
// Both tables are positional: the first row is a header and is skipped, and
// the loaders address cells by column index. The parser is forgiving about
// the things spreadsheet exports get wrong:
//   - a UTF-8 byte order mark in front of the header
//   - rows with fewer (or more) fields than the header
//   - stray quotes inside unquoted fields
//   - blank lines
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned for a file with no header row.
var ErrEmpty = errors.New("CSV file is empty")

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a parsed reference table.
type Table struct {
	// Headers is the cleaned header row.
	Headers []string

	// Records holds the data rows in file order, blank rows removed.
	Records []Record

	// SourceFile is the path the table was read from ("" for readers).
	SourceFile string
}

// Record is one data row.
type Record struct {
	// Line is the 1-based line number of the row in the file.
	Line int

	// Fields holds the raw cell values.
	Fields []string
}

// Field returns the trimmed value of column i, or "" when the row is short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a comma-separated file with one header row.
func Parse(filePath string) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads CSV text from r. The first row is the header.
func ParseReader(r io.Reader) (*Table, error) {
	reader := bufio.NewReader(r)
	if err := skipBOM(reader); err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	table := &Table{}
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if table.Headers == nil {
			table.Headers = cleanHeaders(row)
			continue
		}

		if isRowEmpty(row) {
			continue
		}
		line, _ := csvReader.FieldPos(0)
		table.Records = append(table.Records, Record{Line: line, Fields: row})
	}

	if table.Headers == nil {
		return nil, ErrEmpty
	}
	return table, nil
}

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(reader *bufio.Reader) error {
	head, err := reader.Peek(3)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return fmt.Errorf("failed to read CSV: %w", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = reader.Discard(3)
	}
	return nil
}

// cleanHeaders trims header labels and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
