// =============================================================================
// Missouri Lobbying Ledger - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the loader, including:
//   - Workbook discovery (one .xlsx per year)
//   - Directory management
//   - Ledger and summary log files
//   - File naming utilities
//
// LOG FILES:
//   Every run writes two text files to the output directory:
//     ledger_<timestamp>_<run>.txt   warnings and errors, one per line
//     summary_<timestamp>_<run>.txt  the end-of-run summary
//   The run segment is the first block of the run UUID, so logs of runs
//   started within the same second do not collide.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/missouri-lobbying/internal/ledger"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the loader.
type FileManager struct {
	// InputDir is the directory holding the yearly expenditure workbooks.
	InputDir string

	// OutputDir is the directory where ledger and summary logs are written.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory if it doesn't exist. The
// input directory must already exist.
//
// RETURNS:
//   - An error if the input directory is missing or the output directory
//     cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	info, err := os.Stat(fm.InputDir)
	if err != nil {
		return fmt.Errorf("expenditure directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("expenditure directory %s is not a directory", fm.InputDir)
	}

	if fm.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverWorkbooks lists the .xlsx workbooks in the input directory, sorted
// by name so yearly batches run in order. Excel lock files ("~$2015.xlsx")
// and subdirectories are ignored.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverWorkbooks() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenditure directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			files = append(files, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// LogFileName builds a log file name for a run.
//
// EXAMPLE:
//   LogFileName("ledger", "a1b2c3d4-e5f6-...", t) -> "ledger_20240115_143022_a1b2c3d4.txt"
func LogFileName(kind, runID string, at time.Time) string {
	short, _, _ := strings.Cut(runID, "-")
	return fmt.Sprintf("%s_%s_%s.txt", kind, at.Format("20060102_150405"), short)
}

// =============================================================================
// LOG GENERATION
// =============================================================================

// WriteErrorLog writes the ledger's warnings and errors to a log file in
// outputDir. Nothing is written when the run was clean.
//
// RETURNS:
//   - The path to the log file, or "" if none was written.
//   - An error if writing fails.
func WriteErrorLog(l *ledger.Ledger, outputDir string) (string, error) {
	if len(l.Warnings())+len(l.Errors()) == 0 {
		return "", nil
	}

	return writeLog(filepath.Join(outputDir, LogFileName("ledger", l.RunID, l.StartedAt)), func(w *bufio.Writer) error {
		fmt.Fprintf(w, "Missouri Lobbying Ledger - Diagnostics\n"+
			"Run ID:   %s\n"+
			"Warnings: %d\n"+
			"Errors:   %d\n"+
			"================================================================================\n",
			l.RunID, len(l.Warnings()), len(l.Errors()))
		return l.WriteEntries(w)
	})
}

// WriteSummaryLog writes the run summary to a log file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(l *ledger.Ledger, outputDir string, verbose bool) (string, error) {
	return writeLog(filepath.Join(outputDir, LogFileName("summary", l.RunID, l.StartedAt)), func(w *bufio.Writer) error {
		return l.WriteSummary(w, verbose)
	})
}

func writeLog(path string, body func(*bufio.Writer) error) (string, error) {
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := body(writer); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return path, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
