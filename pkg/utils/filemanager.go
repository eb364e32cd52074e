// =============================================================================
// PO Middleware - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for a batch run, including:
//   - Source file discovery
//   - Directory management
//   - Source file archival (moving processed PO exports)
//   - Exception log and run summary generation
//
// ARCHIVAL STRATEGY:
//   - Source files are moved to the archive directory only after all output
//     files were written, and only when an archive directory is configured
//   - Failed runs leave their source files in place
//   - Exception logs and summaries are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogTimestampLayout is used in exception log and run summary file names.
const LogTimestampLayout = "20060102_150405"

const ruler = "================================================================================\n"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a batch run.
type FileManager struct {
	// SourceDir is the directory scanned for PO export files.
	SourceDir string

	// OutputDir receives the output tables and run logs.
	OutputDir string

	// ArchiveDir receives processed source files. Empty disables archival.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/po_export.csv
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(sourceDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		SourceDir:           sourceDir,
		OutputDir:           outputDir,
		ArchiveDir:          archiveDir,
		UseTimestampSubdirs: true,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories if they
// don't exist. The source directory must already exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir, fm.ArchiveDir}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the source directory (not recursively) for
// regular files matching the pattern.
//
// PARAMETERS:
//   - pattern: A glob pattern to match files (e.g., "*.csv").
//              If empty, defaults to "*.csv".
//
// RETURNS:
//   - The matching file paths, sorted by name.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}

	info, err := os.Stat(fm.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", fm.SourceDir)
	}

	// Construct the full pattern path.
	fullPattern := filepath.Join(fm.SourceDir, pattern)

	// Find matching files.
	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	// Filter out directories.
	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a source file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//   - now: The run time, used for timestamp subdirectories.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string, now time.Time) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	// Determine the archive path.
	archivePath := fm.getArchivePath(filePath, now)

	// Ensure the archive directory exists.
	archiveDir := filepath.Dir(archivePath)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(filePath string, now time.Time) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		subDir := filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
		return filepath.Join(subDir, fileName)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// EXCEPTION LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single exception log entry.
type ErrorLogEntry struct {
	Severity     string
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
	PONumber     string
	LineNumber   string
}

// WriteExceptionLog writes exception entries to exceptions_<timestamp>.txt.
//
// PARAMETERS:
//   - entries: The entries to write.
//   - outputDir: The directory to write the log file.
//   - runID: The run identifier printed in the header.
//   - now: The run time, used in the file name and header.
//
// RETURNS:
//   - The path to the log file, or "" when there is nothing to log.
//   - An error if writing fails.
func WriteExceptionLog(entries []ErrorLogEntry, outputDir, runID string, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("exceptions_%s.txt", now.Format(LogTimestampLayout)))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create exception log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Write header.
	fmt.Fprintf(writer, "PO Middleware - Exception Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Exceptions: %d\n"+
		ruler+"\n",
		runID,
		now.Format("2006-01-02 15:04:05"),
		len(entries))

	// Write each entry.
	for i, entry := range entries {
		fmt.Fprintf(writer, "Exception #%d\n"+
			"  Severity:       %s\n"+
			"  File:           %s\n"+
			"  Type:           %s\n"+
			"  Message:        %s\n",
			i+1,
			strings.ToUpper(entry.Severity),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.PONumber != "" {
			fmt.Fprintf(writer, "  PO Number:      %s\n", entry.PONumber)
		}
		if entry.LineNumber != "" {
			fmt.Fprintf(writer, "  Line Number:    %s\n", entry.LineNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
		}

		writer.WriteString("\n")
	}

	// Write footer.
	writer.WriteString(ruler + "End of Exception Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush exception log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a batch run.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	DryRun    bool

	SourceFiles   []string
	SkippedFiles  []string
	ArchivedFiles []string

	RecordsExtracted int
	Lookups          []LookupInfo

	ItemMisses     int
	CustomerMisses int
	DeliveryMisses int
	StatusMisses   int

	ValidRecords    int
	ExcludedRecords int
	UnknownRecords  int
	FilteredRecords int

	HeaderRows int
	DetailRows int

	Warnings int
	Infos    int

	OutputFiles []string

	// FailedStage and Failure are set when the run aborted.
	FailedStage string
	Failure     string
}

// LookupInfo describes one loaded lookup table.
type LookupInfo struct {
	Name    string
	Entries int
	Dropped int
}

// WriteSummaryLog writes a run summary to run_summary_<timestamp>.txt.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("run_summary_%s.txt", summary.StartTime.Format(LogTimestampLayout)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	FormatSummary(writer, summary)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// FormatSummary writes the human-readable summary to w.
func FormatSummary(w io.Writer, summary RunSummary) {
	status := "SUCCESS"
	if summary.Failure != "" {
		status = "FAILED"
	}
	if summary.DryRun {
		status += " (dry run)"
	}

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(w, "PO Middleware - Run Summary\n"+
		ruler+"\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Status:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n",
		summary.RunID,
		status,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String())

	if summary.Failure != "" {
		fmt.Fprintf(w, "Failure:\n"+
			"  Stage:          %s\n"+
			"  Error:          %s\n\n",
			summary.FailedStage,
			summary.Failure)
	}

	fmt.Fprintf(w, "Statistics:\n"+
		"  Source Files:       %d\n"+
		"  Skipped Files:      %d\n"+
		"  Records Extracted:  %d\n"+
		"  Valid Records:      %d\n"+
		"  Excluded Records:   %d\n"+
		"  Unknown Records:    %d\n"+
		"  Filtered Records:   %d\n"+
		"  Item Misses:        %d\n"+
		"  Customer Misses:    %d\n"+
		"  Delivery Misses:    %d\n"+
		"  Status Misses:      %d\n"+
		"  Header Rows:        %d\n"+
		"  Detail Rows:        %d\n"+
		"  Warnings:           %d\n"+
		"  Info:               %d\n\n",
		len(summary.SourceFiles),
		len(summary.SkippedFiles),
		summary.RecordsExtracted,
		summary.ValidRecords,
		summary.ExcludedRecords,
		summary.UnknownRecords,
		summary.FilteredRecords,
		summary.ItemMisses,
		summary.CustomerMisses,
		summary.DeliveryMisses,
		summary.StatusMisses,
		summary.HeaderRows,
		summary.DetailRows,
		summary.Warnings,
		summary.Infos)

	if len(summary.Lookups) > 0 {
		fmt.Fprint(w, "Lookup Tables:\n")
		for _, l := range summary.Lookups {
			fmt.Fprintf(w, "  %-16s %d entries, %d rows dropped\n", l.Name, l.Entries, l.Dropped)
		}
		fmt.Fprint(w, "\n")
	}

	writeList(w, "Source Files:", summary.SourceFiles)
	writeList(w, "Skipped Files:", summary.SkippedFiles)
	writeList(w, "Output Files:", summary.OutputFiles)
	writeList(w, "Archived Files:", summary.ArchivedFiles)

	fmt.Fprint(w, ruler+"End of Summary\n")
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprint(w, "--------------------------------------------------------------------------------\n")
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
	fmt.Fprint(w, "\n")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
