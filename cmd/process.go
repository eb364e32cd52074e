// =============================================================================
// PO Middleware - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs one batch over every
// PO export in the source folder.
//
// COMMAND USAGE:
//   po-middleware process [flags]
//
// FLAGS:
//   --source-dir     : Folder holding the PO export files (*.csv)
//   --item-master    : Item master workbook (barcode -> URC code)
//   --store-master   : Store master workbook (store -> customer, delivery)
//   --status-master  : SAP status workbook (URC code -> status)
//   --output-dir     : Folder receiving the four output files
//   --archive-dir    : Folder receiving processed source files
//   --archive        : Move source files to the archive folder on success
//   --dry-run        : Run every stage without writing output files
//   --no-prompt      : Fail instead of prompting for a missing path
//
// PROCESSING PIPELINE:
//   1. Load configuration (file, POMW_* environment, flags)
//   2. Resolve any path still missing, in the fixed picker order
//   3. Run the batch (see internal/converter)
//   4. Print the summary, including the failed stage and the files already
//      written when the run aborts
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/converter"
	"github.com/edisonbriones/po-middleware/internal/picker"
	"github.com/edisonbriones/po-middleware/internal/validation"
	"github.com/edisonbriones/po-middleware/pkg/logger"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the batch without writing output files.
var dryRun bool

// archive moves processed source files to the archive folder.
var archive bool

// noPrompt makes missing paths an error instead of a question.
var noPrompt bool

// pathFlags maps each path flag to its config override key.
var pathFlags = []struct {
	name  string
	key   string
	usage string
}{
	{"source-dir", config.KeySourceDir, "Folder holding the PO export files"},
	{"item-master", config.KeyItemMaster, "Item master workbook (barcode -> URC code)"},
	{"store-master", config.KeyStoreMaster, "Store master workbook (store code -> customer code, delivery date)"},
	{"status-master", config.KeyStatusMaster, "SAP status workbook (URC code -> SAP status)"},
	{"output-dir", config.KeyOutputDir, "Folder receiving the output files"},
	{"archive-dir", config.KeyArchiveDir, "Folder receiving processed source files (used with --archive)"},
	{"metrics-file", config.KeyMetricsFile, "Write run metrics to this file in Prometheus text format"},
}

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert the PO exports in the source folder into SAP order files",
	Long: `The process command reads every *.csv PO export in the source folder as one
batch, joins it against the three master workbooks and writes:

  - the compiled and managed audit files
  - ORDERHDR and ORDERDTL for the SAP order import
  - an exception log listing lines with unmapped fields
  - a run summary

Lines whose material has the excluded SAP status never reach ORDERHDR or
ORDERDTL. Paths not given by flag, POMW_* environment variable or config file
are asked for on the terminal, in this order: source folder, item master,
store master, status master, output folder.

On error:
  - The failed stage is reported with the output files already written
  - Source files stay in the source folder`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	for _, f := range pathFlags {
		processCmd.Flags().String(f.name, "", f.usage)
		v.BindPFlag(f.key, processCmd.Flags().Lookup(f.name))
	}

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run every stage and report counts without writing output files",
	)

	processCmd.Flags().BoolVar(
		&archive,
		"archive",
		false,
		"Move source files to the archive folder after a successful run",
	)

	processCmd.Flags().BoolVar(
		&noPrompt,
		"no-prompt",
		false,
		"Fail instead of prompting for a missing path",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess loads the configuration, resolves paths and runs the batch.
func runProcess(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: RESOLVE PATHS
	// =========================================================================

	paths, err := picker.Resolve(cfg.Paths, newPicker())
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	cfg.Paths = paths

	if archive && cfg.Paths.ArchiveDir == "" {
		return fmt.Errorf("--archive needs an archive folder (--archive-dir or paths.archive_dir)")
	}

	// =========================================================================
	// STEP 3: RUN THE BATCH
	// =========================================================================

	fmt.Println("=== PO Middleware ===")

	conv := converter.New(cfg, logger.Log, converter.Options{DryRun: dryRun, Archive: archive})
	result, runErr := conv.Run(ctx)

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	printResult(os.Stdout, result, runErr, verbose)

	if runErr != nil {
		return fmt.Errorf("batch %s failed: %w", result.RunID, runErr)
	}
	return nil
}

// newPicker returns the picker used for missing paths.
func newPicker() picker.Picker {
	if noPrompt {
		return picker.NoPrompt{}
	}
	return picker.NewPrompt(os.Stdin, os.Stderr)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// printResult prints the console summary of a run. With details set, every
// review exception is listed as well.
func printResult(w io.Writer, result *converter.Result, runErr error, details bool) {
	fmt.Fprintf(w, "\nRun ID:          %s\n", result.RunID)
	fmt.Fprintf(w, "Source files:    %d (%d skipped)\n", len(result.SourceFiles), len(result.SkippedFiles))
	fmt.Fprintf(w, "Result:          %s\n", result.Stats)

	if result.Review != nil && result.Review.WarningCount > 0 {
		fmt.Fprintf(w, "Warnings:        %d on %d line(s)\n", result.Review.WarningCount, result.Review.RecordsWithWarnings)
	}
	if details && result.Review != nil {
		fmt.Fprintf(w, "\n%s", validation.FormatExceptions(result.Review.Exceptions))
		if len(result.Review.Exceptions) == 0 {
			fmt.Fprintln(w)
		}
	}

	if len(result.OutputFiles) > 0 {
		fmt.Fprintln(w, "\nFiles written:")
		for _, path := range result.OutputFiles {
			fmt.Fprintf(w, "  ✓ %s\n", filepath.Base(path))
		}
	}
	if result.ExceptionLog != "" {
		fmt.Fprintf(w, "  ✓ %s\n", filepath.Base(result.ExceptionLog))
	}
	if result.SummaryFile != "" {
		fmt.Fprintf(w, "  ✓ %s\n", filepath.Base(result.SummaryFile))
	}
	if len(result.ArchivedFiles) > 0 {
		fmt.Fprintf(w, "\nArchived %d source file(s)\n", len(result.ArchivedFiles))
	}

	if runErr != nil {
		stage := converter.FailedStage(runErr)
		if stage == "" {
			stage = "unknown"
		}
		fmt.Fprintf(w, "\n  ✗ Stage %s failed: %v\n", stage, runErr)
		return
	}

	fmt.Fprintf(w, "\n=== Processing Complete (%s) ===\n", result.Stats.ProcessingTime)
}
