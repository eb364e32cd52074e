// =============================================================================
// PO Middleware - Batch Driver
// =============================================================================
//
// This module runs one batch: every PO export in the source folder becomes
// one in-memory table, which is enriched and projected into the four output
// files.
//
// CONVERSION PIPELINE:
//   1. Discover and extract the source files            (stage "extract")
//   2. Load the item, store and status masters           (stage "load-lookups")
//   3. Join every record against the lookup tables       (stage "join")
//   4. Filter, deduplicate and project the SAP tables    (stage "project")
//   5. Review unmapped fields for the exception log
//   6. Write the compiled, managed, ORDERHDR and ORDERDTL
//      files, then the exception log                     (stage "write")
//   7. Archive the source files (optional)
//
// The run summary and the metrics textfile are written whether or not the
// run succeeds. Output files are written one after the other; when a write
// fails, Result.OutputFiles lists the files that already exist.
//
// CONCURRENCY:
//   None. A run is a single linear pass. The context is checked between
//   stages and between source files.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/csvwriter"
	"github.com/edisonbriones/po-middleware/internal/extractor"
	"github.com/edisonbriones/po-middleware/internal/lookup"
	"github.com/edisonbriones/po-middleware/internal/metrics"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/edisonbriones/po-middleware/internal/validation"
	"github.com/edisonbriones/po-middleware/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a batch run.
type Result struct {
	// RunID identifies the run in logs, the exception log and the summary.
	RunID string

	StartTime time.Time
	EndTime   time.Time

	// SourceFiles lists the discovered PO exports, sorted by name.
	SourceFiles []string

	// SkippedFiles lists source files that had no data rows.
	SkippedFiles []string

	// OutputFiles lists every file written so far, in write order.
	OutputFiles []string

	// ArchivedFiles lists where source files were moved to.
	ArchivedFiles []string

	// ExceptionLog and SummaryFile are empty when not written.
	ExceptionLog string
	SummaryFile  string

	// Review holds the exceptions found in the enriched records.
	Review *validation.Result

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	RecordsExtracted int

	// Join counts lookup misses and material states.
	Join JoinStats

	// Lookups describes the loaded tables.
	Lookups []utils.LookupInfo

	// FilteredRecords is the number of records that passed the shared filter.
	FilteredRecords int

	HeaderRows int
	DetailRows int

	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options changes how a run treats its outputs.
type Options struct {
	// DryRun runs every stage but writes nothing except the metrics file.
	DryRun bool

	// Archive moves source files to the archive folder after a successful run.
	Archive bool
}

// Converter runs batches for one configuration.
type Converter struct {
	cfg     *config.Config
	opts    Options
	log     zerolog.Logger
	files   *utils.FileManager
	metrics *metrics.Registry

	// now is replaced in tests.
	now func() time.Time
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter.
//
// PARAMETERS:
//   - cfg: The run configuration. cfg.Paths must already be resolved.
//   - log: Receives per-stage progress.
//   - opts: Dry-run and archive switches.
//
// RETURNS:
//   - A new Converter instance.
func New(cfg *config.Config, log zerolog.Logger, opts Options) *Converter {
	return &Converter{
		cfg:     cfg,
		opts:    opts,
		log:     log,
		files:   utils.NewFileManager(cfg.Paths.SourceDir, cfg.Paths.OutputDir, cfg.Paths.ArchiveDir),
		metrics: metrics.NewRegistry(),
		now:     time.Now,
	}
}

// Metrics returns the counters of the last run.
func (c *Converter) Metrics() *metrics.Registry {
	return c.metrics
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the batch.
//
// RETURNS:
//   - A Result describing what was read and written. It is never nil.
//   - A *types.StageError when a stage failed.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		StartTime: c.now(),
	}
	log := c.log.With().Str("run_id", result.RunID).Logger()

	log.Info().
		Str("source_dir", c.cfg.Paths.SourceDir).
		Str("output_dir", c.cfg.Paths.OutputDir).
		Bool("dry_run", c.opts.DryRun).
		Msg("batch started")

	err := c.run(ctx, result, log)

	result.EndTime = c.now()
	result.Stats.ProcessingTime = result.EndTime.Sub(result.StartTime)
	c.finish(result, err, log)

	return result, err
}

// run executes the stages in order and stops at the first failure.
func (c *Converter) run(ctx context.Context, result *Result, log zerolog.Logger) error {
	// =========================================================================
	// STEP 1: EXTRACT
	// =========================================================================

	sources, err := c.files.DiscoverInputFiles(c.cfg.Source.Pattern)
	if err != nil {
		return &types.StageError{Stage: types.StageExtract, Err: err}
	}
	result.SourceFiles = sources

	extracted, err := extractor.Extract(ctx, sources, c.cfg.Source, log)
	if err != nil {
		return &types.StageError{Stage: types.StageExtract, Err: err}
	}
	result.SkippedFiles = extracted.SkippedFiles
	result.Stats.RecordsExtracted = len(extracted.Records)

	c.metrics.SourceFiles.WithLabelValues("read").Add(float64(extracted.FilesRead))
	c.metrics.SourceFiles.WithLabelValues("skipped").Add(float64(len(extracted.SkippedFiles)))

	log.Info().
		Int("files", extracted.FilesRead).
		Int("skipped", len(extracted.SkippedFiles)).
		Int("rows", len(extracted.Records)).
		Msg("source files extracted")

	// =========================================================================
	// STEP 2: LOAD LOOKUP TABLES
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return &types.StageError{Stage: types.StageLoadLookups, Err: err}
	}

	tables, err := lookup.Load(lookup.Sources{
		ItemMaster:   c.cfg.Paths.ItemMasterFile,
		StoreMaster:  c.cfg.Paths.StoreMasterFile,
		StatusMaster: c.cfg.Paths.StatusMasterFile,
	}, c.cfg)
	if err != nil {
		return &types.StageError{Stage: types.StageLoadLookups, Err: err}
	}

	result.Stats.Lookups = DescribeTables(tables)
	for _, info := range result.Stats.Lookups {
		log.Debug().Str("table", info.Name).Int("entries", info.Entries).Int("dropped", info.Dropped).Msg("lookup table loaded")
	}

	// =========================================================================
	// STEP 3: JOIN
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return &types.StageError{Stage: types.StageJoin, Err: err}
	}

	enriched, stats := Join(extracted.Records, tables, c.cfg.Policy.ExcludedStatus)
	result.Stats.Join = stats
	c.recordJoin(stats)

	log.Info().
		Int("rows", len(enriched)).
		Dict("misses", zerolog.Dict().
			Int(lookup.ItemTableName, stats.ItemMisses).
			Int(lookup.CustomerTableName, stats.CustomerMisses).
			Int(lookup.DeliveryTableName, stats.DeliveryMisses).
			Int(lookup.StatusTableName, stats.StatusMisses)).
		Int("excluded", stats.Excluded).
		Int("unknown", stats.Unknown).
		Msg("records joined")

	// =========================================================================
	// STEP 4: PROJECT
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return &types.StageError{Stage: types.StageProject, Err: err}
	}

	projector := NewProjector(c.cfg.SAP, c.cfg.Policy)
	result.Stats.FilteredRecords = len(projector.Filter(enriched))

	out := c.cfg.Output
	tablesOut, err := buildOutputTables(out, extracted.Records, enriched, projector)
	if err != nil {
		return &types.StageError{Stage: types.StageProject, Err: err}
	}
	result.Stats.HeaderRows = tablesOut[2].Len()
	result.Stats.DetailRows = tablesOut[3].Len()

	log.Info().
		Int("filtered", result.Stats.FilteredRecords).
		Int("header_rows", result.Stats.HeaderRows).
		Int("detail_rows", result.Stats.DetailRows).
		Msg("order tables projected")

	// =========================================================================
	// STEP 5: REVIEW
	// =========================================================================

	result.Review = validation.Review(enriched, c.cfg.Policy)
	c.metrics.Exceptions.Add(float64(len(result.Review.Exceptions)))
	if result.Review.WarningCount > 0 {
		log.Warn().
			Int("warnings", result.Review.WarningCount).
			Int("records", result.Review.RecordsWithWarnings).
			Str("kinds", validation.FormatCounts(result.Review.CountByKind())).
			Msg("records with unmapped fields")
	}

	if c.opts.DryRun {
		log.Info().Msg("dry run, no files written")
		return nil
	}

	// =========================================================================
	// STEP 6: WRITE
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return &types.StageError{Stage: types.StageWrite, Err: err}
	}

	if err := c.files.EnsureDirectories(); err != nil {
		return &types.StageError{Stage: types.StageWrite, Err: err}
	}

	for _, table := range tablesOut {
		path := filepath.Join(c.cfg.Paths.OutputDir, table.Name)
		if err := csvwriter.WriteFile(path, table); err != nil {
			return &types.StageError{Stage: types.StageWrite, Err: err}
		}
		result.OutputFiles = append(result.OutputFiles, path)
		c.metrics.OutputRows.WithLabelValues(table.Name).Add(float64(table.Len()))
		log.Info().Str("file", path).Int("rows", table.Len()).Msg("output written")
	}

	logPath, err := utils.WriteExceptionLog(exceptionEntries(result.Review), c.cfg.Paths.OutputDir, result.RunID, result.StartTime)
	if err != nil {
		return &types.StageError{Stage: types.StageWrite, Err: err}
	}
	result.ExceptionLog = logPath

	// =========================================================================
	// STEP 7: ARCHIVE
	// =========================================================================

	if c.opts.Archive {
		c.archive(result, log)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// archive moves every source file to the archive folder. Failures are
// logged; the outputs are already complete.
func (c *Converter) archive(result *Result, log zerolog.Logger) {
	if c.cfg.Paths.ArchiveDir == "" {
		log.Warn().Msg("archive requested but no archive folder configured")
		return
	}

	for _, path := range result.SourceFiles {
		archived, err := c.files.ArchiveInputFile(path, result.StartTime)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("failed to archive source file")
			continue
		}
		result.ArchivedFiles = append(result.ArchivedFiles, archived)
	}
}

// finish writes the run summary and the metrics file. Neither can change
// the outcome of the run.
func (c *Converter) finish(result *Result, runErr error, log zerolog.Logger) {
	success := 0.0
	if runErr == nil {
		success = 1
	}
	c.metrics.LastRunSuccess.Set(success)
	c.metrics.LastRunUnixTime.Set(float64(result.EndTime.Unix()))
	c.metrics.RunDurationSec.Set(result.Stats.ProcessingTime.Seconds())

	if c.cfg.MetricsFile != "" {
		if err := c.metrics.WriteTextfile(c.cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Msg("metrics not written")
		}
	}

	if c.opts.DryRun || c.cfg.Paths.OutputDir == "" {
		return
	}
	if err := c.files.EnsureDirectories(); err != nil {
		log.Warn().Err(err).Msg("run summary not written")
		return
	}

	path, err := utils.WriteSummaryLog(c.summary(result, runErr), c.cfg.Paths.OutputDir)
	if err != nil {
		log.Warn().Err(err).Msg("run summary not written")
		return
	}
	result.SummaryFile = path
}

// summary flattens a result for the summary file.
func (c *Converter) summary(result *Result, runErr error) utils.RunSummary {
	s := utils.RunSummary{
		RunID:            result.RunID,
		StartTime:        result.StartTime,
		EndTime:          result.EndTime,
		DryRun:           c.opts.DryRun,
		SourceFiles:      result.SourceFiles,
		SkippedFiles:     result.SkippedFiles,
		ArchivedFiles:    result.ArchivedFiles,
		RecordsExtracted: result.Stats.RecordsExtracted,
		Lookups:          result.Stats.Lookups,
		ItemMisses:       result.Stats.Join.ItemMisses,
		CustomerMisses:   result.Stats.Join.CustomerMisses,
		DeliveryMisses:   result.Stats.Join.DeliveryMisses,
		StatusMisses:     result.Stats.Join.StatusMisses,
		ValidRecords:     result.Stats.Join.Valid,
		ExcludedRecords:  result.Stats.Join.Excluded,
		UnknownRecords:   result.Stats.Join.Unknown,
		FilteredRecords:  result.Stats.FilteredRecords,
		HeaderRows:       result.Stats.HeaderRows,
		DetailRows:       result.Stats.DetailRows,
		OutputFiles:      result.OutputFiles,
	}
	if result.Review != nil {
		s.Warnings = result.Review.WarningCount
		s.Infos = result.Review.InfoCount
	}
	if result.ExceptionLog != "" {
		s.OutputFiles = append(append([]string{}, s.OutputFiles...), result.ExceptionLog)
	}

	if runErr != nil {
		s.Failure = runErr.Error()
		var stageErr *types.StageError
		if errors.As(runErr, &stageErr) {
			s.FailedStage = string(stageErr.Stage)
			s.Failure = stageErr.Err.Error()
		}
	}

	return s
}

// recordJoin copies join counters into the metrics registry.
func (c *Converter) recordJoin(stats JoinStats) {
	c.metrics.Records.WithLabelValues(types.MaterialValid.String()).Add(float64(stats.Valid))
	c.metrics.Records.WithLabelValues(types.MaterialExcluded.String()).Add(float64(stats.Excluded))
	c.metrics.Records.WithLabelValues(types.MaterialUnknown.String()).Add(float64(stats.Unknown))

	c.metrics.LookupMisses.WithLabelValues(lookup.ItemTableName).Add(float64(stats.ItemMisses))
	c.metrics.LookupMisses.WithLabelValues(lookup.CustomerTableName).Add(float64(stats.CustomerMisses))
	c.metrics.LookupMisses.WithLabelValues(lookup.DeliveryTableName).Add(float64(stats.DeliveryMisses))
	c.metrics.LookupMisses.WithLabelValues(lookup.StatusTableName).Add(float64(stats.StatusMisses))
}

// DescribeTables lists table sizes for logs and the summary.
func DescribeTables(t *lookup.Tables) []utils.LookupInfo {
	return []utils.LookupInfo{
		{Name: t.Items.Name(), Entries: t.Items.Len(), Dropped: t.Items.Dropped()},
		{Name: t.Customers.Name(), Entries: t.Customers.Len(), Dropped: t.Customers.Dropped()},
		{Name: t.Deliveries.Name(), Entries: t.Deliveries.Len(), Dropped: t.Deliveries.Dropped()},
		{Name: t.Statuses.Name(), Entries: t.Statuses.Len(), Dropped: t.Statuses.Dropped()},
	}
}

// exceptionEntries converts review exceptions to exception log entries.
func exceptionEntries(review *validation.Result) []utils.ErrorLogEntry {
	if review == nil {
		return nil
	}

	entries := make([]utils.ErrorLogEntry, 0, len(review.Exceptions))
	for _, e := range review.Exceptions {
		entries = append(entries, utils.ErrorLogEntry{
			Severity:     e.Severity,
			FileName:     filepath.Base(e.SourceFile),
			ErrorType:    e.Kind,
			ErrorMessage: e.Message,
			RowNumber:    e.SourceLine,
			FieldName:    e.Field,
			FieldValue:   e.Value,
			PONumber:     e.PONumber,
			LineNumber:   e.LineNumber,
		})
	}
	return entries
}

// FailedStage returns the stage named by err, or "" if err is not a StageError.
func FailedStage(err error) types.Stage {
	var stageErr *types.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// String renders the stats on one line for console output.
func (s ProcessingStats) String() string {
	return fmt.Sprintf("%d records, %d excluded, %d unknown, %d header rows, %d detail rows",
		s.RecordsExtracted, s.Join.Excluded, s.Join.Unknown, s.HeaderRows, s.DetailRows)
}
