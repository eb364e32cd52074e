// =============================================================================
// PO Middleware - Record Extractor
// =============================================================================
//
// This module turns the raw PO export files into normalized PORecords.
//
// PROCESSING FLOW:
//   1. Each file is read headerless, keeping the ten positional columns below
//   2. The two compound cells are decoded (see cells.go)
//   3. Dates, quantities and amounts are parsed; failures leave the field unmapped
//   4. Records are concatenated in file order, then in-file order
//
// A row that stops before some positional column leaves those fields unmapped.
// A file where no row reaches the last positional column aborts the run with
// types.ErrSchemaMismatch. A file with no data rows is skipped.
//
// =============================================================================

package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/csvparser"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/rs/zerolog"
)

// Positions of the retained columns in the source export.
const (
	ColPODate     = 0
	ColPONumber   = 1
	ColDelDate    = 10
	ColCancelDate = 14
	ColStore      = 16
	ColLineNumber = 17
	ColBarcode    = 18
	ColMaterial   = 19
	ColQty        = 20
	ColAmount     = 25
)

// SourceColumns lists the retained columns. Row fields come back in this order.
var SourceColumns = []int{
	ColPODate, ColPONumber, ColDelDate, ColCancelDate, ColStore,
	ColLineNumber, ColBarcode, ColMaterial, ColQty, ColAmount,
}

// Indices into csvparser.Row.Fields.
const (
	fieldPODate = iota
	fieldPONumber
	fieldDelDate
	fieldCancelDate
	fieldStore
	fieldLineNumber
	fieldBarcode
	fieldMaterial
	fieldQty
	fieldAmount
)

// Result is the output of Extract.
type Result struct {
	// Records holds one record per retained source row.
	Records []types.PORecord

	// FilesRead counts the files that contributed at least one row.
	FilesRead int

	// SkippedFiles lists the files that had no data rows.
	SkippedFiles []string
}

// Extract reads every file in paths and returns the normalized records.
//
// PARAMETERS:
//   - ctx: Checked between files.
//   - paths: Source files, in the order their rows should appear.
//   - settings: Delimiter, encoding, PO separator and date layouts.
//   - log: Receives per-file progress and skip warnings.
//
// RETURNS:
//   - The extracted records.
//   - types.ErrNoSourceFiles when paths is empty, an error wrapping
//     types.ErrSchemaMismatch for a file too narrow throughout, or an I/O error.
func Extract(ctx context.Context, paths []string, settings config.SourceSettings, log zerolog.Logger) (*Result, error) {
	if len(paths) == 0 {
		return nil, types.ErrNoSourceFiles
	}

	result := &Result{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := csvparser.ParsePositional(path, settings, SourceColumns)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file %s: %w", path, err)
		}

		if len(data.Rows) == 0 {
			log.Warn().Str("file", path).Msg("source file has no data rows, skipping")
			result.SkippedFiles = append(result.SkippedFiles, path)
			continue
		}

		for _, row := range data.Rows {
			if row.Short(SourceColumns) {
				log.Debug().Str("file", path).Int("line", row.Line).Int("columns", row.Width).
					Msg("short row, missing columns left unmapped")
			}
			result.Records = append(result.Records, normalizeRow(row, path, settings))
		}
		result.FilesRead++

		if data.ShortRows > 0 {
			log.Warn().Str("file", path).Int("short_rows", data.ShortRows).
				Msgf("%d row(s) shorter than %d columns", data.ShortRows, ColAmount+1)
		}

		log.Debug().Str("file", path).Int("rows", len(data.Rows)).Msg("source file extracted")
	}

	return result, nil
}

// normalizeRow builds a PORecord from one retained row.
func normalizeRow(row csvparser.Row, path string, settings config.SourceSettings) types.PORecord {
	f := row.Fields

	store := ParseStoreCell(f[fieldStore])
	material := ParseMaterialCell(f[fieldMaterial])

	return types.PORecord{
		PODate:       ParseDate(f[fieldPODate], settings.DateLayouts),
		PONumber:     NormalizePONumber(f[fieldPONumber], settings.POSeparator),
		DeliveryDate: ParseDate(f[fieldDelDate], settings.DateLayouts),
		CancelDate:   ParseDate(f[fieldCancelDate], settings.DateLayouts),

		StoreCode: store.Code,
		StoreName: store.Name,

		LineNumber: strings.TrimSpace(f[fieldLineNumber]),
		Barcode:    strings.TrimSpace(f[fieldBarcode]),
		Qty:        ParseDecimal(f[fieldQty]),

		MaterialDescription: material.Description,
		SKUCode:             material.SKUCode,
		Packing:             material.Packing,
		UnitPrice:           material.UnitPrice,

		Amount: ParseDecimal(f[fieldAmount]),

		SourceFile: path,
		SourceLine: row.Line,
	}
}
