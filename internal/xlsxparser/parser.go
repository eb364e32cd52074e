// =============================================================================
// PO Middleware - XLSX Reference Sheet Parser
// =============================================================================
//
// This module reads the reference workbooks maintained by sales operations
// (item master, store master, SAP status master). Each lookup lives on one
// sheet, under one header row, in columns identified by their header text.
//
// SHEET STRUCTURE (example, store master sheet 2):
//
//   | Store Code | Store Name     | URC Customer Code | Del Sched  |
//   |------------|----------------|-------------------|------------|
//   | 7          | STORE SEVEN    | C-0007            | 2024-01-05 |
//   | 12         | STORE TWELVE   | C-0012            | 45300      |
//
// Cells are read raw: long barcodes stay digits instead of being rendered in
// scientific notation, and dates typed as dates come back as Excel serials.
// ParseSheetDate accepts both serials and text dates.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is the selected columns of one sheet.
type Table struct {
	// SourceFile is the path to the workbook.
	SourceFile string

	// SheetName is the name of the sheet that was read.
	SheetName string

	// Columns are the requested headers, in request order.
	Columns []string

	// Rows holds one entry per non-empty data row. Each row has exactly
	// len(Columns) trimmed cells; cells past the end of a short row are "".
	Rows []Row
}

// Row is one data row of a Table.
type Row struct {
	Cells []string

	// Line is the 1-based worksheet row number.
	Line int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadColumns reads the named columns from one sheet of a workbook.
//
// PARAMETERS:
//   - path: The path to the XLSX workbook.
//   - sheet: Sheet index and header row to use.
//   - columns: Header texts of the columns to keep.
//
// RETURNS:
//   - A pointer to the Table with the selected columns.
//   - An error wrapping types.ErrSchemaMismatch when the sheet or a column
//     is missing, or an I/O error when the workbook cannot be read.
func ReadColumns(path string, sheet config.SheetSettings, columns []string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readColumns(f, path, sheet, columns)
}

// readColumns does the work of ReadColumns on an open workbook.
func readColumns(f *excelize.File, path string, sheet config.SheetSettings, columns []string) (*Table, error) {
	sheetName := f.GetSheetName(sheet.SheetIndex)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: %s has no sheet at index %d",
			types.ErrSchemaMismatch, path, sheet.SheetIndex)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheetName, err)
	}

	if sheet.HeaderRow >= len(rows) {
		return nil, fmt.Errorf("%w: %s sheet %q has no header row %d",
			types.ErrSchemaMismatch, path, sheetName, sheet.HeaderRow)
	}

	positions, err := locateColumns(rows[sheet.HeaderRow], columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %s sheet %q: %v", types.ErrSchemaMismatch, path, sheetName, err)
	}

	table := &Table{
		SourceFile: path,
		SheetName:  sheetName,
		Columns:    columns,
	}

	for i := sheet.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		cells := make([]string, len(positions))
		for j, pos := range positions {
			if pos < len(row) {
				cells[j] = strings.TrimSpace(row[pos])
			}
		}

		table.Rows = append(table.Rows, Row{Cells: cells, Line: i + 1})
	}

	return table, nil
}

// locateColumns maps each requested header to its position in the header row.
func locateColumns(header []string, columns []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	positions := make([]int, len(columns))
	var missing []string
	for i, name := range columns {
		pos, ok := index[strings.TrimSpace(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		positions[i] = pos
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing column(s) %s", strings.Join(quoteAll(missing), ", "))
	}
	return positions, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ParseSheetDate converts a raw date cell to a calendar date.
// Numeric cells are treated as Excel serial dates; anything else is tried
// against layouts in order. The time of day is dropped.
//
// RETURNS:
//   - The date and true, or the zero time and false when the cell is empty
//     or matches no format.
func ParseSheetDate(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return truncateDay(t), true
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return truncateDay(t), true
		}
	}

	return time.Time{}, false
}

// truncateDay keeps the calendar date of t, in UTC.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
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

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Quote(v)
	}
	return out
}
