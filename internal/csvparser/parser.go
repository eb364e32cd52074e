// =============================================================================
// PO Middleware - CSV Parser Module
// =============================================================================
//
// This module reads the headerless PO export files produced by the retail
// EDI feed. The export is wider than what the pipeline needs, so callers ask
// for a set of positional columns and receive only those, in request order.
//
// FEATURES:
//   - Configurable delimiter and character encoding
//   - Ragged rows are tolerated: a requested column a row does not reach
//     comes back as "" and the row is counted as short
//   - A file whose rows never reach the widest requested column is a
//     schema mismatch
//   - Blank lines are skipped
//   - Each row remembers its physical line number for error reporting
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
	"golang.org/x/text/encoding/htmlindex"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// Row is one retained source row.
type Row struct {
	// Fields holds the requested columns in request order.
	Fields []string

	// Line is the 1-based line in the file where the row starts.
	Line int

	// Width is the number of columns the source row actually had.
	// Requested columns at or beyond Width are "".
	Width int
}

// Short reports whether the row stopped before some requested column.
func (r Row) Short(columns []int) bool {
	for _, c := range columns {
		if c >= r.Width {
			return true
		}
	}
	return false
}

// CSVData represents one parsed source file.
type CSVData struct {
	// SourceFile is the path to the source CSV file.
	SourceFile string

	// Columns are the positional indices that were retained.
	Columns []int

	// Rows contains the retained data rows.
	Rows []Row

	// ShortRows counts the rows that did not reach every requested column.
	ShortRows int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParsePositional reads a headerless delimited file and keeps only the
// requested columns.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding of the export.
//   - columns: 0-based positional indices to retain.
//
// RETURNS:
//   - A pointer to the CSVData struct containing the retained rows.
//   - An error wrapping types.ErrSchemaMismatch if no non-blank row reaches
//     the widest requested column, or an I/O / decoding error.
func ParsePositional(filePath string, settings config.SourceSettings, columns []int) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadPositional(file, filePath, settings, columns)
}

// ReadPositional is ParsePositional over an already opened reader.
// name is only used in the returned CSVData and in error messages.
func ReadPositional(r io.Reader, name string, settings config.SourceSettings, columns []int) (*CSVData, error) {
	decoded, err := decodingReader(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	width := 0
	for _, c := range columns {
		if c+1 > width {
			width = c + 1
		}
	}

	data := &CSVData{
		SourceFile: name,
		Columns:    columns,
	}
	wideEnough := false

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if isRowEmpty(record) {
			continue
		}

		line, _ := csvReader.FieldPos(0)

		if len(record) >= width {
			wideEnough = true
		} else {
			data.ShortRows++
		}

		fields := make([]string, len(columns))
		for i, c := range columns {
			if c < len(record) {
				fields[i] = record[c]
			}
		}

		data.Rows = append(data.Rows, Row{Fields: fields, Line: line, Width: len(record)})
	}

	if len(data.Rows) > 0 && !wideEnough {
		return nil, fmt.Errorf("%w: %s has no row with %d columns",
			types.ErrSchemaMismatch, name, width)
	}

	return data, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.SourceSettings) {
	// Aliases such as "tab" are resolved by config.Load.
	reader.Comma = ','
	if d := []rune(settings.Delimiter); len(d) == 1 {
		reader.Comma = d[0]
	}

	// Short rows are padded per requested column instead.
	reader.FieldsPerRecord = -1

	// EDI exports occasionally carry stray quotes inside description cells.
	reader.LazyQuotes = true
}

// decodingReader wraps r so that it yields UTF-8 for the named encoding.
// A leading UTF-8 byte order mark is dropped.
func decodingReader(r *bufio.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		if bom, err := r.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
			_, _ = r.Discard(3)
		}
		return r, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}
	return enc.NewDecoder().Reader(r), nil
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
