// =============================================================================
// PO Middleware - CSV Writer Module
// =============================================================================
//
// This module writes the four output tables (compiled, managed, ORDERHDR,
// ORDERDTL). Every table is written the same way:
//
//   - comma separated, RFC 4180 quoting
//   - one header row with the column names
//   - no index column
//   - unmapped values as empty cells
//
// Tables are assembled as gota DataFrames of string series so the column
// layout is checked (equal lengths, one name per column) before anything
// touches the disk.
//
// =============================================================================

package csvwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a named set of string columns, filled row by row.
type Table struct {
	// Name identifies the table in logs and errors.
	Name string

	// Columns are the header names, in output order.
	Columns []string

	// Rows holds the cells; each row has len(Columns) entries.
	Rows [][]string
}

// NewTable returns an empty table with the given columns.
func NewTable(name string, columns []string) *Table {
	return &Table{Name: name, Columns: columns}
}

// Append adds one row. It returns an error when the row width does not
// match the column count.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("%s: row has %d cells, want %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// DataFrame converts the table to a gota DataFrame with one string series
// per column.
func (t *Table) DataFrame() (dataframe.DataFrame, error) {
	columns := make([]series.Series, len(t.Columns))
	for c, name := range t.Columns {
		values := make([]string, len(t.Rows))
		for r, row := range t.Rows {
			values[r] = row[c]
		}
		columns[c] = series.New(values, series.String, name)
	}

	df := dataframe.New(columns...)
	if df.Err != nil {
		return df, fmt.Errorf("%s: %w", t.Name, df.Err)
	}
	return df, nil
}

// Write writes the table as CSV to w.
func Write(w io.Writer, t *Table) error {
	df, err := t.DataFrame()
	if err != nil {
		return err
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.Name, err)
	}
	return nil
}

// WriteFile writes the table as CSV to path, replacing any existing file.
//
// PARAMETERS:
//   - path: The output file path.
//   - t: The table to write.
//
// RETURNS:
//   - An error if the file cannot be created or written.
func WriteFile(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(file, t); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
