package converter

import (
	"strings"
	"testing"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/shopspring/decimal"
)

func TestFormatters(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	if got := FormatDate(types.Some(day), "20060102"); got != "20240309" {
		t.Errorf("SAP date = %q", got)
	}
	if got := FormatDate(types.Some(day), AuditDateLayout); got != "2024-03-09" {
		t.Errorf("audit date = %q", got)
	}
	if got := FormatDate(types.None[time.Time](), AuditDateLayout); got != "" {
		t.Errorf("unmapped date = %q", got)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"12.00", "12"},
		{"45.50", "45.5"},
		{"1092", "1092"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := FormatDecimal(types.Some(d)); got != tt.want {
			t.Errorf("FormatDecimal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if FormatDecimal(types.None[decimal.Decimal]()) != "" {
		t.Error("unmapped decimal should be empty")
	}

	if FormatText(types.None[string]()) != "" || FormatText(types.Some("x")) != "x" {
		t.Error("FormatText")
	}
}

func TestTables_ColumnCounts(t *testing.T) {
	if len(CompiledColumns) != 14 || len(ManagedColumns) != 18 || len(HeaderColumns) != 18 || len(DetailColumns) != 11 {
		t.Fatalf("column counts = %d, %d, %d, %d",
			len(CompiledColumns), len(ManagedColumns), len(HeaderColumns), len(DetailColumns))
	}

	e := enrichedLine("PO1", "ITM1", 3, types.MaterialValid)
	e.Status = types.Some("Active")

	managed, err := ManagedTable("managed", []types.EnrichedPORecord{e})
	if err != nil {
		t.Fatalf("ManagedTable error: %v", err)
	}
	row := managed.Rows[0]
	if len(row) != len(ManagedColumns) {
		t.Fatalf("managed row width = %d", len(row))
	}
	if row[14] != "ITM1" || row[15] != "CUST7" || row[16] != "2024-01-09" || row[17] != "Active" {
		t.Errorf("join columns = %v", row[14:])
	}

	header, err := HeaderTable("hdr", defaultProjector().Headers([]types.EnrichedPORecord{e}))
	if err != nil {
		t.Fatalf("HeaderTable error: %v", err)
	}
	if len(header.Rows[0]) != len(HeaderColumns) {
		t.Errorf("header row width = %d", len(header.Rows[0]))
	}

	detail, err := DetailTable("dtl", defaultProjector().Details([]types.EnrichedPORecord{e}))
	if err != nil {
		t.Fatalf("DetailTable error: %v", err)
	}
	if len(detail.Rows[0]) != len(DetailColumns) {
		t.Errorf("detail row width = %d", len(detail.Rows[0]))
	}
}

func TestBuildTable_RejectsRowOfWrongWidth(t *testing.T) {
	layout := func(s string) []string { return strings.Split(s, "|") }

	table, err := buildTable("t", []string{"A", "B"}, []string{"1|2", "3|4"}, layout)
	if err != nil || table.Len() != 2 {
		t.Fatalf("buildTable = %v, %v", table, err)
	}

	if _, err := buildTable("t", []string{"A", "B"}, []string{"1|2", "3"}, layout); err == nil ||
		!strings.Contains(err.Error(), "row 2") {
		t.Fatalf("want row 2 width error, got %v", err)
	}
}

func TestBuildOutputTables_WriteOrder(t *testing.T) {
	e := enrichedLine("PO1", "ITM1", 3, types.MaterialValid)
	e.Status = types.Some("Active")

	out := config.Default().Output
	tables, err := buildOutputTables(out, []types.PORecord{e.PORecord}, []types.EnrichedPORecord{e}, defaultProjector())
	if err != nil {
		t.Fatalf("buildOutputTables error: %v", err)
	}

	want := []string{out.CompiledFile, out.ManagedFile, out.HeaderFile, out.DetailFile}
	for i, table := range tables {
		if table.Name != want[i] || table.Len() != 1 {
			t.Errorf("table %d = %s with %d rows", i, table.Name, table.Len())
		}
	}
}
