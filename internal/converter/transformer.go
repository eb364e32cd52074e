// =============================================================================
// PO Middleware - Value Transformation
// =============================================================================
//
// This module turns typed record values into output cells and defines the
// column layout of the four output tables.
//
// CELL RULES:
//   - Unmapped values (lookup misses, unparsable cells) become empty cells
//   - Audit files (compiled, managed) write dates as YYYY-MM-DD
//   - ORDERHDR writes dates in the configured SAP layout (YYYYMMDD)
//   - Quantities and amounts are written without trailing zeros ("12", "45.5")
//
// =============================================================================

package converter

import (
	"fmt"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/csvwriter"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/shopspring/decimal"
)

// AuditDateLayout is the date format of the compiled and managed files.
const AuditDateLayout = "2006-01-02"

// =============================================================================
// OUTPUT COLUMNS
// =============================================================================

// CompiledColumns is the column order of the compiled (normalized) file.
var CompiledColumns = []string{
	"PO Date", "PO Number", "Del Date", "Cancel Date", "Store Code", "Store Name",
	"Line number", "Barcode", "Qty", "Material Description", "SKU Code",
	"Packing", "Unit Price", "Amount",
}

// ManagedColumns is the compiled layout followed by the joined columns.
var ManagedColumns = append(append([]string{}, CompiledColumns...),
	"Mapped Item Code", "Mapped Customer Code", "Mapped delivery Date", "Status",
)

// HeaderColumns is the ORDERHDR layout.
var HeaderColumns = []string{
	"PO Number", "Order Type", "Order Reason", "Sales Org", "Dist Channel",
	"Division", "Sales Group", "Sales Office", "Del Date", "PO Type", "PO Date",
	"Soldto", "Shipto", "Credit Ctrl Area", "Mster contract number",
	"Ref.Doc.No", "zounr", "REMARKS",
}

// DetailColumns is the ORDERDTL layout.
var DetailColumns = []string{
	"PO Number", "Material Number", "Qty", "Unit", "Remarks", "MatGrp5",
	"CondGrp1", "IO Number", "Condition Type", "Amount", "Currency",
}

// =============================================================================
// CELL FORMATTERS
// =============================================================================

// FormatDate renders a date with layout, or "" when unmapped.
func FormatDate(v types.Optional[time.Time], layout string) string {
	if t, ok := v.Get(); ok {
		return t.Format(layout)
	}
	return ""
}

// FormatDecimal renders a number without trailing zeros, or "" when unmapped.
func FormatDecimal(v types.Optional[decimal.Decimal]) string {
	if d, ok := v.Get(); ok {
		return d.String()
	}
	return ""
}

// FormatText renders optional text, or "" when unmapped.
func FormatText(v types.Text) string {
	return v.OrElse("")
}

// =============================================================================
// ROW BUILDERS
// =============================================================================

func compiledRow(r types.PORecord) []string {
	return []string{
		FormatDate(r.PODate, AuditDateLayout),
		r.PONumber,
		FormatDate(r.DeliveryDate, AuditDateLayout),
		FormatDate(r.CancelDate, AuditDateLayout),
		FormatText(r.StoreCode),
		FormatText(r.StoreName),
		r.LineNumber,
		r.Barcode,
		FormatDecimal(r.Qty),
		FormatText(r.MaterialDescription),
		FormatText(r.SKUCode),
		FormatText(r.Packing),
		FormatText(r.UnitPrice),
		FormatDecimal(r.Amount),
	}
}

func managedRow(e types.EnrichedPORecord) []string {
	return append(compiledRow(e.PORecord),
		FormatText(e.MappedItemCode),
		FormatText(e.MappedCustomerCode),
		FormatDate(e.MappedDeliveryDate, AuditDateLayout),
		FormatText(e.Status),
	)
}

func headerRow(h types.OrderHeaderRecord) []string {
	return []string{
		h.PONumber, h.OrderType, h.OrderReason, h.SalesOrg, h.DistChannel,
		h.Division, h.SalesGroup, h.SalesOffice, h.DelDate, h.POType, h.PODate,
		h.SoldTo, h.ShipTo, h.CreditCtrlArea, h.MasterContractNumber,
		h.RefDocNo, h.Zounr, h.Remarks,
	}
}

func detailRow(d types.OrderDetailRecord) []string {
	return []string{
		d.PONumber, d.MaterialNumber, d.Qty, d.Unit, d.Remarks, d.MatGrp5,
		d.CondGrp1, d.IONumber, d.ConditionType, d.Amount, d.Currency,
	}
}

// =============================================================================
// TABLE BUILDERS
// =============================================================================

// buildTable lays out items with layout, one row each.
func buildTable[T any](name string, columns []string, items []T, layout func(T) []string) (*csvwriter.Table, error) {
	t := csvwriter.NewTable(name, columns)
	for i, item := range items {
		if err := t.Append(layout(item)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return t, nil
}

// CompiledTable lays out the normalized records.
func CompiledTable(name string, records []types.PORecord) (*csvwriter.Table, error) {
	return buildTable(name, CompiledColumns, records, compiledRow)
}

// ManagedTable lays out the enriched records.
func ManagedTable(name string, records []types.EnrichedPORecord) (*csvwriter.Table, error) {
	return buildTable(name, ManagedColumns, records, managedRow)
}

// HeaderTable lays out ORDERHDR.
func HeaderTable(name string, headers []types.OrderHeaderRecord) (*csvwriter.Table, error) {
	return buildTable(name, HeaderColumns, headers, headerRow)
}

// DetailTable lays out ORDERDTL.
func DetailTable(name string, details []types.OrderDetailRecord) (*csvwriter.Table, error) {
	return buildTable(name, DetailColumns, details, detailRow)
}

// buildOutputTables lays out the four output files in write order:
// compiled, managed, ORDERHDR, ORDERDTL.
func buildOutputTables(out config.OutputSettings, records []types.PORecord, enriched []types.EnrichedPORecord, p *Projector) ([]*csvwriter.Table, error) {
	compiled, err := CompiledTable(out.CompiledFile, records)
	if err != nil {
		return nil, err
	}
	managed, err := ManagedTable(out.ManagedFile, enriched)
	if err != nil {
		return nil, err
	}
	header, err := HeaderTable(out.HeaderFile, p.Headers(enriched))
	if err != nil {
		return nil, err
	}
	detail, err := DetailTable(out.DetailFile, p.Details(enriched))
	if err != nil {
		return nil, err
	}
	return []*csvwriter.Table{compiled, managed, header, detail}, nil
}
