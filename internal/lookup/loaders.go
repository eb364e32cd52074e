package lookup

import (
	"fmt"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/xlsxparser"
)

// Table names, used in logs and the run summary.
const (
	ItemTableName     = "item"
	CustomerTableName = "store-customer"
	DeliveryTableName = "store-delivery"
	StatusTableName   = "status"
)

// Tables groups the four lookups used by the joiner.
type Tables struct {
	// Items maps barcode to internal material (URC) code.
	Items *Table[string]

	// Customers maps store code to customer code.
	Customers *Table[string]

	// Deliveries maps store code to the scheduled delivery date.
	Deliveries *Table[time.Time]

	// Statuses maps material code to SAP status label.
	Statuses *Table[string]
}

// Sources names the three reference workbooks.
type Sources struct {
	ItemMaster   string
	StoreMaster  string
	StatusMaster string
}

// Load reads the three reference workbooks described by cfg.
func Load(src Sources, cfg *config.Config) (*Tables, error) {
	items, err := LoadItemMaster(src.ItemMaster, cfg.ItemMaster)
	if err != nil {
		return nil, err
	}

	customers, deliveries, err := LoadStoreMaster(src.StoreMaster, cfg.StoreMaster, cfg.Source.DateLayouts)
	if err != nil {
		return nil, err
	}

	statuses, err := LoadStatusMaster(src.StatusMaster, cfg.StatusMaster)
	if err != nil {
		return nil, err
	}

	return &Tables{
		Items:      items,
		Customers:  customers,
		Deliveries: deliveries,
		Statuses:   statuses,
	}, nil
}

// LoadItemMaster reads barcode -> material code.
func LoadItemMaster(path string, sheet config.SheetSettings) (*Table[string], error) {
	table, err := xlsxparser.ReadColumns(path, sheet, []string{sheet.KeyColumn, sheet.ValueColumn})
	if err != nil {
		return nil, fmt.Errorf("item master: %w", err)
	}
	return NewTable(ItemTableName, textEntries(table)), nil
}

// LoadStatusMaster reads material code -> SAP status.
func LoadStatusMaster(path string, sheet config.SheetSettings) (*Table[string], error) {
	table, err := xlsxparser.ReadColumns(path, sheet, []string{sheet.KeyColumn, sheet.ValueColumn})
	if err != nil {
		return nil, fmt.Errorf("status master: %w", err)
	}
	return NewTable(StatusTableName, textEntries(table)), nil
}

// LoadStoreMaster reads the store sheet once and builds both store lookups:
// store code -> customer code, and store code -> delivery date.
// Delivery cells may be Excel serial dates or text in one of layouts.
func LoadStoreMaster(path string, sheet config.SheetSettings, layouts []string) (*Table[string], *Table[time.Time], error) {
	columns := []string{sheet.KeyColumn, sheet.ValueColumn}
	if sheet.DateColumn != "" {
		columns = append(columns, sheet.DateColumn)
	}

	table, err := xlsxparser.ReadColumns(path, sheet, columns)
	if err != nil {
		return nil, nil, fmt.Errorf("store master: %w", err)
	}

	customers := textEntries(table)

	var deliveries []Entry[time.Time]
	if sheet.DateColumn != "" {
		for _, row := range table.Rows {
			date, ok := xlsxparser.ParseSheetDate(row.Cells[2], layouts)
			deliveries = append(deliveries, Entry[time.Time]{Key: row.Cells[0], Value: date, Valid: ok})
		}
	}

	return NewTable(CustomerTableName, customers), NewTable(DeliveryTableName, deliveries), nil
}

// textEntries turns the first two columns of table into key/value entries.
func textEntries(table *xlsxparser.Table) []Entry[string] {
	entries := make([]Entry[string], 0, len(table.Rows))
	for _, row := range table.Rows {
		entries = append(entries, Entry[string]{
			Key:   row.Cells[0],
			Value: row.Cells[1],
			Valid: row.Cells[1] != "",
		})
	}
	return entries
}
