package converter

import (
	"testing"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/shopspring/decimal"
)

func enrichedLine(po, item string, qty int64, state types.MaterialState) types.EnrichedPORecord {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return types.EnrichedPORecord{
		PORecord: types.PORecord{
			PONumber: po,
			PODate:   types.Some(day),
			Qty:      types.Some(decimal.NewFromInt(qty)),
		},
		MappedItemCode:     types.TextOf(item),
		MappedCustomerCode: types.Some("CUST7"),
		MappedDeliveryDate: types.Some(day.AddDate(0, 0, 7)),
		State:              state,
	}
}

func defaultProjector() *Projector {
	cfg := config.Default()
	return NewProjector(cfg.SAP, cfg.Policy)
}

func TestProjector_HeaderDedupPerPO(t *testing.T) {
	records := []types.EnrichedPORecord{
		enrichedLine("PO1", "ITM1", 1, types.MaterialValid),
		enrichedLine("PO1", "ITM2", 2, types.MaterialValid),
		enrichedLine("PO2", "ITM1", 1, types.MaterialValid),
	}

	headers := defaultProjector().Headers(records)
	if len(headers) != 2 || headers[0].PONumber != "PO1" || headers[1].PONumber != "PO2" {
		t.Fatalf("headers = %+v", headers)
	}

	h := headers[0]
	if h.DelDate != "20240109" || h.PODate != "20240102" {
		t.Errorf("dates = %s, %s", h.DelDate, h.PODate)
	}
	if h.SoldTo != "CUST7" || h.ShipTo != "CUST7" {
		t.Errorf("sold/ship to = %s, %s", h.SoldTo, h.ShipTo)
	}
	if h.OrderType != "Z8DO" || h.SalesOrg != "BCFG" || h.DistChannel != "12" || h.Division != "97" || h.POType != "EMAL" {
		t.Errorf("literals = %+v", h)
	}
}

func TestProjector_HeaderKeepsDistinctDeliveryDates(t *testing.T) {
	a := enrichedLine("PO1", "ITM1", 1, types.MaterialValid)
	b := enrichedLine("PO1", "ITM1", 1, types.MaterialValid)
	b.MappedDeliveryDate = types.None[time.Time]()

	headers := defaultProjector().Headers([]types.EnrichedPORecord{a, b})
	if len(headers) != 2 || headers[1].DelDate != "" {
		t.Errorf("headers = %+v", headers)
	}
}

func TestProjector_ExcludedNeverProjected(t *testing.T) {
	records := []types.EnrichedPORecord{
		enrichedLine("PO1", "ITM1", 1, types.MaterialExcluded),
		enrichedLine("PO2", "ITM2", 1, types.MaterialValid),
	}
	p := defaultProjector()

	for _, h := range p.Headers(records) {
		if h.PONumber == "PO1" {
			t.Error("excluded record in headers")
		}
	}
	for _, d := range p.Details(records) {
		if d.PONumber == "PO1" {
			t.Error("excluded record in details")
		}
	}
}

func TestProjector_UnknownFollowsPolicy(t *testing.T) {
	unknown := enrichedLine("PO1", "", 1, types.MaterialUnknown)
	cfg := config.Default()

	if !NewProjector(cfg.SAP, cfg.Policy).Keep(unknown) {
		t.Error("keep policy should pass unknown materials")
	}

	cfg.Policy.UnmappedPolicy = config.UnmappedDrop
	if NewProjector(cfg.SAP, cfg.Policy).Keep(unknown) {
		t.Error("drop policy should filter unknown materials")
	}
}

func TestProjector_DetailCollapse(t *testing.T) {
	records := []types.EnrichedPORecord{
		enrichedLine("PO1", "ITM1", 12, types.MaterialValid),
		enrichedLine("PO1", "ITM1", 12, types.MaterialValid),
		enrichedLine("PO1", "ITM1", 24, types.MaterialValid),
	}
	cfg := config.Default()

	details := NewProjector(cfg.SAP, cfg.Policy).Details(records)
	if len(details) != 2 || details[0].Qty != "12" || details[1].Qty != "24" {
		t.Errorf("collapsed details = %+v", details)
	}
	if details[0].Unit != "CS" || details[0].MaterialNumber != "ITM1" {
		t.Errorf("detail = %+v", details[0])
	}

	cfg.Policy.CollapseDuplicateLines = false
	if details := NewProjector(cfg.SAP, cfg.Policy).Details(records); len(details) != 3 {
		t.Errorf("uncollapsed details = %d, want 3", len(details))
	}
}
