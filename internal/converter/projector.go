package converter

import (
	"strings"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
)

// Projector derives the ORDERHDR and ORDERDTL rows from enriched records.
type Projector struct {
	sap    config.SAPSettings
	policy config.PolicySettings
}

// NewProjector returns a Projector using the given literals and policies.
func NewProjector(sap config.SAPSettings, policy config.PolicySettings) *Projector {
	return &Projector{sap: sap, policy: policy}
}

// Keep reports whether a record passes the shared filter. Excluded records
// never pass; unknown ones pass unless the unmapped policy is "drop".
func (p *Projector) Keep(e types.EnrichedPORecord) bool {
	switch e.State {
	case types.MaterialExcluded:
		return false
	case types.MaterialUnknown:
		return p.policy.UnmappedPolicy != config.UnmappedDrop
	default:
		return true
	}
}

// Filter returns the records that pass Keep, in order.
func (p *Projector) Filter(records []types.EnrichedPORecord) []types.EnrichedPORecord {
	kept := make([]types.EnrichedPORecord, 0, len(records))
	for _, e := range records {
		if p.Keep(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// Headers projects filtered records onto (PO number, delivery date,
// PO date, customer code), removes exact duplicates keeping first-seen
// order, and fills in the header literals.
func (p *Projector) Headers(records []types.EnrichedPORecord) []types.OrderHeaderRecord {
	seen := make(map[string]bool)
	var headers []types.OrderHeaderRecord

	for _, e := range p.Filter(records) {
		delDate := FormatDate(e.MappedDeliveryDate, p.sap.DateFormat)
		poDate := FormatDate(e.PODate, p.sap.DateFormat)
		customer := FormatText(e.MappedCustomerCode)

		key := rowKey(e.PONumber, delDate, poDate, customer)
		if seen[key] {
			continue
		}
		seen[key] = true

		headers = append(headers, types.OrderHeaderRecord{
			PONumber:    e.PONumber,
			OrderType:   p.sap.OrderType,
			SalesOrg:    p.sap.SalesOrg,
			DistChannel: p.sap.DistChannel,
			Division:    p.sap.Division,
			DelDate:     delDate,
			POType:      p.sap.POType,
			PODate:      poDate,
			SoldTo:      customer,
			ShipTo:      customer,
		})
	}

	return headers
}

// Details projects filtered records onto (PO number, material, qty). With
// CollapseDuplicateLines set, exact duplicates are removed keeping
// first-seen order; otherwise every record yields a row.
func (p *Projector) Details(records []types.EnrichedPORecord) []types.OrderDetailRecord {
	seen := make(map[string]bool)
	var details []types.OrderDetailRecord

	for _, e := range p.Filter(records) {
		material := FormatText(e.MappedItemCode)
		qty := FormatDecimal(e.Qty)

		if p.policy.CollapseDuplicateLines {
			key := rowKey(e.PONumber, material, qty)
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		details = append(details, types.OrderDetailRecord{
			PONumber:       e.PONumber,
			MaterialNumber: material,
			Qty:            qty,
			Unit:           p.sap.Unit,
		})
	}

	return details
}

// rowKey joins cells with a separator that cannot appear in CSV text cells.
func rowKey(cells ...string) string {
	return strings.Join(cells, "\x00")
}
