package converter

import (
	"github.com/edisonbriones/po-middleware/internal/lookup"
	"github.com/edisonbriones/po-middleware/internal/types"
)

// JoinStats counts lookup misses and material states of a join.
type JoinStats struct {
	ItemMisses     int
	CustomerMisses int
	DeliveryMisses int
	StatusMisses   int

	Valid    int
	Excluded int
	Unknown  int
}

// Join enriches every record against the reference tables. Output order
// matches input order.
//
// The status lookup is keyed by the mapped item code, so an item miss is
// always a status miss as well. Misses never fail the join; they leave the
// derived field unmapped.
func Join(records []types.PORecord, tables *lookup.Tables, excludedStatus string) ([]types.EnrichedPORecord, JoinStats) {
	var stats JoinStats
	enriched := make([]types.EnrichedPORecord, len(records))

	for i, r := range records {
		e := types.EnrichedPORecord{PORecord: r}

		if code, ok := tables.Items.Lookup(r.Barcode); ok {
			e.MappedItemCode = types.Some(code)
		} else {
			stats.ItemMisses++
		}

		if store, ok := r.StoreCode.Get(); ok {
			if customer, ok := tables.Customers.Lookup(store); ok {
				e.MappedCustomerCode = types.Some(customer)
			}
			if date, ok := tables.Deliveries.Lookup(store); ok {
				e.MappedDeliveryDate = types.Some(date)
			}
		}
		if !e.MappedCustomerCode.IsSet() {
			stats.CustomerMisses++
		}
		if !e.MappedDeliveryDate.IsSet() {
			stats.DeliveryMisses++
		}

		if item, ok := e.MappedItemCode.Get(); ok {
			if status, ok := tables.Statuses.Lookup(item); ok {
				e.Status = types.Some(status)
			}
		}
		if !e.Status.IsSet() {
			stats.StatusMisses++
		}

		e.State = materialState(e.Status, excludedStatus)
		switch e.State {
		case types.MaterialValid:
			stats.Valid++
		case types.MaterialExcluded:
			stats.Excluded++
		default:
			stats.Unknown++
		}

		enriched[i] = e
	}

	return enriched, stats
}

// materialState classifies a record by its status.
func materialState(status types.Text, excludedStatus string) types.MaterialState {
	s, ok := status.Get()
	switch {
	case !ok:
		return types.MaterialUnknown
	case s == excludedStatus:
		return types.MaterialExcluded
	default:
		return types.MaterialValid
	}
}
