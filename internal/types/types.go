// =============================================================================
// PO Middleware - Shared Types
// =============================================================================
//
// This package contains the record types that flow through the pipeline.
// They live here so that the extractor, the converter, the validation review
// and the writers can share them without import cycles:
//
//   csv rows -> PORecord -> EnrichedPORecord -> OrderHeaderRecord / OrderDetailRecord
//
// Values that may legitimately be missing (lookup misses, malformed compound
// cells) are carried as Optional so callers must handle the absent case.
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OPTIONAL VALUES
// =============================================================================

// Optional holds a value that may be unmapped.
// The zero value is unmapped.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a mapped value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an unmapped value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is mapped.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSet reports whether the value is mapped.
func (o Optional[T]) IsSet() bool {
	return o.ok
}

// OrElse returns the value, or def when unmapped.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Text is an optional string. Empty strings are never Some.
type Text = Optional[string]

// TextOf returns Some(s) for a non-empty s, None otherwise.
func TextOf(s string) Text {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// =============================================================================
// NORMALIZED PO RECORD
// =============================================================================

// PORecord is one purchase-order line after extraction.
type PORecord struct {
	// PODate, DeliveryDate and CancelDate come from source columns 0, 10, 14.
	PODate       Optional[time.Time]
	DeliveryDate Optional[time.Time]
	CancelDate   Optional[time.Time]

	// PONumber is the parent PO number with any release suffix removed.
	PONumber string

	// StoreCode has leading zeros stripped. StoreName is the second token
	// of the store segment.
	StoreCode Text
	StoreName Text

	LineNumber string
	Barcode    string
	Qty        Optional[decimal.Decimal]

	// Fields decoded from the compound material cell.
	MaterialDescription Text
	SKUCode             Text
	Packing             Text
	UnitPrice           Text

	Amount Optional[decimal.Decimal]

	// SourceFile and SourceLine point at the raw row (1-based line).
	SourceFile string
	SourceLine int
}

// =============================================================================
// ENRICHED PO RECORD
// =============================================================================

// MaterialState classifies a record for the exclusion filter.
type MaterialState int

const (
	// MaterialUnknown means the item or its status could not be mapped.
	MaterialUnknown MaterialState = iota

	// MaterialValid means the item mapped to a status other than the exclusion label.
	MaterialValid

	// MaterialExcluded means the item status equals the exclusion label.
	MaterialExcluded
)

// String returns the lower-case name of the state.
func (s MaterialState) String() string {
	switch s {
	case MaterialValid:
		return "valid"
	case MaterialExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// EnrichedPORecord is a PORecord joined against the three reference tables.
type EnrichedPORecord struct {
	PORecord

	MappedItemCode     Text
	MappedCustomerCode Text
	MappedDeliveryDate Optional[time.Time]
	Status             Text

	// State is derived from Status and the configured exclusion label.
	State MaterialState
}

// =============================================================================
// OUTPUT RECORDS
// =============================================================================

// OrderHeaderRecord is one row of the ORDERHDR import file.
type OrderHeaderRecord struct {
	PONumber             string
	OrderType            string
	OrderReason          string
	SalesOrg             string
	DistChannel          string
	Division             string
	SalesGroup           string
	SalesOffice          string
	DelDate              string
	POType               string
	PODate               string
	SoldTo               string
	ShipTo               string
	CreditCtrlArea       string
	MasterContractNumber string
	RefDocNo             string
	Zounr                string
	Remarks              string
}

// OrderDetailRecord is one row of the ORDERDTL import file.
type OrderDetailRecord struct {
	PONumber       string
	MaterialNumber string
	Qty            string
	Unit           string
	Remarks        string
	MatGrp5        string
	CondGrp1       string
	IONumber       string
	ConditionType  string
	Amount         string
	Currency       string
}
