package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPOUND CELL FORMATS
// =============================================================================
//
// Two source columns pack several fields into one colon-delimited string.
//
// Store cell (column 16), e.g.
//
//   "SHIP TO:ACME RETAIL:0007 STORE SEVEN:MAKATI:PH"
//
// The store segment is the third from the end; its first two
// whitespace-separated tokens are the store code and store name.
//
// Material cell (column 19), e.g.
//
//   "ITEM:1:SOAP BAR 90G:SKU:SKU-991:PACK:12PCS:PRICE:45.50"
//     0   1      2        3     4      5     6     7     8
//
// Tokens 2, 4, 6 and 8 are description, SKU code, packing and unit price.
// =============================================================================

const (
	cellSeparator = ":"

	// storeSegmentFromEnd counts back from the last store cell segment.
	storeSegmentFromEnd = 3

	materialDescriptionToken = 2
	materialSKUToken         = 4
	materialPackingToken     = 6
	materialUnitPriceToken   = 8
)

var leadingDigits = regexp.MustCompile(`^\d+`)

// StoreCell is the decoded store column.
type StoreCell struct {
	Code types.Text
	Name types.Text
}

// MaterialCell is the decoded material column.
type MaterialCell struct {
	Description types.Text
	SKUCode     types.Text
	Packing     types.Text
	UnitPrice   types.Text
}

// ParseStoreCell decodes the store column. Missing segments or tokens come
// back unmapped. The code has its leading zeros stripped.
func ParseStoreCell(raw string) StoreCell {
	var cell StoreCell

	segments := strings.Split(raw, cellSeparator)
	if len(segments) < storeSegmentFromEnd {
		return cell
	}

	tokens := strings.Fields(segments[len(segments)-storeSegmentFromEnd])
	if len(tokens) > 0 {
		cell.Code = types.TextOf(StripLeadingZeros(tokens[0]))
	}
	if len(tokens) > 1 {
		cell.Name = types.TextOf(tokens[1])
	}
	return cell
}

// ParseMaterialCell decodes the material column. Each token is trimmed; a
// token beyond the end of the cell is unmapped. Packing keeps only its
// leading digit run.
func ParseMaterialCell(raw string) MaterialCell {
	tokens := strings.Split(raw, cellSeparator)

	token := func(i int) types.Text {
		if i >= len(tokens) {
			return types.None[string]()
		}
		return types.TextOf(strings.TrimSpace(tokens[i]))
	}

	cell := MaterialCell{
		Description: token(materialDescriptionToken),
		SKUCode:     token(materialSKUToken),
		UnitPrice:   token(materialUnitPriceToken),
	}
	if packing, ok := token(materialPackingToken).Get(); ok {
		cell.Packing = types.TextOf(LeadingDigits(packing))
	}
	return cell
}

// =============================================================================
// FIELD NORMALIZERS
// =============================================================================

// NormalizePONumber returns the parent PO number: the text before the first
// separator. It is idempotent.
func NormalizePONumber(raw, separator string) string {
	raw = strings.TrimSpace(raw)
	if separator == "" {
		return raw
	}
	parent, _, _ := strings.Cut(raw, separator)
	return strings.TrimSpace(parent)
}

// StripLeadingZeros removes leading zeros from a code. A code made only of
// zeros becomes "0". It is idempotent.
func StripLeadingZeros(code string) string {
	stripped := strings.TrimLeft(code, "0")
	if stripped == "" && code != "" {
		return "0"
	}
	return stripped
}

// LeadingDigits returns the leading run of ASCII digits in s ("12PCS" -> "12").
func LeadingDigits(s string) string {
	return leadingDigits.FindString(strings.TrimSpace(s))
}

// ParseDate tries each layout in turn and returns the calendar date.
func ParseDate(value string, layouts []string) types.Optional[time.Time] {
	value = strings.TrimSpace(value)
	if value == "" {
		return types.None[time.Time]()
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return types.Some(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	return types.None[time.Time]()
}

// ParseDecimal parses a quantity or amount. Thousands separators are
// ignored; anything unparsable is unmapped.
func ParseDecimal(value string) types.Optional[decimal.Decimal] {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return types.None[decimal.Decimal]()
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return types.None[decimal.Decimal]()
	}
	return types.Some(d)
}
