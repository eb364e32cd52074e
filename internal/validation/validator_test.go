package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/shopspring/decimal"
)

// cleanRecord returns a fully mapped, valid record.
func cleanRecord() types.EnrichedPORecord {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return types.EnrichedPORecord{
		PORecord: types.PORecord{
			PODate:              types.Some(day),
			DeliveryDate:        types.Some(day),
			CancelDate:          types.Some(day),
			PONumber:            "PO123",
			StoreCode:           types.Some("7"),
			StoreName:           types.Some("STORE"),
			LineNumber:          "1",
			Barcode:             "B1",
			Qty:                 types.Some(decimal.NewFromInt(5)),
			MaterialDescription: types.Some("SOAP"),
			SKUCode:             types.Some("S-1"),
			Packing:             types.Some("12"),
			UnitPrice:           types.Some("1.00"),
			Amount:              types.Some(decimal.NewFromInt(5)),
			SourceFile:          "a.csv",
			SourceLine:          3,
		},
		MappedItemCode:     types.Some("ITM1"),
		MappedCustomerCode: types.Some("CUST7"),
		MappedDeliveryDate: types.Some(day),
		Status:             types.Some("Active"),
		State:              types.MaterialValid,
	}
}

func kinds(exceptions []*Exception) []string {
	var out []string
	for _, e := range exceptions {
		out = append(out, e.Kind+"/"+e.Field)
	}
	return out
}

func TestReviewRecord_CleanRecordHasNoExceptions(t *testing.T) {
	r := cleanRecord()
	got := NewReviewer(config.Default().Policy).ReviewRecord(&r)
	if len(got) != 0 {
		t.Errorf("unexpected exceptions: %v", kinds(got))
	}
}

func TestReviewRecord_ItemMissReportsOnlyItem(t *testing.T) {
	r := cleanRecord()
	r.MappedItemCode = types.None[string]()
	r.Status = types.None[string]()
	r.State = types.MaterialUnknown

	got := NewReviewer(config.Default().Policy).ReviewRecord(&r)
	if len(got) != 1 || got[0].Kind != KindUnmappedItem {
		t.Fatalf("exceptions = %v", kinds(got))
	}
	if got[0].Value != "B1" || got[0].Severity != SeverityWarning {
		t.Errorf("exception = %+v", got[0])
	}
}

func TestReviewRecord_StatusMissAndDropPolicy(t *testing.T) {
	r := cleanRecord()
	r.Status = types.None[string]()
	r.State = types.MaterialUnknown

	policy := config.Default().Policy
	policy.UnmappedPolicy = config.UnmappedDrop

	got := NewReviewer(policy).ReviewRecord(&r)
	want := []string{KindUnmappedStatus + "/Status", KindDroppedUnknown + "/Status"}
	if strings.Join(kinds(got), ",") != strings.Join(want, ",") {
		t.Errorf("exceptions = %v, want %v", kinds(got), want)
	}
}

func TestReviewRecord_ExcludedIsInfo(t *testing.T) {
	r := cleanRecord()
	r.Status = types.Some("Material Excluded")
	r.State = types.MaterialExcluded

	got := NewReviewer(config.Default().Policy).ReviewRecord(&r)
	if len(got) != 1 || got[0].Kind != KindExcluded || got[0].Severity != SeverityInfo {
		t.Fatalf("exceptions = %v", kinds(got))
	}
}

func TestReviewRecord_StoreAndExtractionGaps(t *testing.T) {
	r := cleanRecord()
	r.MappedCustomerCode = types.None[string]()
	r.MappedDeliveryDate = types.None[time.Time]()
	r.Qty = types.None[decimal.Decimal]()
	r.Packing = types.None[string]()

	got := NewReviewer(config.Default().Policy).ReviewRecord(&r)
	want := []string{
		KindUnmappedCustomer + "/Soldto",
		KindUnmappedDelivery + "/Del Date",
		KindBadNumber + "/Qty",
		KindMissingToken + "/Packing",
	}
	if strings.Join(kinds(got), ",") != strings.Join(want, ",") {
		t.Errorf("exceptions = %v, want %v", kinds(got), want)
	}
}

func TestReviewAll_Counts(t *testing.T) {
	a := cleanRecord()
	b := cleanRecord()
	b.MappedCustomerCode = types.None[string]()
	c := cleanRecord()
	c.Amount = types.None[decimal.Decimal]()

	result := Review([]types.EnrichedPORecord{a, b, c}, config.Default().Policy)

	if result.RecordsReviewed != 3 {
		t.Errorf("RecordsReviewed = %d", result.RecordsReviewed)
	}
	if result.WarningCount != 1 || result.InfoCount != 1 || result.RecordsWithWarnings != 1 {
		t.Errorf("counts = %d warnings, %d info, %d records", result.WarningCount, result.InfoCount, result.RecordsWithWarnings)
	}

	counts := result.CountByKind()
	if FormatCounts(counts) != "unmapped-customer=1 unparsable-number=1" {
		t.Errorf("FormatCounts = %q", FormatCounts(counts))
	}
}

func TestFormatExceptions(t *testing.T) {
	if FormatExceptions(nil) != "No exceptions." {
		t.Error("empty list should say so")
	}

	e := &Exception{
		Severity: SeverityWarning, Field: "Soldto", Value: "7", Message: "store code not found",
		PONumber: "PO1", LineNumber: "2", SourceFile: "a.csv", SourceLine: 4,
	}
	out := FormatExceptions([]*Exception{e})
	if !strings.Contains(out, "1. [WARNING] a.csv:4 PO PO1 line 2, Field 'Soldto': store code not found (value: '7')") {
		t.Errorf("unexpected format:\n%s", out)
	}
}
