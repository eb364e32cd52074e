package extractor

import (
	"testing"
)

func TestNormalizePONumber(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"PO123-00", "PO123"},
		{"PO123-01-A", "PO123"},
		{"PO123", "PO123"},
		{" PO9 -00", "PO9"},
		{"", ""},
		{"-00", ""},
	}

	for _, tt := range tests {
		got := NormalizePONumber(tt.raw, "-")
		if got != tt.want {
			t.Errorf("NormalizePONumber(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if again := NormalizePONumber(got, "-"); again != got {
			t.Errorf("NormalizePONumber not idempotent for %q: %q then %q", tt.raw, got, again)
		}
	}
}

func TestNormalizePONumber_EmptySeparator(t *testing.T) {
	if got := NormalizePONumber("PO1-00", ""); got != "PO1-00" {
		t.Errorf("got %q", got)
	}
}

func TestStripLeadingZeros(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"007", "7"},
		{"7", "7"},
		{"0070", "70"},
		{"000", "0"},
		{"0", "0"},
		{"00A12", "A12"},
		{"", ""},
	}

	for _, tt := range tests {
		got := StripLeadingZeros(tt.code)
		if got != tt.want {
			t.Errorf("StripLeadingZeros(%q) = %q, want %q", tt.code, got, tt.want)
		}
		if again := StripLeadingZeros(got); again != got {
			t.Errorf("StripLeadingZeros not idempotent for %q: %q then %q", tt.code, got, again)
		}
	}
}

func TestParseStoreCell(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode string
		wantName string
		codeSet  bool
		nameSet  bool
	}{
		{"full", "SHIP TO:ACME:0007 STORE SEVEN:MAKATI:PH", "7", "STORE", true, true},
		{"exactly three segments", "0012 NORTH:X:Y", "12", "NORTH", true, true},
		{"code only", "A:00042:B:C", "42", "", true, false},
		{"empty segment", "A::B:C", "", "", false, false},
		{"too few segments", "0007 STORE:PH", "", "", false, false},
		{"all zeros", "A:000 HQ:B:C", "0", "HQ", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := ParseStoreCell(tt.raw)
			code, ok := cell.Code.Get()
			if ok != tt.codeSet || code != tt.wantCode {
				t.Errorf("Code = %q (%v), want %q (%v)", code, ok, tt.wantCode, tt.codeSet)
			}
			name, ok := cell.Name.Get()
			if ok != tt.nameSet || name != tt.wantName {
				t.Errorf("Name = %q (%v), want %q (%v)", name, ok, tt.wantName, tt.nameSet)
			}
		})
	}
}

func TestParseMaterialCell(t *testing.T) {
	cell := ParseMaterialCell("ITEM:1:SOAP BAR 90G:SKU:SKU-991:PACK: 12PCS :PRICE:45.50")

	if v := cell.Description.OrElse("?"); v != "SOAP BAR 90G" {
		t.Errorf("Description = %q", v)
	}
	if v := cell.SKUCode.OrElse("?"); v != "SKU-991" {
		t.Errorf("SKUCode = %q", v)
	}
	if v := cell.Packing.OrElse("?"); v != "12" {
		t.Errorf("Packing = %q", v)
	}
	if v := cell.UnitPrice.OrElse("?"); v != "45.50" {
		t.Errorf("UnitPrice = %q", v)
	}
}

func TestParseMaterialCell_MissingTokensAreUnmapped(t *testing.T) {
	cell := ParseMaterialCell("ITEM:1:SOAP:SKU:S-1")

	if !cell.Description.IsSet() || !cell.SKUCode.IsSet() {
		t.Fatalf("leading tokens should be mapped: %+v", cell)
	}
	if cell.Packing.IsSet() || cell.UnitPrice.IsSet() {
		t.Errorf("missing tokens should be unmapped: %+v", cell)
	}
}

func TestParseMaterialCell_PackingWithoutLeadingDigits(t *testing.T) {
	cell := ParseMaterialCell("ITEM:1:SOAP:SKU:S-1:PACK:PCS12:PRICE:1")

	if cell.Packing.IsSet() {
		t.Errorf("Packing = %q, want unmapped", cell.Packing.OrElse(""))
	}
	if !cell.UnitPrice.IsSet() {
		t.Error("UnitPrice should still be mapped")
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12", "12", true},
		{" 12.50 ", "12.5", true},
		{"1,200", "1200", true},
		{"", "", false},
		{"twelve", "", false},
	}

	for _, tt := range tests {
		d, ok := ParseDecimal(tt.in).Get()
		if ok != tt.ok {
			t.Errorf("ParseDecimal(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && d.String() != tt.want {
			t.Errorf("ParseDecimal(%q) = %s, want %s", tt.in, d.String(), tt.want)
		}
	}
}
