// =============================================================================
// PO Middleware - Exception Review
// =============================================================================
//
// This module reviews enriched PO records and lists every field that could
// not be mapped, so operators can fix the master files before the SAP import.
// Nothing here changes the records or stops the run; unmapped values are
// normal pipeline data and the projector decides what reaches the outputs.
//
// EXCEPTION KINDS:
//   - Lookup misses: item (barcode), customer and delivery date (store
//     code), status (material code)
//   - Excluded materials (status equals the exclusion label)
//   - Extraction gaps: unparsable dates and numbers, store and material
//     cell tokens that were missing
//
// SEVERITY:
//   - "warning": the miss changes or empties an ORDERHDR/ORDERDTL cell, or
//     the record is dropped by the unmapped policy
//   - "info": the miss only affects the audit files, or the record was
//     excluded on purpose
//
// =============================================================================

package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/types"
)

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Exception kinds.
const (
	KindUnmappedItem     = "unmapped-item"
	KindUnmappedCustomer = "unmapped-customer"
	KindUnmappedDelivery = "unmapped-delivery-date"
	KindUnmappedStatus   = "unmapped-status"
	KindExcluded         = "excluded-material"
	KindDroppedUnknown   = "dropped-unknown-material"
	KindBadDate          = "unparsable-date"
	KindBadNumber        = "unparsable-number"
	KindMissingToken     = "missing-cell-token"
)

// =============================================================================
// EXCEPTION TYPES
// =============================================================================

// Exception is one reviewed problem on one record.
type Exception struct {
	// Severity is SeverityWarning or SeverityInfo.
	Severity string

	// Kind is one of the Kind* constants.
	Kind string

	// Field is the output column the exception is about.
	Field string

	// Value is the key or raw value involved, if any.
	Value string

	// Message is a human-readable explanation.
	Message string

	PONumber   string
	LineNumber string
	SourceFile string
	SourceLine int
}

// Error implements the error interface.
func (e *Exception) Error() string {
	return fmt.Sprintf("[%s] %s:%d PO %s line %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.SourceFile,
		e.SourceLine,
		e.PONumber,
		e.LineNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// REVIEW RESULT
// =============================================================================

// Result contains the exceptions found by a review.
type Result struct {
	Exceptions []*Exception

	WarningCount int
	InfoCount    int

	// RecordsReviewed is the number of records looked at.
	RecordsReviewed int

	// RecordsWithWarnings counts records with at least one warning.
	RecordsWithWarnings int
}

// CountByKind returns the number of exceptions per kind.
func (r *Result) CountByKind() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Exceptions {
		counts[e.Kind]++
	}
	return counts
}

// =============================================================================
// REVIEWER
// =============================================================================

// Reviewer produces exceptions for enriched records.
type Reviewer struct {
	policy config.PolicySettings
}

// NewReviewer returns a Reviewer applying the given policy.
func NewReviewer(policy config.PolicySettings) *Reviewer {
	return &Reviewer{policy: policy}
}

// Review returns the exceptions of all records, in record order.
func Review(records []types.EnrichedPORecord, policy config.PolicySettings) *Result {
	return NewReviewer(policy).ReviewAll(records)
}

// ReviewAll reviews every record.
func (v *Reviewer) ReviewAll(records []types.EnrichedPORecord) *Result {
	result := &Result{RecordsReviewed: len(records)}

	for i := range records {
		exceptions := v.ReviewRecord(&records[i])

		warned := false
		for _, e := range exceptions {
			if e.Severity == SeverityWarning {
				result.WarningCount++
				warned = true
			} else {
				result.InfoCount++
			}
		}
		if warned {
			result.RecordsWithWarnings++
		}

		result.Exceptions = append(result.Exceptions, exceptions...)
	}

	return result
}

// ReviewRecord returns the exceptions of one record.
func (v *Reviewer) ReviewRecord(e *types.EnrichedPORecord) []*Exception {
	var out []*Exception

	add := func(severity, kind, field, value, message string) {
		out = append(out, &Exception{
			Severity:   severity,
			Kind:       kind,
			Field:      field,
			Value:      value,
			Message:    message,
			PONumber:   e.PONumber,
			LineNumber: e.LineNumber,
			SourceFile: e.SourceFile,
			SourceLine: e.SourceLine,
		})
	}

	dropped := e.State == types.MaterialUnknown && v.policy.UnmappedPolicy == config.UnmappedDrop

	// Lookup misses.
	if !e.MappedItemCode.IsSet() {
		add(SeverityWarning, KindUnmappedItem, "Material Number", e.Barcode,
			"barcode not found in item master")
	} else if !e.Status.IsSet() {
		add(SeverityWarning, KindUnmappedStatus, "Status", e.MappedItemCode.OrElse(""),
			"material code not found in status master")
	}

	switch {
	case e.State == types.MaterialExcluded:
		add(SeverityInfo, KindExcluded, "Status", e.Status.OrElse(""),
			"material excluded from ORDERHDR and ORDERDTL")
	case dropped:
		add(SeverityWarning, KindDroppedUnknown, "Status", "",
			"unknown material dropped by unmapped policy")
	}

	if store, ok := e.StoreCode.Get(); ok {
		if !e.MappedCustomerCode.IsSet() {
			add(SeverityWarning, KindUnmappedCustomer, "Soldto", store,
				"store code not found in store master")
		}
		if !e.MappedDeliveryDate.IsSet() {
			add(SeverityWarning, KindUnmappedDelivery, "Del Date", store,
				"store has no delivery schedule")
		}
	} else {
		add(SeverityWarning, KindMissingToken, "Store Code", "",
			"store cell has no store code")
	}

	// Extraction gaps.
	if !e.PODate.IsSet() {
		add(SeverityWarning, KindBadDate, "PO Date", "", "PO date missing or unparsable")
	}
	if !e.DeliveryDate.IsSet() {
		add(SeverityInfo, KindBadDate, "Del Date", "", "source delivery date missing or unparsable")
	}
	if !e.CancelDate.IsSet() {
		add(SeverityInfo, KindBadDate, "Cancel Date", "", "cancel date missing or unparsable")
	}
	if !e.Qty.IsSet() {
		add(SeverityWarning, KindBadNumber, "Qty", "", "quantity missing or unparsable")
	}
	if !e.Amount.IsSet() {
		add(SeverityInfo, KindBadNumber, "Amount", "", "amount missing or unparsable")
	}

	material := map[string]types.Text{
		"Material Description": e.MaterialDescription,
		"SKU Code":             e.SKUCode,
		"Packing":              e.Packing,
		"Unit Price":           e.UnitPrice,
	}
	fields := make([]string, 0, len(material))
	for field := range material {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if !material[field].IsSet() {
			add(SeverityInfo, KindMissingToken, field, "", "material cell token missing")
		}
	}

	return out
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatExceptions formats exceptions for display or logging.
//
// PARAMETERS:
//   - exceptions: The exceptions to format.
//
// RETURNS:
//   - A formatted string containing all exceptions.
func FormatExceptions(exceptions []*Exception) string {
	if len(exceptions) == 0 {
		return "No exceptions."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Review completed with %d exception(s):\n\n", len(exceptions)))

	for i, e := range exceptions {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, e.Error()))
	}

	return builder.String()
}

// FormatCounts renders CountByKind as "kind=n" pairs sorted by kind.
func FormatCounts(counts map[string]int) string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
