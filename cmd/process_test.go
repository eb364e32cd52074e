package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/edisonbriones/po-middleware/internal/converter"
	"github.com/edisonbriones/po-middleware/internal/types"
	"github.com/edisonbriones/po-middleware/internal/validation"
)

func reviewedResult() *converter.Result {
	return &converter.Result{
		RunID:       "run-1",
		OutputFiles: []string{"/out/ORDERHDR.csv"},
		Review: &validation.Result{
			Exceptions: []*validation.Exception{{
				Severity:   validation.SeverityWarning,
				Kind:       validation.KindUnmappedItem,
				Field:      "Material Number",
				Value:      "B9",
				Message:    "barcode not found in item master",
				PONumber:   "PO4",
				LineNumber: "1",
				SourceFile: "po.csv",
				SourceLine: 4,
			}},
			WarningCount:        1,
			RecordsWithWarnings: 1,
		},
	}
}

func TestPrintResult_ListsExceptionsWithDetails(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, reviewedResult(), nil, true)

	out := buf.String()
	if !strings.Contains(out, "Review completed with 1 exception(s)") {
		t.Errorf("exception list missing:\n%s", out)
	}
	if !strings.Contains(out, "1. [WARNING] po.csv:4 PO PO4") {
		t.Errorf("exception line missing:\n%s", out)
	}
	if !strings.Contains(out, "✓ ORDERHDR.csv") {
		t.Errorf("written file missing:\n%s", out)
	}
}

func TestPrintResult_OmitsExceptionsWithoutDetails(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, reviewedResult(), nil, false)

	out := buf.String()
	if strings.Contains(out, "Review completed") {
		t.Errorf("exceptions listed without details:\n%s", out)
	}
	if !strings.Contains(out, "Warnings:        1 on 1 line(s)") {
		t.Errorf("warning count missing:\n%s", out)
	}
}

func TestPrintResult_ReportsFailedStage(t *testing.T) {
	var buf bytes.Buffer
	err := &types.StageError{Stage: types.StageExtract, Err: errors.New("boom")}
	printResult(&buf, &converter.Result{RunID: "run-2"}, err, true)

	if !strings.Contains(buf.String(), "✗ Stage extract failed") {
		t.Errorf("failed stage missing:\n%s", buf.String())
	}
}
