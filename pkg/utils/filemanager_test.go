package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles_SortedNonRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "a.csv"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "dir.csv"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub", "c.csv"))

	fm := NewFileManager(dir, "", "")
	files, err := fm.DiscoverInputFiles("")
	if err != nil {
		t.Fatalf("DiscoverInputFiles error: %v", err)
	}

	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestDiscoverInputFiles_MissingDirectory(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "missing"), "", "")
	if _, err := fm.DiscoverInputFiles("*.csv"); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, filepath.Join(root, "out", "sap"), "")

	if err := fm.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories error: %v", err)
	}
	if !FileExists(filepath.Join(root, "out", "sap")) {
		t.Error("output directory not created")
	}
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "po.csv")
	touch(t, src)

	fm := NewFileManager(root, root, filepath.Join(root, "archive"))
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	archived, err := fm.ArchiveInputFile(src, now)
	if err != nil {
		t.Fatalf("ArchiveInputFile error: %v", err)
	}

	want := filepath.Join(root, "archive", "2024", "03", "09", "po.csv")
	if archived != want {
		t.Errorf("archived = %s, want %s", archived, want)
	}
	if FileExists(src) {
		t.Error("source file should have been moved")
	}
	if !FileExists(want) {
		t.Error("archived file missing")
	}
}

func TestArchiveInputFile_DisabledWithoutArchiveDir(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "po.csv")
	touch(t, src)

	fm := NewFileManager(root, root, "")
	got, err := fm.ArchiveInputFile(src, time.Now())
	if err != nil || got != src || !FileExists(src) {
		t.Errorf("got %q, %v; file should stay in place", got, err)
	}
}

func TestWriteExceptionLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 9, 10, 11, 12, 0, time.UTC)

	path, err := WriteExceptionLog(nil, dir, "run-1", now)
	if err != nil || path != "" {
		t.Fatalf("empty log: %q, %v", path, err)
	}

	entries := []ErrorLogEntry{{
		Severity:     "warning",
		FileName:     "a.csv",
		ErrorType:    "unmapped-item",
		ErrorMessage: "barcode not found in item master",
		RowNumber:    3,
		FieldName:    "Material Number",
		FieldValue:   "4800016000001",
		PONumber:     "PO123",
		LineNumber:   "1",
	}}

	path, err = WriteExceptionLog(entries, dir, "run-1", now)
	if err != nil {
		t.Fatalf("WriteExceptionLog error: %v", err)
	}
	if filepath.Base(path) != "exceptions_20240309_101112.txt" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"Run ID: run-1", "Total Exceptions: 1", "Severity:       WARNING", "Value:          4800016000001"} {
		if !strings.Contains(text, want) {
			t.Errorf("log missing %q:\n%s", want, text)
		}
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 9, 10, 11, 12, 0, time.UTC)

	summary := RunSummary{
		RunID:            "run-1",
		StartTime:        start,
		EndTime:          start.Add(2 * time.Second),
		SourceFiles:      []string{"a.csv"},
		RecordsExtracted: 4,
		Lookups:          []LookupInfo{{Name: "item", Entries: 10, Dropped: 1}},
		HeaderRows:       1,
		DetailRows:       2,
		OutputFiles:      []string{"ORDERHDR.csv"},
		FailedStage:      "write",
		Failure:          "disk full",
	}

	path, err := WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog error: %v", err)
	}
	if filepath.Base(path) != "run_summary_20240309_101112.txt" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"Status:         FAILED",
		"Stage:          write",
		"Records Extracted:  4",
		"10 entries, 1 rows dropped",
		"  ORDERHDR.csv",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
