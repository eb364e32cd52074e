package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_CountsAndTextfile(t *testing.T) {
	m := NewRegistry()

	m.Records.WithLabelValues("valid").Add(3)
	m.Records.WithLabelValues("excluded").Inc()
	m.LookupMisses.WithLabelValues("item").Inc()
	m.LastRunSuccess.Set(1)

	if got := testutil.ToFloat64(m.Records.WithLabelValues("valid")); got != 3 {
		t.Errorf("valid records = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.LookupMisses.WithLabelValues("item")); got != 1 {
		t.Errorf("item misses = %v, want 1", got)
	}

	path := filepath.Join(t.TempDir(), "pomw.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`pomw_records_total{state="valid"} 3`,
		`pomw_lookup_misses_total{table="item"} 1`,
		`pomw_last_run_success 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	m := NewRegistry()
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
