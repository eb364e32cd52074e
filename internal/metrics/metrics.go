// Package metrics collects per-run counters and writes them in the
// Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type Registry struct {
	reg *prometheus.Registry

	SourceFiles     *prometheus.CounterVec
	Records         *prometheus.CounterVec
	LookupMisses    *prometheus.CounterVec
	OutputRows      *prometheus.CounterVec
	Exceptions      prometheus.Counter
	RunDurationSec  prometheus.Gauge
	LastRunSuccess  prometheus.Gauge
	LastRunUnixTime prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	sourceFiles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pomw_source_files_total",
		Help: "Source files seen, by outcome (read, skipped).",
	}, []string{"outcome"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pomw_records_total",
		Help: "PO records by material state (valid, excluded, unknown).",
	}, []string{"state"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pomw_lookup_misses_total",
		Help: "Records whose key was absent from a lookup table.",
	}, []string{"table"})
	outputRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pomw_output_rows_total",
		Help: "Rows written per output file.",
	}, []string{"file"})
	exceptions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pomw_exceptions_total",
		Help: "Entries written to the exception log.",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pomw_run_duration_seconds"})
	success := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pomw_last_run_success"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pomw_last_run_timestamp_seconds"})

	r.MustRegister(sourceFiles, records, misses, outputRows, exceptions, duration, success, lastRun)
	return &Registry{
		reg:             r,
		SourceFiles:     sourceFiles,
		Records:         records,
		LookupMisses:    misses,
		OutputRows:      outputRows,
		Exceptions:      exceptions,
		RunDurationSec:  duration,
		LastRunSuccess:  success,
		LastRunUnixTime: lastRun,
	}
}

// WriteTextfile writes every metric to path atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Gatherer exposes the underlying registry to tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
