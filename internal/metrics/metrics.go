package metrics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Registry holds all Prometheus metrics for batch runs.
type Registry struct {
	*prometheus.Registry

	candidatesTotal *prometheus.CounterVec
	exitsTotal      *prometheus.CounterVec
	splitsAdjusted  prometheus.Counter
	batchDuration   prometheus.Histogram
	mergesTotal     *prometheus.CounterVec
	mergeDuration   prometheus.Histogram
	archiveRows     prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{Registry: reg}

	r.candidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionex_candidates_total",
			Help: "Candidates processed per outcome",
		},
		[]string{"outcome"}, // simulated / skipped_no_data / skipped_no_entry / skipped_incomplete
	)
	r.exitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionex_exits_total",
			Help: "Simulated exits per rule",
		},
		[]string{"reason"},
	)
	r.splitsAdjusted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessionex_splits_adjusted_total",
			Help: "Windows adjusted for a detected split",
		},
	)
	r.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sessionex_batch_duration_seconds",
			Help:    "Simulation batch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)
	r.mergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionex_archive_merges_total",
			Help: "Archive merges per status",
		},
		[]string{"status"},
	)
	r.mergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sessionex_archive_merge_duration_seconds",
			Help:    "Archive merge duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.archiveRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessionex_archive_rows",
			Help: "Rows in the archive after the last merge",
		},
	)

	reg.MustRegister(r.candidatesTotal)
	reg.MustRegister(r.exitsTotal)
	reg.MustRegister(r.splitsAdjusted)
	reg.MustRegister(r.batchDuration)
	reg.MustRegister(r.mergesTotal)
	reg.MustRegister(r.mergeDuration)
	reg.MustRegister(r.archiveRows)

	return r
}

// RecordCandidate tallies one candidate outcome.
func (r *Registry) RecordCandidate(outcome string) {
	r.candidatesTotal.WithLabelValues(outcome).Inc()
}

// RecordExit tallies a simulated exit by reason.
func (r *Registry) RecordExit(reason string) {
	r.exitsTotal.WithLabelValues(reason).Inc()
}

// RecordSplitAdjusted tallies a split-adjusted window.
func (r *Registry) RecordSplitAdjusted() {
	r.splitsAdjusted.Inc()
}

// RecordBatch records a completed simulation batch.
func (r *Registry) RecordBatch(duration float64) {
	r.batchDuration.Observe(duration)
}

// RecordMerge records an archive merge attempt.
func (r *Registry) RecordMerge(status string, duration float64, rows int) {
	r.mergesTotal.WithLabelValues(status).Inc()
	r.mergeDuration.Observe(duration)
	if status == "ok" {
		r.archiveRows.Set(float64(rows))
	}
}

// Dump writes every gathered metric family to w in the Prometheus text
// exposition format.
func (r *Registry) Dump(w io.Writer) error {
	families, err := r.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile dumps the metrics to path for a node_exporter textfile
// collector to pick up. Temp file plus rename, so the collector never
// scrapes a half-written file.
func (r *Registry) WriteTextfile(path string) error {
	var buf bytes.Buffer
	if err := r.Dump(&buf); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing metrics file: %w", err)
	}
	return nil
}
