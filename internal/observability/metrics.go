// Package observability provides Prometheus metrics for the waste scanner.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded by RecordRequest.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Metrics holds the collectors for the detection pipeline. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	Results          *prometheus.CounterVec
	MappedDetections *prometheus.CounterVec
	UnmappedClasses  *prometheus.CounterVec
	DetectDuration   prometheus.Histogram
	DetectErrors     prometheus.Counter
}

// NewMetrics creates a registry with the pipeline collectors plus the Go
// runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wastescanner_requests_total",
				Help: "Total number of detect-waste requests partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wastescanner_results_total",
				Help: "Total number of selected results partitioned by waste type.",
			},
			[]string{"type"},
		),
		MappedDetections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wastescanner_mapped_detections_total",
				Help: "Detections resolved to a waste category, partitioned by category key.",
			},
			[]string{"category"},
		),
		UnmappedClasses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wastescanner_unmapped_detections_total",
				Help: "Detections whose class has no waste category, partitioned by detector label.",
			},
			[]string{"label"},
		),
		DetectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wastescanner_detect_duration_seconds",
				Help:    "Time taken by the detector for one image.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
			},
		),
		DetectErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wastescanner_detect_errors_total",
				Help: "Total number of detector failures.",
			},
		),
	}

	collectorsToRegister := []prometheus.Collector{
		m.Requests,
		m.Results,
		m.MappedDetections,
		m.UnmappedClasses,
		m.DetectDuration,
		m.DetectErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range collectorsToRegister {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	if m == nil {
		return
	}
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
}

// RecordRequest counts a finished detect-waste request.
func (m *Metrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

// RecordResult counts the waste type returned to the caller.
func (m *Metrics) RecordResult(wasteType string) {
	if m == nil {
		return
	}
	m.Results.WithLabelValues(wasteType).Inc()
}

// RecordMapped counts a detection resolved to category.
func (m *Metrics) RecordMapped(category string) {
	if m == nil {
		return
	}
	m.MappedDetections.WithLabelValues(category).Inc()
}

// RecordUnmapped counts a detection dropped because its class has no category.
func (m *Metrics) RecordUnmapped(label string) {
	if m == nil {
		return
	}
	m.UnmappedClasses.WithLabelValues(label).Inc()
}

// ObserveDetect records one detector call.
func (m *Metrics) ObserveDetect(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.DetectDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.DetectErrors.Inc()
	}
}
