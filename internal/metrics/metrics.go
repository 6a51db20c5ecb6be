// Package metrics collects per-run conversion counters.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Field outcomes.
const (
	FieldAccepted = "accepted"
	FieldRejected = "rejected"
	FieldInvalid  = "invalid_polygon"
)

// File outcomes.
const (
	FileProcessed = "processed"
	FileFailed    = "failed"
	FileSkipped   = "skipped"
)

// Recorder owns a private registry so repeated runs in one process
// (tests, mostly) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	files              *prometheus.CounterVec
	fields             *prometheus.CounterVec
	recognitionSeconds *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clovaocr2tds_files_total",
				Help: "Input files by processing outcome",
			},
			[]string{"status"},
		),
		fields: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clovaocr2tds_fields_total",
				Help: "Recognized fields by filter outcome",
			},
			[]string{"outcome"},
		),
		recognitionSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clovaocr2tds_recognition_duration_seconds",
				Help:    "Recognition call latency in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "status"},
		),
	}
	r.registry.MustRegister(r.files, r.fields, r.recognitionSeconds)
	return r
}

// File counts one input file with the given status.
func (r *Recorder) File(status string) {
	r.files.WithLabelValues(status).Inc()
}

// Field counts one recognized field with the given outcome.
func (r *Recorder) Field(outcome string) {
	r.fields.WithLabelValues(outcome).Inc()
}

// Recognition observes the latency of a recognition call.
func (r *Recorder) Recognition(provider string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.recognitionSeconds.WithLabelValues(provider, status).Observe(d.Seconds())
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable for
// node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
