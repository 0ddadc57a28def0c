// Package metrics records run metrics for the node-exporter textfile
// collector. Metrics live in a private registry; nothing is served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run results used as the "result" label.
const (
	ResultSuccess        = "success"
	ResultSourceFailed   = "source_open_failed"
	ResultSinkFailed     = "sink_open_failed"
	ResultCopyFailed     = "copy_failed"
	ResultVerifyMismatch = "verify_mismatch"
)

// Metrics holds the framecopy collectors.
type Metrics struct {
	reg *prometheus.Registry

	FramesCopied prometheus.Counter
	WriteErrors  prometheus.Counter
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Gauge
	OutputBytes  prometheus.Gauge
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		FramesCopied: f.NewCounter(prometheus.CounterOpts{
			Name: "framecopy_frames_copied_total",
			Help: "Frames written to the output video",
		}),
		WriteErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "framecopy_frame_write_errors_total",
			Help: "Frames the output video rejected",
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "framecopy_runs_total",
			Help: "Runs by result",
		}, []string{"result"}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "framecopy_run_duration_seconds",
			Help: "Duration of the last run in seconds",
		}),
		OutputBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "framecopy_output_bytes",
			Help: "Size of the last output video in bytes",
		}),
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(frames, writeErrors int, elapsed time.Duration, outBytes int64, result string) {
	m.FramesCopied.Add(float64(frames))
	m.WriteErrors.Add(float64(writeErrors))
	m.Runs.WithLabelValues(result).Inc()
	m.RunDuration.Set(elapsed.Seconds())
	m.OutputBytes.Set(float64(outBytes))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
