// Package metrics records per-run gauges and writes them in the Prometheus
// text exposition format for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tvcut"

// Recorder holds the gauges for a single tvcut process. Each recording is
// a label value so one textfile can describe several runs.
type Recorder struct {
	registry *prometheus.Registry

	segments          *prometheus.GaugeVec
	removedSeconds    *prometheus.GaugeVec
	finalSeconds      *prometheus.GaugeVec
	captionsClipped   *prometheus.GaugeVec
	captionEntries    *prometheus.GaugeVec
	calibrationFrames *prometheus.GaugeVec
	lastRun           *prometheus.GaugeVec
	runFailures       *prometheus.CounterVec
}

// NewRecorder creates a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		segments: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "segments",
			Help:      "Keep segments emitted by the cutlist planner",
		}, []string{"recording", "strategy"}),
		removedSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "removed_seconds",
			Help:      "Seconds of the recording excluded from the output",
		}, []string{"recording"}),
		finalSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "final_duration_seconds",
			Help:      "Duration of the rejoined output",
		}, []string{"recording"}),
		captionsClipped: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "captions",
			Name:      "clipped",
			Help:      "Caption entries clipped at a cut boundary",
		}, []string{"recording"}),
		captionEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "captions",
			Name:      "entries",
			Help:      "Caption entries written after resync",
		}, []string{"recording"}),
		calibrationFrames: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "locate",
			Name:      "calibration_frames",
			Help:      "Frames counted by the byte-offset calibration pass",
		}, []string{"recording"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run for a recording finished",
		}, []string{"recording", "status"}),
		runFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Failed runs by error class",
		}, []string{"class"}),
	}
}

// PlanSummary is the subset of a plan the recorder exports.
type PlanSummary struct {
	Recording     string
	Strategy      string
	Segments      int
	Removed       float64
	FinalDuration float64
}

// ObservePlan records planner output for a recording.
func (r *Recorder) ObservePlan(s PlanSummary) {
	name := label(s.Recording)
	r.segments.WithLabelValues(name, s.Strategy).Set(float64(s.Segments))
	r.removedSeconds.WithLabelValues(name).Set(s.Removed)
	r.finalSeconds.WithLabelValues(name).Set(s.FinalDuration)
}

// ObserveCalibration records the calibration frame count.
func (r *Recorder) ObserveCalibration(recording string, frames int64) {
	r.calibrationFrames.WithLabelValues(label(recording)).Set(float64(frames))
}

// ObserveCaptions records resync statistics.
func (r *Recorder) ObserveCaptions(recording string, entries, clipped int) {
	name := label(recording)
	r.captionEntries.WithLabelValues(name).Set(float64(entries))
	r.captionsClipped.WithLabelValues(name).Set(float64(clipped))
}

// ObserveRun stamps the finish time and counts failures by class.
func (r *Recorder) ObserveRun(recording string, finished time.Time, failureClass string) {
	status := "success"
	if failureClass != "" {
		status = "failure"
		r.runFailures.WithLabelValues(failureClass).Inc()
	}
	r.lastRun.WithLabelValues(label(recording), status).Set(float64(finished.Unix()))
}

// WriteTextfile writes every gathered metric to path. Missing parent
// directories are created. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func label(recording string) string {
	if recording == "" {
		return "unknown"
	}
	return filepath.Base(recording)
}
