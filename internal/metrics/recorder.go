// Package metrics defines observability hooks for export runs.
package metrics

import "time"

// Artifact kind labels for counters.
const (
	KindIndex       = "index"
	KindNotebook    = "notebook"
	KindPlaceholder = "placeholder"
)

// Export outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Recorder defines observability hooks for export and render metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the zero NoopRecorder so injection stays optional.
type Recorder interface {
	IncArtifact(kind string)
	ObserveRenderDuration(d time.Duration, success bool)
	ObserveExportDuration(d time.Duration)
	IncExportOutcome(outcome string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncArtifact(string)                        {}
func (NoopRecorder) ObserveRenderDuration(time.Duration, bool) {}
func (NoopRecorder) ObserveExportDuration(time.Duration)       {}
func (NoopRecorder) IncExportOutcome(string)                   {}
