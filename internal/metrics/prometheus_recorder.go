package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	registry       *prom.Registry
	artifacts      *prom.CounterVec
	renderDuration *prom.HistogramVec
	exportDuration prom.Histogram
	exportOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.artifacts = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "nbexport",
			Name:      "artifacts_total",
			Help:      "Artifacts emitted by kind",
		}, []string{"kind"})
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "nbexport",
			Name:      "render_duration_seconds",
			Help:      "Duration of individual notebook renders",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.exportDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "nbexport",
			Name:      "export_duration_seconds",
			Help:      "Total export duration",
			Buckets:   prom.DefBuckets,
		})
		pr.exportOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "nbexport",
			Name:      "export_outcomes_total",
			Help:      "Export outcomes by final status",
		}, []string{"outcome"})
		reg.MustRegister(pr.artifacts, pr.renderDuration, pr.exportDuration, pr.exportOutcome)
	})
	return pr
}

// Registry exposes the backing registry for HTTP scraping.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncArtifact(kind string) {
	if p == nil || p.artifacts == nil {
		return
	}
	p.artifacts.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration, success bool) {
	if p == nil || p.renderDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.renderDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveExportDuration(d time.Duration) {
	if p == nil || p.exportDuration == nil {
		return
	}
	p.exportDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncExportOutcome(outcome string) {
	if p == nil || p.exportOutcome == nil {
		return
	}
	p.exportOutcome.WithLabelValues(outcome).Inc()
}
