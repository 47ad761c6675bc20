// Package metrics exposes the studio's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for GenerationResults.
const (
	ResultGenerated = "generated"
	ResultFallback  = "fallback"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GenerationAttempts *prometheus.CounterVec
	GenerationResults  *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	Applies            *prometheus.CounterVec
	FrameCallbacks     prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GenerationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_generation_attempts_total",
				Help: "Remote generation attempts by outcome (ok, timeout, error)",
			},
			[]string{"outcome"},
		),
		GenerationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_generation_results_total",
				Help: "Generation results by source (generated, fallback)",
			},
			[]string{"source"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scene_generation_duration_seconds",
				Help:    "Wall time of a generation including retries",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 90},
			},
		),
		Applies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_applies_total",
				Help: "Scene units applied by outcome (ok, error)",
			},
			[]string{"outcome"},
		),
		FrameCallbacks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "scene_frame_callbacks",
				Help: "Per-frame callbacks currently registered",
			},
		),
	}
	m.registry.MustRegister(
		m.GenerationAttempts,
		m.GenerationResults,
		m.GenerationDuration,
		m.Applies,
		m.FrameCallbacks,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Attempt counts one remote attempt.
func (m *Metrics) Attempt(outcome string) {
	if m == nil {
		return
	}
	m.GenerationAttempts.WithLabelValues(outcome).Inc()
}

// Result counts one generation result and its duration.
func (m *Metrics) Result(fallback bool, seconds float64) {
	if m == nil {
		return
	}
	source := ResultGenerated
	if fallback {
		source = ResultFallback
	}
	m.GenerationResults.WithLabelValues(source).Inc()
	m.GenerationDuration.Observe(seconds)
}

// Apply counts one applied unit.
func (m *Metrics) Apply(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Applies.WithLabelValues(outcome).Inc()
}

// Frames records the number of registered per-frame callbacks.
func (m *Metrics) Frames(n int) {
	if m == nil {
		return
	}
	m.FrameCallbacks.Set(float64(n))
}
