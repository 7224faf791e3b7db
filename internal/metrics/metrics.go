// Package metrics exposes engine counters and timings to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
// All Record methods are no-ops on a nil *Metrics.
type Metrics struct {
	EffectsApplied     *prometheus.CounterVec
	EffectsEnded       *prometheus.CounterVec
	AbilityActivations *prometheus.CounterVec
	TickDuration       prometheus.Histogram
	ActiveEffects      prometheus.Gauge
	Entities           prometheus.Gauge
}

// NewMetrics creates the engine metrics and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EffectsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gas_effects_applied_total",
				Help: "Total number of effect applications by result",
			},
			[]string{"result"},
		),
		EffectsEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gas_effects_ended_total",
				Help: "Total number of active effects ended by reason",
			},
			[]string{"reason"},
		),
		AbilityActivations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gas_ability_activations_total",
				Help: "Total number of ability activation attempts by outcome",
			},
			[]string{"outcome"},
		),
		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gas_tick_duration_seconds",
				Help:    "Simulation tick duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
		),
		ActiveEffects: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gas_active_effects",
				Help: "Number of active duration effects",
			},
		),
		Entities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gas_entities",
				Help: "Number of spawned entities",
			},
		),
	}

	reg.MustRegister(
		m.EffectsApplied,
		m.EffectsEnded,
		m.AbilityActivations,
		m.TickDuration,
		m.ActiveEffects,
		m.Entities,
	)
	return m
}

// RecordEffectApplied counts one effect application.
func (m *Metrics) RecordEffectApplied(result string) {
	if m == nil {
		return
	}
	m.EffectsApplied.WithLabelValues(result).Inc()
}

// RecordEffectEnded counts one active effect ending.
func (m *Metrics) RecordEffectEnded(reason string) {
	if m == nil {
		return
	}
	m.EffectsEnded.WithLabelValues(reason).Inc()
}

// RecordActivation counts one ability activation attempt or cast completion.
func (m *Metrics) RecordActivation(outcome string) {
	if m == nil {
		return
	}
	m.AbilityActivations.WithLabelValues(outcome).Inc()
}

// ObserveTick records one tick's duration and the world's size after it.
func (m *Metrics) ObserveTick(d time.Duration, activeEffects, entities int) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(d.Seconds())
	m.ActiveEffects.Set(float64(activeEffects))
	m.Entities.Set(float64(entities))
}
