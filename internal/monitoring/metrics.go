package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry

	turnDuration        *prometheus.HistogramVec
	turnsTotal          *prometheus.CounterVec
	classifierFallbacks *prometheus.CounterVec
	inferenceDuration   *prometheus.HistogramVec
	activeSessions      prometheus.Gauge
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefai_turn_duration_seconds",
			Help:    "Time taken to process a conversation turn",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"intent"},
	)

	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_turns_total",
			Help: "Processed conversation turns by intent and outcome",
		},
		[]string{"intent", "status"},
	)

	classifierFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_classifier_fallbacks_total",
			Help: "Turns where classification failed open to the default handler",
		},
		[]string{"stage"},
	)

	inferenceDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefai_inference_duration_seconds",
			Help:    "Duration of individual model calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"model"},
	)

	activeSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chefai_active_sessions",
			Help: "Sessions currently resident in the store",
		},
	)

	registry.MustRegister(turnDuration, turnsTotal, classifierFallbacks, inferenceDuration, activeSessions)

	return &MetricsCollector{
		registry:            registry,
		turnDuration:        turnDuration,
		turnsTotal:          turnsTotal,
		classifierFallbacks: classifierFallbacks,
		inferenceDuration:   inferenceDuration,
		activeSessions:      activeSessions,
	}
}

// RecordTurn records one completed (or failed) turn.
func (mc *MetricsCollector) RecordTurn(intent string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	mc.turnsTotal.WithLabelValues(intent, status).Inc()
	mc.turnDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordClassifierFallback records a fail-open classification.
func (mc *MetricsCollector) RecordClassifierFallback(stage string) {
	mc.classifierFallbacks.WithLabelValues(stage).Inc()
}

// RecordInference records the duration of one model call.
func (mc *MetricsCollector) RecordInference(model string, duration time.Duration) {
	mc.inferenceDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// SetActiveSessions updates the resident-session gauge.
func (mc *MetricsCollector) SetActiveSessions(n int) {
	mc.activeSessions.Set(float64(n))
}

// Handler returns the HTTP handler serving this collector's registry.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
