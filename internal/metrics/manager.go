package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Burn estimate sources.
const (
	BurnSourceHistory  = "history"
	BurnSourceActivity = "activity"
)

type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterMetricsComputed *prometheus.CounterVec
	CounterInvalidInput    *prometheus.CounterVec
	CounterBurnEstimates   *prometheus.CounterVec
	CounterFitImported     prometheus.Counter
	CounterFitFailed       prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fitness", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitness", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterMetricsComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "metrics_computed",
			Help:      "Derived metric sets computed, by formula pair",
		}, []string{"bmr_formula", "body_fat_formula"}),
		CounterInvalidInput: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invalid_input",
			Help:      "Requests rejected for invalid biometric input, by operation",
		}, []string{"operation"}),
		CounterBurnEstimates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "burn_estimates",
			Help:      "Average burn estimates, by source (history or activity fallback)",
		}, []string{"source"}),
		CounterFitImported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fit_imported",
			Help:      "FIT activity files imported as exercise logs",
		}),
		CounterFitFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fit_failed",
			Help:      "FIT activity files that could not be imported",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request duration by route",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		}, []string{"route", "method", "status"}),
	}
}
