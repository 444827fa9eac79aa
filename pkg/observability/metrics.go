package observability

import (
	"context"
	"math"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a calculator process.
type Metrics struct {
	Intents         *prometheus.CounterVec
	Calculations    *prometheus.CounterVec
	HistoryEntries  prometheus.Histogram
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcpad_intents_total",
				Help: "Total number of intents applied, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcpad_calculations_total",
				Help: "Total number of completed calculations, by operator and whether the result is finite",
			},
			[]string{"operator", "finite"},
		),
		HistoryEntries: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "calcpad_history_entries",
				Help:    "History length observed after each history change",
				Buckets: []float64{0, 1, 5, 10, 25, 50},
			},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcpad_store_operations_total",
				Help: "Total number of key-value store calls, by operation and result",
			},
			[]string{"op", "result"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calcpad_store_operation_duration_seconds",
				Help:    "Duration of key-value store calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Intents, m.Calculations, m.HistoryEntries, m.StoreOperations, m.StoreDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnIntent: func(_ context.Context, e *domain.IntentEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.Intents.WithLabelValues(string(e.Intent.Kind), outcome).Inc()
		},
		OnCalculate: func(_ context.Context, e *domain.CalculationEvent) {
			finite := "true"
			if math.IsNaN(e.Completion.Result) || math.IsInf(e.Completion.Result, 0) {
				finite = "false"
			}
			m.Calculations.WithLabelValues(string(e.Operator), finite).Inc()
		},
		OnHistoryChange: func(_ context.Context, e *domain.HistoryEvent) {
			m.HistoryEntries.Observe(float64(len(e.Items)))
		},
	}
}
