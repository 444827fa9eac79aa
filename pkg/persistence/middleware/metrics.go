package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/observability"
	"github.com/aretw0/calcpad/pkg/ports"
)

type metricsMiddleware struct {
	next    ports.KVStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware records call counts and latency of the wrapped store.
func NewMetricsMiddleware(metrics *observability.Metrics) Middleware {
	return func(next ports.KVStore) ports.KVStore {
		return &metricsMiddleware{next: next, metrics: metrics}
	}
}

func (m *metricsMiddleware) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	value, err := m.next.Get(ctx, key)
	m.observe("get", start, err)
	return value, err
}

func (m *metricsMiddleware) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := m.next.Set(ctx, key, value)
	m.observe("set", start, err)
	return err
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.metrics.StoreOperations.WithLabelValues(op, result).Inc()
	m.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
