package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/observability"
	"github.com/aretw0/calcpad/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	underlying := NewMockStore()
	store := middleware.NewMetricsMiddleware(metrics)(underlying)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	assert.NoError(t, store.Set(ctx, "k", "v"))

	underlying.err = errBackend
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), errBackend)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("set", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("set", "error")))
}

func TestChain_Order(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	underlying := NewMockStore()
	store := middleware.Chain(underlying,
		middleware.NewMetricsMiddleware(metrics),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: make([]byte, 32)}),
	)

	assert.NoError(t, store.Set(context.Background(), "k", "v"))
	assert.Contains(t, underlying.data["k"], "enc:v1:", "encryption runs inside metrics")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("set", "ok")))
}
