package observability

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/calcpad/pkg/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is used when OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "calcpad"

// ServiceName returns OTEL_SERVICE_NAME, or DefaultServiceName.
func ServiceName() string {
	name := os.Getenv("OTEL_SERVICE_NAME")
	if name == "" {
		name = DefaultServiceName
	}
	return name
}

// InitTracing installs a global tracer provider exporting spans over OTLP/HTTP.
// An empty endpoint defers to the OTEL_EXPORTER_OTLP_* environment variables.
// The returned function flushes and stops the provider.
func InitTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	var opts []otlptracehttp.Option
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// TracingHooks records calculator events on the span carried by ctx.
// Without an active span the hooks do nothing.
func TracingHooks() domain.Hooks {
	return domain.Hooks{
		OnIntent: func(ctx context.Context, e *domain.IntentEvent) {
			span := trace.SpanFromContext(ctx)
			if !span.IsRecording() {
				return
			}
			attrs := []attribute.KeyValue{
				attribute.String("intent.kind", string(e.Intent.Kind)),
				attribute.String("display.main", e.Snapshot.Main),
			}
			if e.Err != nil {
				attrs = append(attrs, attribute.String("error", e.Err.Error()))
			}
			span.AddEvent("calcpad.intent", trace.WithAttributes(attrs...))
		},
		OnCalculate: func(ctx context.Context, e *domain.CalculationEvent) {
			span := trace.SpanFromContext(ctx)
			if !span.IsRecording() {
				return
			}
			span.AddEvent("calcpad.calculate", trace.WithAttributes(
				attribute.String("operator", string(e.Operator)),
				attribute.String("expression", e.Completion.Expression),
				attribute.String("result", domain.FormatNumber(e.Completion.Result)),
			))
		},
	}
}
