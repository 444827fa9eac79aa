/*
Package observability turns calculator lifecycle hooks into metrics, logs
and trace events.

Metrics are exported through Prometheus collectors; the logging hooks write
structured slog records and the tracing hooks add events to the span of
the request. All of them produce domain.Hooks values that can be combined
and passed to the calculator. InitTracing installs the OTLP exporter.
*/
package observability
