package sdk

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// NewTracerProvider creates a TracerProvider suitable for passing to
// WithTracerProvider. Every inspection run then opens a span carrying the
// repair name, the triggering event, and the issue count.
//
// The provider uses a SimpleSpanProcessor for immediate export without
// batching, so spans from short-lived worker processes are not lost on
// shutdown. A nil exporter yields a provider that records spans without
// exporting them, which is useful in tests.
//
// Parameters:
//   - serviceName: The service name attached to exported spans (defaults to Name)
//   - exporter: The span exporter to send completed spans to (nil disables export)
//   - logger: Structured logger for recording setup problems
//
// Returns a configured TracerProvider ready for creating tracers.
func NewTracerProvider(serviceName string, exporter sdktrace.SpanExporter, logger *slog.Logger) *sdktrace.TracerProvider {
	if serviceName == "" {
		serviceName = Name
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Create resource with service information
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}
	if exporter != nil {
		// Use SimpleSpanProcessor for immediate export (no batching)
		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)))
	}

	return sdktrace.NewTracerProvider(opts...)
}
