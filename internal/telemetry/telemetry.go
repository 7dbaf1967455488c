package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"LichessIngest/internal/config"
)

// Telemetry owns the tracer provider installed for this process, if any.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
}

// Enabled reports whether spans are exported.
func (t Telemetry) Enabled() bool {
	return t.TracerProvider != nil
}

// Shutdown flushes pending spans.
func (t Telemetry) Shutdown(ctx context.Context) error {
	if t.TracerProvider == nil {
		return nil
	}
	return t.TracerProvider.Shutdown(ctx)
}

// Setup installs an OTLP/HTTP tracer provider when cfg.Endpoint is set.
// Without an endpoint the global no-op provider stays in place.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (Telemetry, error) {
	if cfg.Endpoint == "" {
		return Telemetry{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	r, err := newResource(cfg.ServiceName)
	if err != nil {
		return Telemetry{}, fmt.Errorf("telemetry resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return Telemetry{}, fmt.Errorf("telemetry exporter: %w", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	)
	otel.SetTracerProvider(provider)

	return Telemetry{TracerProvider: provider}, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = "lichessingest"
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}
