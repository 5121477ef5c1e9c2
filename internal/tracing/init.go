package tracing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var ErrTracingAddressEmpty = errors.New("tracing enabled, but tracing address empty")

// NewTraceProvider samples sample percent of the traces, every trace for 0 or 100.
func NewTraceProvider(exporter sdktrace.SpanExporter, serviceName string, sample int) *sdktrace.TracerProvider {
	sampler := sdktrace.AlwaysSample()
	if sample > 0 && sample < 100 {
		sampler = sdktrace.TraceIDRatioBased(float64(sample) / 100)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler),
	)
}

// Enable installs a global tracer provider exporting spans over OTLP/gRPC to dialAddr.
// The returned func flushes and shuts the exporter down.
func Enable(logger *slog.Logger, serviceName string, dialAddr string, sample int) (func(), error) {
	if dialAddr == "" {
		return nil, ErrTracingAddressEmpty
	}

	ctx := context.Background()

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(dialAddr), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := NewTraceProvider(exporter, serviceName, sample)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)

	cleanup := func() {
		err = tp.Shutdown(ctx)
		if err != nil {
			logger.Error("Failed to shutdown tracing provider", slog.String("err", err.Error()))
		}
	}

	return cleanup, nil
}
