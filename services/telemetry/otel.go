// Package telemetry sets up OpenTelemetry tracing.
package telemetry

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/trezcool/lophoc/core"
)

// Setup registers a global tracer provider exporting to conf.OtelEndpoint.
// Tracing is opt-in: without an endpoint nothing is registered.
// The returned shutdown func flushes pending spans.
func Setup(ctx context.Context, conf *core.Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if conf.OtelEndpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(conf.OtelEndpoint))
	if err != nil {
		return noop, errors.Wrap(err, "creating trace exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(conf.AppName),
			semconv.ServiceVersion(conf.Build),
		),
	)
	if err != nil {
		return noop, errors.Wrap(err, "creating trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
