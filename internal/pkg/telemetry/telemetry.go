// Package telemetry wires OpenTelemetry metrics and traces for walletscope.
// When enabled, providers export over OTLP gRPC (configured through the
// standard OTEL_EXPORTER_OTLP_* variables) and are registered globally.
// When disabled, the global no-op providers stay in place, so Tracer and
// Meter are always safe to call.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans and instruments created by this module.
const InstrumentationName = "github.com/gabapcia/walletscope"

// ShutdownFunc flushes and stops the providers created by Init.
type ShutdownFunc func(ctx context.Context) error

type config struct {
	enabled bool
	version string
}

// Option configures Init.
type Option func(*config)

// WithEnabled toggles exporting. Init is a no-op when disabled.
func WithEnabled(enabled bool) Option {
	return func(c *config) {
		c.enabled = enabled
	}
}

// WithVersion sets the service.version resource attribute.
func WithVersion(version string) Option {
	return func(c *config) {
		c.version = version
	}
}

func initMeterProvider(ctx context.Context, res *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

func initTracerProvider(ctx context.Context, res *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

func newResource(serviceName, version string) (*sdkresource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	if version != "" {
		attrs = append(attrs, semconv.ServiceVersion(version))
	}

	return sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

// Init sets up metric and trace export for serviceName. Telemetry is enabled
// by default; pass WithEnabled(false) to keep the no-op providers.
func Init(ctx context.Context, serviceName string, opts ...Option) (ShutdownFunc, error) {
	cfg := config{enabled: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := newResource(serviceName, cfg.version)
	if err != nil {
		return nil, err
	}

	mp, err := initMeterProvider(ctx, res)
	if err != nil {
		return nil, err
	}

	tp, err := initTracerProvider(ctx, res)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx))
	}

	return func(ctx context.Context) error {
		return errors.Join(
			mp.Shutdown(ctx),
			tp.Shutdown(ctx),
		)
	}, nil
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Meter returns the module meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}
