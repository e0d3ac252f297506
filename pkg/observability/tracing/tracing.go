// Package tracing configures OpenTelemetry and provides server spans for fasthttp.
package tracing

import (
	"context"
	"io"
	"os"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Supported exporters
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterZipkin = "zipkin"
	ExporterJaeger = "jaeger"
)

// Exporters lists the accepted exporter names
var Exporters = []string{ExporterNone, ExporterStdout, ExporterZipkin, ExporterJaeger}

// Default collector endpoints
const (
	DefaultZipkinEndpoint = "http://localhost:9411/api/v2/spans"
	DefaultJaegerEndpoint = "http://localhost:14268/api/traces"
)

// Config configures the tracer provider
type Config struct {
	// Exporter is one of none, stdout, zipkin, jaeger (default: none)
	Exporter string

	// Endpoint is the collector URL for zipkin and jaeger
	Endpoint string

	// ServiceName is reported as service.name
	ServiceName string

	// SampleRate is the fraction of root spans sampled, 0..1 (default: 1)
	SampleRate float64

	// Writer receives stdout exporter output (default: os.Stdout)
	Writer io.Writer
}

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(ctx context.Context) error

// Initialize installs a global tracer provider and W3C trace-context propagation.
// With the none exporter the global no-op provider is left in place.
func Initialize(cfg Config) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return func(context.Context) error { return nil }, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = "todos"
	}
	rate := cfg.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		return exp, errors.Wrap(err, "create stdout exporter")
	case ExporterZipkin:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = DefaultZipkinEndpoint
		}
		exp, err := zipkin.New(endpoint)
		return exp, errors.Wrap(err, "create zipkin exporter")
	case ExporterJaeger:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = DefaultJaegerEndpoint
		}
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
		return exp, errors.Wrap(err, "create jaeger exporter")
	default:
		return nil, &core.Error{Code: core.CodeInvalidConfig, Message: "unknown tracing exporter: " + cfg.Exporter}
	}
}
