// Package tracing configures the OpenTelemetry tracer provider used by the
// fetcher, pipeline and HTTP spans.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	stdout "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by Setup.
const (
	ExporterNone   = ""
	ExporterStdout = "stdout"
)

// Config selects the span exporter.
type Config struct {
	// Exporter is ExporterNone or ExporterStdout.
	Exporter string

	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string

	// Output receives stdout spans (default: os.Stdout).
	Output io.Writer
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a global tracer provider and the W3C propagators.
// With ExporterNone spans are sampled but never exported.
func Setup(cfg Config) (ShutdownFunc, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	}

	switch strings.ToLower(cfg.Exporter) {
	case ExporterNone:
	case ExporterStdout:
		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		exporter, err := stdout.New(stdout.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	log.Debug().
		Str("component", "tracing").
		Str("exporter", cfg.Exporter).
		Msg("Tracer provider installed")

	return tp.Shutdown, nil
}
