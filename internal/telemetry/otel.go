package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"google.golang.org/grpc"

	"github.com/balaji-balu/lizzy-client/internal/version"
)

// Exporters.
const (
	ExporterNone   = ""
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const ServiceName = "lizzy-client"

type Config struct {
	Exporter string
	// Endpoint is the OTLP collector, host:port.
	Endpoint string
	// Writer receives stdout spans, os.Stderr when nil.
	Writer io.Writer
}

// InitTracer installs the global tracer provider. With no exporter the
// default no-op provider stays in place. The returned function flushes and
// shuts the provider down.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch cfg.Exporter {
	case ExporterNone:
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if cfg.Writer != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Writer))
		}
		exp, err = stdouttrace.New(opts...)
	case ExporterOTLP:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		exp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(version.UserAgent)),
		)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(version.Version),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
