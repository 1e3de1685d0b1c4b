package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerNone(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{})
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestInitTracerStdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(context.Background(), Config{Exporter: ExporterStdout, Writer: &buf})
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "agent.GetStack")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !strings.Contains(buf.String(), "agent.GetStack") {
		t.Errorf("expected span in output, got %q", buf.String())
	}
}

func TestInitTracerUnknown(t *testing.T) {
	if _, err := InitTracer(context.Background(), Config{Exporter: "zipkin"}); err == nil {
		t.Error("expected error for unknown exporter")
	}
}
