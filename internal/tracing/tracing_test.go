package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_WithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "fulfillment-test"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
	if otel.GetTextMapPropagator() == nil {
		t.Fatal("expected propagator to be installed")
	}
}

func TestTracer_UsesGlobalProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	_, span := Tracer().Start(context.Background(), "unit")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "unit" {
		t.Fatalf("expected one ended span named unit, got %d", len(spans))
	}
	if spans[0].InstrumentationScope().Name != InstrumentationName {
		t.Fatalf("unexpected instrumentation scope %q", spans[0].InstrumentationScope().Name)
	}
}

func TestSampler(t *testing.T) {
	if sampler(0).Description() != sdktrace.AlwaysSample().Description() {
		t.Fatal("zero ratio must sample everything")
	}
	if sampler(0.25).Description() == sdktrace.AlwaysSample().Description() {
		t.Fatal("fractional ratio must use TraceIDRatioBased")
	}
}
