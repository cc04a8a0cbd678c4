package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProviderWithoutEndpointIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Enabled() {
		t.Error("provider without endpoint should be disabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown of disabled provider should not error: %v", err)
	}
}

func TestNilProviderShutdown(t *testing.T) {
	var p *Provider
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown of nil provider should not error: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "ParentBased{root:AlwaysOnSampler"},
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		got := Sampler(tt.rate).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("Sampler(%v) = %q, want prefix %q", tt.rate, got, tt.want)
		}
	}
}

func TestInstallSetsGlobalProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	Install(tp)
	if otel.GetTracerProvider() != tp {
		t.Fatal("expected global tracer provider to be installed")
	}

	_, span := otel.Tracer("test").Start(context.Background(), "list services")
	span.End()
	if got := len(exporter.GetSpans()); got != 1 {
		t.Errorf("exported spans = %d, want 1", got)
	}
}
