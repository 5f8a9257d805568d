package monitor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "netcopilot"

// Tracer wraps OpenTelemetry tracing for the diagnosis pipeline.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer using the global TracerProvider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartSpan creates a new span and returns the updated context.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("netcopilot.%s", name),
		trace.WithAttributes(attrs...),
	)
	return ctx, span
}

// SpanFromContext returns the current span from the context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// Common attribute keys for pipeline tracing.
var (
	AttrRequestID  = attribute.Key("netcopilot.request.id")
	AttrCommand    = attribute.Key("netcopilot.command")
	AttrReason     = attribute.Key("netcopilot.verdict.reason")
	AttrExitCode   = attribute.Key("netcopilot.exit_code")
	AttrSource     = attribute.Key("netcopilot.explanation.source")
	AttrDurationMS = attribute.Key("netcopilot.duration_ms")
)
