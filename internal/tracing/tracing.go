package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// DispatchTracer traces operation dispatches. When disabled every method is
// a cheap no-op; spans are only allocated for recording tracers.
type DispatchTracer struct {
	tracer  oteltrace.Tracer
	enabled bool
}

// NewDispatchTracer builds a tracer provider with service attribution and
// returns a dispatch tracer bound to it. No external exporter is configured;
// embedders can install one on the global provider.
func NewDispatchTracer(serviceName string, enabled bool) *DispatchTracer {
	if !enabled {
		return &DispatchTracer{}
	}
	tp := trace.NewTracerProvider(
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return &DispatchTracer{tracer: otel.Tracer(serviceName), enabled: true}
}

// Enabled reports whether spans are being recorded.
func (t *DispatchTracer) Enabled() bool { return t != nil && t.enabled }

// StartDispatch opens a span for one operation dispatch.
func (t *DispatchTracer) StartDispatch(ctx context.Context, op string) (context.Context, oteltrace.Span) {
	if !t.Enabled() {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "dispatch",
		oteltrace.WithAttributes(attribute.String("op", op)))
}

// FinishDispatch closes the span, recording the envelope outcome.
func (t *DispatchTracer) FinishDispatch(span oteltrace.Span, op string, ok bool, errMsg string) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Bool("ok", ok))
	if ok {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, errMsg)
		if errMsg != "" {
			span.SetAttributes(attribute.String("error.message", errMsg))
		}
	}
	span.End()
}
