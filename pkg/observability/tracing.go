package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("goexpr")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEvaluationSpan starts a span covering one evaluation.
	StartEvaluationSpan(ctx context.Context, expression, kind string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager using the global OTel tracer provider.
func NewSpanManager() SpanManager {
	return &otelSpanManager{tracer: otel.Tracer("goexpr")}
}

// NewSpanManagerWithTracer returns a SpanManager bound to an explicit tracer.
func NewSpanManagerWithTracer(t trace.Tracer) SpanManager {
	return &otelSpanManager{tracer: t}
}

func (m *otelSpanManager) StartEvaluationSpan(ctx context.Context, expression, kind string) (context.Context, trace.Span) {
	return startSpan(ctx, m.tracer, expression, kind)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// StartEvaluationSpan starts a goexpr.evaluate span on the global tracer.
func StartEvaluationSpan(ctx context.Context, expression, kind string) (context.Context, trace.Span) {
	return startSpan(ctx, tracer, expression, kind)
}

func startSpan(ctx context.Context, t trace.Tracer, expression, kind string) (context.Context, trace.Span) {
	return t.Start(ctx, "goexpr.evaluate",
		trace.WithAttributes(
			attribute.String("expression", expression),
			attribute.String("kind", kind),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
