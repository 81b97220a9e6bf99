package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName identifies the navigation runtime's tracer.
const defaultTracerName = "aeon-nav"

// Tracer wraps an OpenTelemetry tracer with navigation-shaped helpers.
// The zero value and nil are valid and record nothing.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer resolves a tracer from the global provider. Configure the
// provider in main() before constructing the engine.
func NewTracer(name string) *Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return &Tracer{tracer: otel.Tracer(name)}
}

// StartNavigation opens a span for one navigation. The returned end
// function records the error outcome and closes the span; it is always
// non-nil.
func (t *Tracer) StartNavigation(ctx context.Context, path string) (context.Context, func(err error)) {
	if t == nil || t.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := t.tracer.Start(ctx, "nav.navigate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("nav.path", path)),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// StartPrefetch opens a span for one prefetch.
func (t *Tracer) StartPrefetch(ctx context.Context, path, sessionID string) (context.Context, func(err error)) {
	if t == nil || t.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := t.tracer.Start(ctx, "nav.prefetch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("nav.path", path),
			attribute.String("nav.session_id", sessionID),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
