package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for all kirana spans.
const tracerName = "github.com/kiranavoice/kirana"

// StartSpan starts a span on the globally registered tracer provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// CorrelationID returns the current trace ID as a hex string, or "" when the
// context carries no recording span. Exposed to clients via the
// X-Correlation-ID response header so a failed interpretation can be matched
// to its server logs.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
