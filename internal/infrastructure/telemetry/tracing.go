package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of service spans
const TracerName = "storefront-payments"

// Span attribute keys
var (
	SpanPaymentID  = attribute.Key("payment_id")
	SpanDeliveryID = attribute.Key("delivery_id")
	SpanEventType  = attribute.Key("event_type")
	SpanForceSync  = attribute.Key("force")
	SpanSynced     = attribute.Key("synced")
	SpanUpdated    = attribute.Key("updated")
	SpanRemote     = attribute.Key("remote_status")
)

// StartServiceSpan opens an internal span named service.method on the global
// provider, so it picks up span profiles once they are enabled. Close it with
// EndSpan.
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}

// EndSpan ends span. A non-nil err marks the span failed; otherwise attrs
// describe the result.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	span.End()
}
