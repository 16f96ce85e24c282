package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "comanda-backend"

// StartServiceSpan starts an internal span named {service}.{method}, e.g. "tab.add_item".
// The caller must End the span.
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records err on the span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// EndSpan records a non-nil *errp and ends the span; use with defer and a named error result.
func EndSpan(span trace.Span, errp *error) {
	if errp != nil {
		RecordError(span, *errp)
	}
	span.End()
}

// GetTraceID returns the trace ID of the span in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

// Span attribute keys for application spans.
const (
	SpanAttrTabID     = attribute.Key("tab_id")
	SpanAttrTabNumber = attribute.Key("tab_number")
	SpanAttrItemID    = attribute.Key("item_id")
	SpanAttrProductID = attribute.Key("product_id")
	SpanAttrQuantity  = attribute.Key("quantity")
	SpanAttrAmount    = attribute.Key("amount")
	SpanAttrPayment   = attribute.Key("payment_method")
)
