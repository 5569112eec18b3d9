package upload

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for upload spans.
const defaultTracerName = "github.com/vango-dev/dropzone/pkg/upload"

// spanName is the name of the span covering one accepted file.
const spanName = "dropzone.upload.process"

func defaultTracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

// startAttemptSpan opens the span for an accepted file. The span ends when
// the attempt completes, fails or is released.
func startAttemptSpan(tracer trace.Tracer, widgetID, attemptID string, f FileInfo) (context.Context, trace.Span) {
	return tracer.Start(context.Background(), spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dropzone.widget_id", widgetID),
			attribute.String("dropzone.attempt_id", attemptID),
			attribute.String("dropzone.file.name", f.Name),
			attribute.String("dropzone.file.content_type", f.ContentType),
			attribute.Int64("dropzone.file.size", f.Size),
		),
	)
}

func spanDecoded(span trace.Span, payloadLen int) {
	span.AddEvent("decoded", trace.WithAttributes(
		attribute.Int("dropzone.payload.length", payloadLen),
	))
}

func spanProgress(span trace.Span, progress int) {
	span.AddEvent("progress", trace.WithAttributes(
		attribute.Int("dropzone.progress", progress),
	))
}

func spanCompleted(span trace.Span) {
	span.SetAttributes(attribute.String("dropzone.outcome", "completed"))
	span.SetStatus(codes.Ok, "")
	span.End()
}

func spanFailed(span trace.Span, err error) {
	span.SetAttributes(attribute.String("dropzone.outcome", "decode_failure"))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func spanAborted(span trace.Span, reason string) {
	span.SetAttributes(
		attribute.String("dropzone.outcome", "aborted"),
		attribute.String("dropzone.abort_reason", reason),
	)
	span.End()
}
