package upload_test

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/dropzone/pkg/auth"
	"github.com/vango-dev/dropzone/pkg/upload"
	"github.com/vango-dev/dropzone/pkg/uploadtest"
)

func newRecordingTracer(t *testing.T) (*tracetest.SpanRecorder, upload.Option) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return rec, upload.WithTracer(tp.Tracer("test"))
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTrace_CompletedAttempt(t *testing.T) {
	rec, opt := newRecordingTracer(t)
	cfg := upload.DefaultConfig()
	w, sched, _ := newTestWidget(t, cfg, auth.Static(true), opt)

	_ = w.Offer(uploadtest.ImageFile("plan.png", "image/png", 64))
	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "dropzone.upload.process" {
		t.Errorf("span name = %q", span.Name())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status().Code)
	}
	if v, _ := spanAttr(span, "dropzone.file.name"); v.AsString() != "plan.png" {
		t.Errorf("file.name = %q", v.AsString())
	}
	if v, _ := spanAttr(span, "dropzone.file.size"); v.AsInt64() != 64 {
		t.Errorf("file.size = %d", v.AsInt64())
	}
	if v, _ := spanAttr(span, "dropzone.widget_id"); v.AsString() != w.ID() {
		t.Errorf("widget_id = %q, want %q", v.AsString(), w.ID())
	}
	if v, _ := spanAttr(span, "dropzone.outcome"); v.AsString() != "completed" {
		t.Errorf("outcome = %q", v.AsString())
	}

	// One decoded event plus one per tick.
	if got := len(span.Events()); got != 8 {
		t.Errorf("events = %d, want 8", got)
	}
}

func TestTrace_FailedAttempt(t *testing.T) {
	rec, opt := newRecordingTracer(t)
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true), opt)

	_ = w.Offer(uploadtest.FailingFile("plan.png", "image/png", 64, errTest))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
	if v, _ := spanAttr(spans[0], "dropzone.outcome"); v.AsString() != "decode_failure" {
		t.Errorf("outcome = %q", v.AsString())
	}
}

func TestTrace_AbortedAttempts(t *testing.T) {
	rec, opt := newRecordingTracer(t)
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true), opt)

	_ = w.Offer(uploadtest.ImageFile("a.png", "image/png", 10))
	_ = w.Offer(uploadtest.ImageFile("b.png", "image/png", 10))
	w.Reset()

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	want := []string{upload.AbortSuperseded, upload.AbortReset}
	for i, span := range spans {
		if v, _ := spanAttr(span, "dropzone.abort_reason"); v.AsString() != want[i] {
			t.Errorf("span %d abort_reason = %q, want %q", i, v.AsString(), want[i])
		}
	}
}

func TestTrace_RejectedOfferHasNoSpan(t *testing.T) {
	rec, opt := newRecordingTracer(t)
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true), opt)

	_ = w.Offer(uploadtest.ImageFile("doc.pdf", "application/pdf", 10))

	if n := len(rec.Started()); n != 0 {
		t.Errorf("started spans = %d, want 0", n)
	}
}
