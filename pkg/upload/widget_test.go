package upload_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/dropzone/pkg/auth"
	"github.com/vango-dev/dropzone/pkg/upload"
	"github.com/vango-dev/dropzone/pkg/uploadtest"
)

func newTestWidget(t *testing.T, cfg upload.Config, authz auth.Authorizer, opts ...upload.Option) (*upload.Widget, *uploadtest.Scheduler, *uploadtest.Sink) {
	t.Helper()
	sched := uploadtest.NewScheduler()
	sink := &uploadtest.Sink{}
	opts = append([]upload.Option{
		upload.WithScheduler(sched),
		upload.WithAuthorizer(authz),
		upload.WithOnComplete(sink.Func()),
	}, opts...)
	w := upload.New(cfg, opts...)
	t.Cleanup(func() { w.Close() })
	return w, sched, sink
}

// advanceTicks fires n progress ticks.
func advanceTicks(sched *uploadtest.Scheduler, cfg upload.Config, n int) {
	for i := 0; i < n; i++ {
		sched.Advance(cfg.ProgressInterval)
	}
}

func TestWidget_AcceptedFileCompletesOnce(t *testing.T) {
	cfg := upload.DefaultConfig()
	w, sched, sink := newTestWidget(t, cfg, auth.Static(true))

	content := make([]byte, 2*uploadtest.MB)
	copy(content, "\x89PNG")
	f := upload.BytesFile("photo.png", "image/png", content)

	if err := w.Offer(f); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}

	s := w.State()
	if s.Phase != upload.PhaseSelected {
		t.Fatalf("phase = %s, want selected", s.Phase)
	}
	if s.Progress != 0 {
		t.Fatalf("progress = %d, want 0", s.Progress)
	}
	if s.Pending != "interval" {
		t.Fatalf("pending = %q, want interval", s.Pending)
	}
	if v := w.View(); v.Mode != upload.ViewStatus || v.FileName != "photo.png" {
		t.Fatalf("view = %+v, want status view for photo.png", v)
	}

	want := []int{15, 30, 45, 60, 75, 90, 100}
	for i, p := range want {
		sched.Advance(cfg.ProgressInterval)
		uploadtest.ExpectProgress(t, w, p)
		if sink.Count() != 0 {
			t.Fatalf("sink fired after tick %d, before the delay", i+1)
		}
	}

	if got := w.State().Pending; got != "delay" {
		t.Fatalf("pending at 100%% = %q, want delay", got)
	}
	if v := w.View(); v.Icon != upload.IconCheck || v.StatusText != upload.StatusRedirect {
		t.Errorf("view at 100%% = %+v, want check icon and redirect text", v)
	}

	sched.Advance(cfg.CompleteDelay - time.Millisecond)
	if sink.Count() != 0 {
		t.Fatal("sink fired before the delay elapsed")
	}

	sched.Advance(time.Millisecond)
	if sink.Count() != 1 {
		t.Fatalf("sink count = %d, want 1", sink.Count())
	}
	uploadtest.ExpectDataURL(t, sink.Calls()[0], "image/png", content)
	uploadtest.ExpectPhase(t, w, upload.PhaseCompleted)

	sched.Advance(10 * time.Second)
	if sink.Count() != 1 {
		t.Errorf("sink count after more time = %d, want 1", sink.Count())
	}
	if sched.Active() != 0 {
		t.Errorf("active timers = %d, want 0", sched.Active())
	}
}

func TestWidget_ProgressClampsAt100(t *testing.T) {
	cfg := upload.DefaultConfig()
	cfg.ProgressStep = 30
	w, sched, _ := newTestWidget(t, cfg, auth.Static(true))

	rec := &uploadtest.Recorder{}
	rec.Record(w)

	if err := w.Offer(uploadtest.ImageFile("a.png", "image/png", 64)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	advanceTicks(sched, cfg, 10)

	got := rec.Progress()
	want := []int{0, 30, 60, 90, 100}
	if len(got) != len(want) {
		t.Fatalf("progress sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress sequence = %v, want %v", got, want)
		}
	}
}

func TestWidget_ProgressWaitsForDecode(t *testing.T) {
	cfg := upload.DefaultConfig()
	sched := uploadtest.NewScheduler().DeferGo()
	sink := &uploadtest.Sink{}
	w := upload.New(cfg,
		upload.WithScheduler(sched),
		upload.WithAuthorizer(auth.Static(true)),
		upload.WithOnComplete(sink.Func()),
	)
	defer w.Close()

	if err := w.Offer(uploadtest.ImageFile("a.jpg", "image/jpeg", 128)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	if got := w.State().Pending; got != "decode" {
		t.Fatalf("pending = %q, want decode", got)
	}

	sched.Advance(5 * time.Second)
	uploadtest.ExpectProgress(t, w, 0)

	if n := sched.RunPending(); n != 1 {
		t.Fatalf("RunPending() = %d, want 1 decode", n)
	}
	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)

	if sink.Count() != 1 {
		t.Fatalf("sink count = %d, want 1", sink.Count())
	}
	uploadtest.ExpectDataURL(t, sink.Calls()[0], "image/jpeg", nil)
}

func TestWidget_RejectsUnsupportedType(t *testing.T) {
	w, sched, sink := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	err := w.Offer(uploadtest.ImageFile("doc.pdf", "application/pdf", 1024))
	if !errors.Is(err, upload.ErrUnsupportedType) {
		t.Fatalf("Offer() error = %v, want ErrUnsupportedType", err)
	}

	uploadtest.ExpectPhase(t, w, upload.PhaseIdle)
	uploadtest.ExpectError(t, w, "Only JPEG and PNG files are allowed.")
	if v := w.View(); v.Mode != upload.ViewDropZone || v.InputDisabled {
		t.Errorf("view = %+v, want interactive drop zone", v)
	}

	sched.Advance(time.Minute)
	if sink.Count() != 0 {
		t.Error("sink fired for a rejected file")
	}
}

func TestWidget_RejectsTooLarge(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	f := uploadtest.DeclaredFile("huge.jpg", "image/jpeg", 60*uploadtest.MB, []byte("jpeg"))
	err := w.Offer(f)
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Fatalf("Offer() error = %v, want ErrTooLarge", err)
	}

	uploadtest.ExpectPhase(t, w, upload.PhaseIdle)
	uploadtest.ExpectError(t, w, "File is too large. Max allowed size is 50MB.")
	if w.State().File != nil {
		t.Error("rejected file should not be selected")
	}
}

func TestWidget_ValidOfferClearsPreviousError(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	_ = w.Offer(uploadtest.ImageFile("doc.pdf", "application/pdf", 10))
	uploadtest.ExpectError(t, w, "Only JPEG and PNG files are allowed.")

	if err := w.Offer(uploadtest.ImageFile("ok.png", "image/png", 10)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	if s := w.State(); s.Err != nil || s.ErrorText != "" {
		t.Errorf("error not cleared: %+v", s.Err)
	}
}

func TestWidget_UnauthorizedOfferChangesNothing(t *testing.T) {
	files := []upload.File{
		uploadtest.ImageFile("photo.png", "image/png", 1024),
		uploadtest.ImageFile("doc.pdf", "application/pdf", 1024),
		uploadtest.DeclaredFile("huge.jpg", "image/jpeg", 60*uploadtest.MB, nil),
	}

	for _, f := range files {
		t.Run(f.Name, func(t *testing.T) {
			w, sched, sink := newTestWidget(t, upload.DefaultConfig(), auth.Static(false))
			before := w.State()

			if err := w.Offer(f); !errors.Is(err, upload.ErrUnauthorized) {
				t.Fatalf("Offer() error = %v, want ErrUnauthorized", err)
			}
			if err := w.Drop(&upload.DragEvent{Files: []upload.File{f}}); !errors.Is(err, upload.ErrUnauthorized) {
				t.Fatalf("Drop() error = %v, want ErrUnauthorized", err)
			}

			after := w.State()
			if after.Version != before.Version || after.Phase != upload.PhaseIdle || after.Err != nil {
				t.Errorf("state changed: before %+v, after %+v", before, after)
			}

			sched.Advance(time.Minute)
			if sink.Count() != 0 {
				t.Error("sink fired for an unauthorized offer")
			}

			v := w.View()
			if v.Prompt != upload.PromptSignIn || !v.InputDisabled || v.Error != "" {
				t.Errorf("view = %+v, want sign-in prompt without error", v)
			}
		})
	}
}

func TestWidget_AuthorizationIsCheckedPerEvent(t *testing.T) {
	flag := auth.NewFlag(false)
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), flag)
	f := uploadtest.ImageFile("photo.png", "image/png", 16)

	if err := w.Offer(f); !errors.Is(err, upload.ErrUnauthorized) {
		t.Fatalf("Offer() while signed out = %v", err)
	}

	flag.SignIn()
	if err := w.Offer(f); err != nil {
		t.Fatalf("Offer() after sign in = %v", err)
	}
	uploadtest.ExpectPhase(t, w, upload.PhaseSelected)
}

func TestWidget_CloseBeforeCompletionNeverFires(t *testing.T) {
	cfg := upload.DefaultConfig()

	tests := []struct {
		name  string
		ticks int
	}{
		{name: "during progress", ticks: 3},
		{name: "during completion delay", ticks: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, sched, sink := newTestWidget(t, cfg, auth.Static(true))
			if err := w.Offer(uploadtest.ImageFile("a.png", "image/png", 32)); err != nil {
				t.Fatalf("Offer() error: %v", err)
			}
			advanceTicks(sched, cfg, tt.ticks)

			if err := w.Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}
			if sched.Active() != 0 {
				t.Errorf("active timers after Close = %d, want 0", sched.Active())
			}

			sched.Advance(time.Minute)
			if sink.Count() != 0 {
				t.Errorf("sink fired %d times after Close", sink.Count())
			}
			if !w.State().Closed {
				t.Error("State().Closed = false after Close")
			}
		})
	}
}

func TestWidget_CloseDuringDecode(t *testing.T) {
	sched := uploadtest.NewScheduler().DeferGo()
	sink := &uploadtest.Sink{}
	w := upload.New(upload.DefaultConfig(),
		upload.WithScheduler(sched),
		upload.WithAuthorizer(auth.Static(true)),
		upload.WithOnComplete(sink.Func()),
	)

	if err := w.Offer(uploadtest.ImageFile("a.png", "image/png", 32)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	w.Close()
	sched.RunPending()
	sched.Advance(time.Minute)

	if sink.Count() != 0 {
		t.Error("sink fired after Close during decode")
	}
	if sched.Active() != 0 {
		t.Errorf("decode finishing after Close started %d timers", sched.Active())
	}
}

func TestWidget_ClosedWidgetIgnoresEvents(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))
	w.Close()

	f := uploadtest.ImageFile("a.png", "image/png", 32)
	if err := w.Offer(f); !errors.Is(err, upload.ErrClosed) {
		t.Errorf("Offer() after Close = %v, want ErrClosed", err)
	}
	if err := w.Drop(&upload.DragEvent{Files: []upload.File{f}}); !errors.Is(err, upload.ErrClosed) {
		t.Errorf("Drop() after Close = %v, want ErrClosed", err)
	}
	w.DragOver(&upload.DragEvent{})
	if w.State().Dragging {
		t.Error("closed widget accepted a drag")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestWidget_ResetDuringDelayThenRetry(t *testing.T) {
	cfg := upload.DefaultConfig()
	w, sched, sink := newTestWidget(t, cfg, auth.Static(true))

	if err := w.Offer(uploadtest.ImageFile("a.png", "image/png", 32)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	advanceTicks(sched, cfg, 7)
	w.Reset()

	s := w.State()
	if s.Phase != upload.PhaseIdle || s.File != nil || s.Progress != 0 || s.Pending != "none" {
		t.Fatalf("state after Reset = %+v, want clean idle", s)
	}
	sched.Advance(time.Minute)
	if sink.Count() != 0 {
		t.Fatal("sink fired after Reset")
	}

	if err := w.Offer(uploadtest.ImageFile("b.png", "image/png", 32)); err != nil {
		t.Fatalf("Offer() after Reset error: %v", err)
	}
	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)
	if sink.Count() != 1 {
		t.Fatalf("sink count = %d, want 1", sink.Count())
	}
}

func TestWidget_CompletedIgnoresOffersUntilReset(t *testing.T) {
	cfg := upload.DefaultConfig()
	w, sched, sink := newTestWidget(t, cfg, auth.Static(true))
	f := uploadtest.ImageFile("a.png", "image/png", 32)

	_ = w.Offer(f)
	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)

	if err := w.Offer(f); !errors.Is(err, upload.ErrCompleted) {
		t.Fatalf("Offer() after completion = %v, want ErrCompleted", err)
	}
	uploadtest.ExpectPhase(t, w, upload.PhaseCompleted)

	w.Reset()
	if err := w.Offer(f); err != nil {
		t.Fatalf("Offer() after Reset = %v", err)
	}
	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)
	if sink.Count() != 2 {
		t.Errorf("sink count = %d, want 2", sink.Count())
	}
}

func TestWidget_NewFileSupersedesInFlight(t *testing.T) {
	cfg := upload.DefaultConfig()
	w, sched, sink := newTestWidget(t, cfg, auth.Static(true))

	first := []byte("first-image")
	second := []byte("second-image")

	if err := w.Offer(upload.BytesFile("a.png", "image/png", first)); err != nil {
		t.Fatalf("Offer(a) error: %v", err)
	}
	firstAttempt := w.State().AttemptID
	advanceTicks(sched, cfg, 2)
	uploadtest.ExpectProgress(t, w, 30)

	if err := w.Offer(upload.BytesFile("b.png", "image/png", second)); err != nil {
		t.Fatalf("Offer(b) error: %v", err)
	}
	s := w.State()
	if s.Progress != 0 || s.File.Name != "b.png" || s.AttemptID == firstAttempt {
		t.Fatalf("state after supersede = %+v", s)
	}
	if sched.Active() != 1 {
		t.Fatalf("active timers = %d, want only the new interval", sched.Active())
	}

	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)
	sched.Advance(time.Minute)

	if sink.Count() != 1 {
		t.Fatalf("sink count = %d, want 1", sink.Count())
	}
	uploadtest.ExpectDataURL(t, sink.Calls()[0], "image/png", second)
}

func TestWidget_DecodeFailureIsRetryable(t *testing.T) {
	w, sched, sink := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	readErr := errors.New("disk on fire")
	if err := w.Offer(uploadtest.FailingFile("bad.png", "image/png", 10, readErr)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}

	s := w.State()
	if s.Phase != upload.PhaseFailed {
		t.Fatalf("phase = %s, want failed", s.Phase)
	}
	if s.Err == nil || s.Err.Code != upload.CodeDecodeFailure {
		t.Fatalf("Err = %+v, want decode failure", s.Err)
	}
	if !errors.Is(s.Err, upload.ErrDecodeFailure) {
		t.Error("decode error should match ErrDecodeFailure")
	}
	if !s.Err.Retryable() {
		t.Error("decode failure should be retryable")
	}
	if v := w.View(); v.Mode != upload.ViewDropZone {
		t.Errorf("view = %+v, want drop zone", v)
	}
	uploadtest.ExpectError(t, w, "We couldn't read that file. Please try again.")

	sched.Advance(time.Minute)
	if sink.Count() != 0 {
		t.Fatal("sink fired for a failed decode")
	}
	if sched.Active() != 0 {
		t.Fatalf("active timers = %d after failed decode", sched.Active())
	}

	if err := w.Offer(uploadtest.ImageFile("good.png", "image/png", 10)); err != nil {
		t.Fatalf("retry Offer() error: %v", err)
	}
	uploadtest.ExpectPhase(t, w, upload.PhaseSelected)
	uploadtest.ExpectError(t, w, "")
}

func TestWidget_RejectedOfferWhileUploadingIsClearedOnCompletion(t *testing.T) {
	cfg := upload.DefaultConfig()
	w, sched, sink := newTestWidget(t, cfg, auth.Static(true))

	if err := w.Offer(uploadtest.ImageFile("plan.png", "image/png", 10)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	if err := w.Offer(uploadtest.ImageFile("doc.pdf", "application/pdf", 10)); !errors.Is(err, upload.ErrUnsupportedType) {
		t.Fatalf("second Offer() error = %v, want ErrUnsupportedType", err)
	}
	uploadtest.ExpectPhase(t, w, upload.PhaseSelected)

	advanceTicks(sched, cfg, 7)
	sched.Advance(cfg.CompleteDelay)
	if sink.Count() != 1 {
		t.Fatalf("sink count = %d, want 1", sink.Count())
	}

	s := w.State()
	if s.Phase != upload.PhaseCompleted {
		t.Fatalf("phase = %s, want completed", s.Phase)
	}
	if s.Err != nil || s.ErrorText != "" {
		t.Errorf("completed state carries error %q", s.ErrorText)
	}
}

func TestWidget_RejectedOfferAfterDecodeFailureReturnsToIdle(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	_ = w.Offer(uploadtest.FailingFile("bad.png", "image/png", 10, errors.New("unreadable")))
	uploadtest.ExpectPhase(t, w, upload.PhaseFailed)

	err := w.Offer(uploadtest.DeclaredFile("huge.png", "image/png", 60*uploadtest.MB, []byte("png")))
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Fatalf("Offer() error = %v, want ErrTooLarge", err)
	}

	s := w.State()
	if s.Phase != upload.PhaseIdle {
		t.Errorf("phase = %s, want idle", s.Phase)
	}
	if s.File != nil || s.AttemptID != "" {
		t.Errorf("unreadable file still attached: %+v", s.File)
	}
	if s.Err == nil || s.Err.Code != upload.CodeTooLarge {
		t.Errorf("Err = %+v, want too large", s.Err)
	}
}

func TestWidget_DecoderErrors(t *testing.T) {
	tests := []struct {
		name    string
		decoder upload.DecoderFunc
		wantErr error
	}{
		{
			name: "plain error is wrapped",
			decoder: func(context.Context, upload.File) (string, error) {
				return "", context.DeadlineExceeded
			},
			wantErr: context.DeadlineExceeded,
		},
		{
			name: "empty result",
			decoder: func(context.Context, upload.File) (string, error) {
				return "", nil
			},
			wantErr: upload.ErrDecodeFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true), upload.WithDecoder(tt.decoder))
			_ = w.Offer(uploadtest.ImageFile("a.png", "image/png", 10))

			s := w.State()
			if s.Phase != upload.PhaseFailed {
				t.Fatalf("phase = %s, want failed", s.Phase)
			}
			if !errors.Is(s.Err, upload.ErrDecodeFailure) || !errors.Is(s.Err, tt.wantErr) {
				t.Errorf("Err = %v, want both ErrDecodeFailure and %v", s.Err, tt.wantErr)
			}
		})
	}
}

func TestWidget_DragHandling(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	over := &upload.DragEvent{}
	w.DragOver(over)
	if !over.DefaultPrevented() {
		t.Error("DragOver must prevent the default")
	}
	if !w.State().Dragging || !w.View().Dragging {
		t.Error("expected dragging after DragOver")
	}

	leave := &upload.DragEvent{}
	w.DragLeave(leave)
	if !leave.DefaultPrevented() {
		t.Error("DragLeave must prevent the default")
	}
	if w.State().Dragging {
		t.Error("expected not dragging after DragLeave")
	}

	w.DragOver(&upload.DragEvent{})
	drop := &upload.DragEvent{Files: []upload.File{
		uploadtest.ImageFile("first.png", "image/png", 10),
		uploadtest.ImageFile("second.png", "image/png", 10),
	}}
	if err := w.Drop(drop); err != nil {
		t.Fatalf("Drop() error: %v", err)
	}
	if !drop.DefaultPrevented() {
		t.Error("Drop must prevent the default")
	}

	s := w.State()
	if s.Dragging {
		t.Error("dragging must be false after a drop")
	}
	if s.File == nil || s.File.Name != "first.png" {
		t.Errorf("selected %+v, want first.png", s.File)
	}
}

func TestWidget_DragWhileUnauthorized(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(false))

	ev := &upload.DragEvent{}
	w.DragOver(ev)
	if !ev.DefaultPrevented() {
		t.Error("DragOver must prevent the default even when signed out")
	}
	if w.State().Dragging {
		t.Error("signed-out drag must not set dragging")
	}
}

func TestWidget_DropInvalidFileClearsDragging(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	w.DragOver(&upload.DragEvent{})
	err := w.Drop(&upload.DragEvent{Files: []upload.File{uploadtest.ImageFile("doc.pdf", "application/pdf", 10)}})
	if !errors.Is(err, upload.ErrUnsupportedType) {
		t.Fatalf("Drop() error = %v", err)
	}
	s := w.State()
	if s.Dragging || s.Phase != upload.PhaseIdle {
		t.Errorf("state = %+v, want idle and not dragging", s)
	}
}

func TestWidget_ChangeUsesFirstFile(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	if err := w.Change(nil); err != nil {
		t.Fatalf("Change(nil) = %v", err)
	}
	uploadtest.ExpectPhase(t, w, upload.PhaseIdle)

	err := w.Change([]upload.File{
		uploadtest.ImageFile("one.jpg", "image/jpeg", 10),
		uploadtest.ImageFile("two.jpg", "image/jpeg", 10),
	})
	if err != nil {
		t.Fatalf("Change() error: %v", err)
	}
	if got := w.State().File.Name; got != "one.jpg" {
		t.Errorf("selected %q, want one.jpg", got)
	}
}

func TestWidget_SubscribeAndUnsubscribe(t *testing.T) {
	w, _, _ := newTestWidget(t, upload.DefaultConfig(), auth.Static(true))

	var versions []uint64
	cancel := w.Subscribe(func(s upload.State) {
		versions = append(versions, s.Version)
	})

	w.DragOver(&upload.DragEvent{})
	w.DragLeave(&upload.DragEvent{})
	cancel()
	w.DragOver(&upload.DragEvent{})

	if len(versions) != 2 {
		t.Fatalf("notifications = %d, want 2", len(versions))
	}
	if versions[1] <= versions[0] {
		t.Errorf("versions not increasing: %v", versions)
	}
}

func TestWidget_SystemScheduler(t *testing.T) {
	cfg := upload.Config{
		ProgressInterval: time.Millisecond,
		ProgressStep:     50,
		CompleteDelay:    time.Millisecond,
	}
	done := make(chan string, 2)
	w := upload.New(cfg,
		upload.WithAuthorizer(auth.Static(true)),
		upload.WithOnComplete(func(dataURL string) { done <- dataURL }),
	)
	defer w.Close()

	if err := w.Offer(uploadtest.ImageFile("a.png", "image/png", 256)); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}

	select {
	case got := <-done:
		if !strings.HasPrefix(got, "data:image/png;base64,") {
			t.Errorf("data URL = %q", got[:min(len(got), 40)])
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
	}

	select {
	case <-done:
		t.Fatal("sink fired twice")
	case <-time.After(50 * time.Millisecond):
	}
	uploadtest.ExpectPhase(t, w, upload.PhaseCompleted)
}
