package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vango-dev/dropzone/pkg/auth"
	"go.opentelemetry.io/otel/trace"
)

// ErrCompleted is returned when a file is offered to a widget that has
// already delivered a file. Call Reset to upload again.
var ErrCompleted = errors.New("upload: widget completed")

// decodeFailureMessage is shown when an accepted file cannot be read.
const decodeFailureMessage = "We couldn't read that file. Please try again."

// Option configures a Widget.
type Option func(*Widget)

// WithAuthorizer sets the capability that gates every offer and drag event.
// Without one, the widget treats the user as signed out.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(w *Widget) {
		w.authz = a
	}
}

// WithOnComplete sets the completion sink. It receives the data URL of
// each accepted file exactly once.
func WithOnComplete(fn func(dataURL string)) Option {
	return func(w *Widget) {
		w.onComplete = fn
	}
}

// WithScheduler replaces the system scheduler.
func WithScheduler(s Scheduler) Option {
	return func(w *Widget) {
		if s != nil {
			w.sched = s
		}
	}
}

// WithDecoder replaces the data URL decoder.
func WithDecoder(d Decoder) Option {
	return func(w *Widget) {
		if d != nil {
			w.decoder = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMetrics records widget activity in m.
func WithMetrics(m *Metrics) Option {
	return func(w *Widget) {
		w.metrics = m
	}
}

// WithTracer sets the OpenTelemetry tracer used for attempt spans.
func WithTracer(t trace.Tracer) Option {
	return func(w *Widget) {
		if t != nil {
			w.tracer = t
		}
	}
}

// pending is the single deferred operation a widget owns. Callbacks carry
// the token of the pending that spawned them and are discarded once that
// token is no longer current.
type pending struct {
	kind   pendingKind
	token  uint64
	timer  Timer              // interval or delay
	cancel context.CancelFunc // decode
}

// release stops the timer or cancels the decode.
func (p pending) release() {
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// DragEvent is a drag-and-drop event delivered to the drop zone.
type DragEvent struct {
	// Files are the dropped files; only the first one is used.
	Files []File

	defaultPrevented bool
}

// PreventDefault suppresses the host's default drag handling.
func (e *DragEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *DragEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Widget is the upload state machine. It is safe for concurrent use.
type Widget struct {
	id         string
	cfg        Config
	authz      auth.Authorizer
	onComplete func(string)
	sched      Scheduler
	decoder    Decoder
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer

	mu        sync.Mutex
	phase     Phase
	file      *File
	attemptID string
	progress  int
	dragging  bool
	err       *Error
	payload   string
	pending   pending
	tokens    uint64
	span      trace.Span
	closed    bool
	version   uint64
	updatedAt time.Time

	subsMu  sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64
}

// New creates a widget in the Idle phase.
func New(cfg Config, opts ...Option) *Widget {
	cfg = cfg.withDefaults()

	w := &Widget{
		id:        uuid.NewString(),
		cfg:       cfg,
		sched:     SystemScheduler(),
		decoder:   DataURLDecoder{MaxBytes: cfg.MaxSizeBytes()},
		logger:    slog.Default(),
		tracer:    defaultTracer(),
		updatedAt: time.Now(),
		subs:      make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("widget_id", w.id)
	return w
}

// ID returns the widget's identifier.
func (w *Widget) ID() string {
	return w.id
}

// Config returns the effective configuration.
func (w *Widget) Config() Config {
	return w.cfg
}

// Offer proposes a file for upload.
//
// Offers from an unauthorized user are ignored without any state change
// and return ErrUnauthorized. A file that fails validation sets the
// error shown in the drop zone and returns it as an *Error. An accepted
// file replaces any in-flight one and starts the decode.
func (w *Widget) Offer(f File) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if !w.allowed() {
		w.mu.Unlock()
		w.metrics.recordOffer(OutcomeUnauthorized)
		w.logger.Debug("offer ignored: not signed in", "file", f.Name)
		return ErrUnauthorized
	}
	if w.phase == PhaseCompleted {
		w.mu.Unlock()
		w.metrics.recordOffer(OutcomeIgnored)
		w.logger.Debug("offer ignored: already completed", "file", f.Name)
		return ErrCompleted
	}

	if err := Validate(f, w.cfg); err != nil {
		var ue *Error
		errors.As(err, &ue)
		w.err = ue
		if w.phase == PhaseFailed {
			// The drop zone now reports the rejected file, not the unreadable one.
			w.phase = PhaseIdle
			w.file = nil
			w.attemptID = ""
		}
		w.touch()
		snap := w.snapshot()
		w.mu.Unlock()

		w.metrics.recordRejection(ue.Code)
		w.logger.Info("offer rejected",
			"file", f.Name,
			"content_type", f.ContentType,
			"size", f.Size,
			"code", ue.Code,
		)
		w.notify(snap)
		return err
	}

	if w.phase == PhaseSelected {
		w.abort(AbortSuperseded)
	}

	file := f
	w.phase = PhaseSelected
	w.file = &file
	w.attemptID = uuid.NewString()
	w.progress = 0
	w.err = nil
	w.payload = ""

	spanCtx, span := startAttemptSpan(w.tracer, w.id, w.attemptID, f.Info())
	w.span = span
	ctx, cancel := context.WithCancel(spanCtx)
	token := w.install(pending{kind: pendingDecode, cancel: cancel})

	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.metrics.recordOffer(OutcomeAccepted)
	w.logger.Info("file accepted",
		"attempt_id", snap.AttemptID,
		"file", f.Name,
		"content_type", f.ContentType,
		"size", f.Size,
	)
	w.notify(snap)

	w.sched.Go(func() {
		w.decode(ctx, token, file)
	})
	return nil
}

// Change handles a file-picker change event. Only the first file is used;
// an empty selection is ignored.
func (w *Widget) Change(files []File) error {
	if len(files) == 0 {
		return nil
	}
	return w.Offer(files[0])
}

// DragOver handles a drag hovering the drop zone. The default is always
// prevented; the dragging flag is only set for an authorized user.
func (w *Widget) DragOver(e *DragEvent) {
	if e != nil {
		e.PreventDefault()
	}
	w.setDragging(true, "over")
}

// DragLeave handles a drag leaving the drop zone.
func (w *Widget) DragLeave(e *DragEvent) {
	if e != nil {
		e.PreventDefault()
	}
	w.setDragging(false, "leave")
}

// Drop handles files dropped on the drop zone. Dragging is always cleared;
// the first dropped file is offered.
func (w *Widget) Drop(e *DragEvent) error {
	if e != nil {
		e.PreventDefault()
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	changed := w.dragging
	w.dragging = false
	var snap State
	if changed {
		w.touch()
		snap = w.snapshot()
	}
	w.mu.Unlock()

	w.metrics.recordDrag("drop")
	if changed {
		w.notify(snap)
	}

	if e == nil || len(e.Files) == 0 {
		return nil
	}
	return w.Offer(e.Files[0])
}

// Reset returns the widget to Idle from any phase, releasing any
// in-flight decode or timer. A completion that has not fired yet never
// fires.
func (w *Widget) Reset() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	if w.phase == PhaseSelected {
		w.abort(AbortReset)
	}
	w.pending.release()
	w.pending = pending{}
	w.phase = PhaseIdle
	w.file = nil
	w.attemptID = ""
	w.progress = 0
	w.dragging = false
	w.err = nil
	w.payload = ""

	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.logger.Debug("widget reset")
	w.notify(snap)
}

// Close tears the widget down. Any pending decode or timer is released,
// the completion sink will not fire afterwards, and every later call is
// a no-op. Close is idempotent.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}

	if w.phase == PhaseSelected {
		w.abort(AbortClosed)
	}
	w.pending.release()
	w.pending = pending{}
	w.payload = ""
	w.closed = true

	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.logger.Debug("widget closed")
	w.notify(snap)

	w.subsMu.Lock()
	clear(w.subs)
	w.subsMu.Unlock()
	return nil
}

// State returns a snapshot of the widget.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// View returns the presentation model for the current state.
func (w *Widget) View() View {
	return ViewOf(w.State(), w.cfg)
}

// Subscribe registers fn to receive a snapshot after every transition.
// Snapshots from concurrent transitions may arrive out of order; use
// State.Version to discard stale ones. The returned func unsubscribes.
//
// fn runs on the goroutine that made the transition, which may be a
// caller of Offer or Close or a timer. It must not block; hand slow work
// off to a queue of its own.
func (w *Widget) Subscribe(fn func(State)) (cancel func()) {
	w.subsMu.Lock()
	w.nextSub++
	id := w.nextSub
	w.subs[id] = fn
	w.subsMu.Unlock()

	return func() {
		w.subsMu.Lock()
		delete(w.subs, id)
		w.subsMu.Unlock()
	}
}

// decode runs the decoder for an accepted file and, on success, starts the
// progress interval.
func (w *Widget) decode(ctx context.Context, token uint64, f File) {
	start := time.Now()
	payload, err := w.decoder.Decode(ctx, f)
	elapsed := time.Since(start)
	if err == nil && payload == "" {
		err = fmt.Errorf("%w: %s produced no content", ErrDecodeFailure, f.Name)
	}

	w.mu.Lock()
	if !w.current(token) {
		w.mu.Unlock()
		return
	}

	if err != nil {
		if !errors.Is(err, ErrDecodeFailure) {
			err = fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		w.pending = pending{}
		w.phase = PhaseFailed
		w.err = &Error{Code: CodeDecodeFailure, Message: decodeFailureMessage, Err: err}
		spanFailed(w.span, err)
		w.span = nil

		w.touch()
		snap := w.snapshot()
		w.mu.Unlock()

		w.metrics.recordDecode(elapsed, err)
		w.logger.Warn("decode failed",
			"attempt_id", snap.AttemptID,
			"file", f.Name,
			"error", err,
		)
		w.notify(snap)
		return
	}

	w.payload = payload
	spanDecoded(w.span, len(payload))
	next := w.nextToken()
	w.pending = pending{
		kind:  pendingInterval,
		token: next,
		timer: w.sched.Every(w.cfg.ProgressInterval, func() { w.tick(next) }),
	}

	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.metrics.recordDecode(elapsed, nil)
	w.logger.Debug("decoded",
		"attempt_id", snap.AttemptID,
		"duration", elapsed,
		"length", len(payload),
	)
	w.notify(snap)
}

// tick advances simulated progress by one step.
func (w *Widget) tick(token uint64) {
	w.mu.Lock()
	if !w.current(token) {
		w.mu.Unlock()
		return
	}

	w.progress = min(w.progress+w.cfg.ProgressStep, 100)
	spanProgress(w.span, w.progress)

	if w.progress == 100 {
		w.pending.release()
		next := w.nextToken()
		w.pending = pending{
			kind:  pendingDelay,
			token: next,
			timer: w.sched.AfterFunc(w.cfg.CompleteDelay, func() { w.complete(next) }),
		}
	}

	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.logger.Debug("progress", "attempt_id", snap.AttemptID, "progress", snap.Progress)
	w.notify(snap)
}

// complete commits the Completed transition and invokes the sink.
func (w *Widget) complete(token uint64) {
	w.mu.Lock()
	if !w.current(token) {
		w.mu.Unlock()
		return
	}

	payload := w.payload
	w.payload = ""
	w.pending = pending{}
	w.phase = PhaseCompleted
	w.err = nil
	spanCompleted(w.span)
	w.span = nil
	sink := w.onComplete

	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.metrics.recordCompletion()
	w.logger.Info("upload complete", "attempt_id", snap.AttemptID, "file", snap.File.Name)
	w.notify(snap)

	if sink != nil {
		sink(payload)
	}
}

func (w *Widget) setDragging(v bool, kind string) {
	w.mu.Lock()
	if w.closed || !w.allowed() {
		w.mu.Unlock()
		return
	}
	if w.dragging == v {
		w.mu.Unlock()
		w.metrics.recordDrag(kind)
		return
	}
	w.dragging = v
	w.touch()
	snap := w.snapshot()
	w.mu.Unlock()

	w.metrics.recordDrag(kind)
	w.notify(snap)
}

// abort releases the in-flight attempt. Callers hold w.mu and change the
// phase themselves.
func (w *Widget) abort(reason string) {
	w.pending.release()
	w.pending = pending{}
	if w.span != nil {
		spanAborted(w.span, reason)
		w.span = nil
	}
	w.metrics.recordAbort(reason)
	w.logger.Info("upload aborted", "attempt_id", w.attemptID, "reason", reason)
}

// install makes p the widget's pending operation and returns its token.
func (w *Widget) install(p pending) uint64 {
	w.pending.release()
	p.token = w.nextToken()
	w.pending = p
	return p.token
}

func (w *Widget) nextToken() uint64 {
	w.tokens++
	return w.tokens
}

// current reports whether token still identifies the pending operation.
func (w *Widget) current(token uint64) bool {
	return !w.closed && w.pending.kind != pendingNone && w.pending.token == token
}

func (w *Widget) allowed() bool {
	return auth.Require(w.authz) == nil
}

func (w *Widget) touch() {
	w.version++
	w.updatedAt = time.Now()
}

func (w *Widget) snapshot() State {
	s := State{
		WidgetID:   w.id,
		AttemptID:  w.attemptID,
		Version:    w.version,
		Phase:      w.phase,
		Progress:   w.progress,
		Dragging:   w.dragging,
		Authorized: w.allowed(),
		Err:        w.err,
		Pending:    w.pending.kind.String(),
		Closed:     w.closed,
		UpdatedAt:  w.updatedAt,
	}
	if w.file != nil {
		info := w.file.Info()
		s.File = &info
	}
	if w.err != nil {
		s.ErrorText = w.err.Message
	}
	return s
}

func (w *Widget) notify(s State) {
	w.subsMu.Lock()
	fns := make([]func(State), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.subsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
