package uploadtest

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/dropzone/pkg/upload"
)

// MB is one megabyte as the widget counts it.
const MB = 1024 * 1024

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ImageFile builds an in-memory file of exactly size bytes. Content starts
// with a PNG signature so it reads like an image.
//
// Example:
//
//	f := uploadtest.ImageFile("photo.png", "image/png", 2*uploadtest.MB)
func ImageFile(name, contentType string, size int) upload.File {
	data := make([]byte, size)
	copy(data, pngSignature)
	return upload.BytesFile(name, contentType, data)
}

// DeclaredFile builds a file that reports size bytes but holds content.
// Use it to exercise the size limit without allocating the declared size.
func DeclaredFile(name, contentType string, size int64, content []byte) upload.File {
	f := upload.BytesFile(name, contentType, content)
	f.Size = size
	return f
}

// FailingFile builds a file whose Open returns err.
func FailingFile(name, contentType string, size int64, err error) upload.File {
	return upload.File{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return nil, err
		},
	}
}

// Sink records completion callbacks.
type Sink struct {
	mu    sync.Mutex
	calls []string
}

// Func returns the callback to pass to upload.WithOnComplete.
func (s *Sink) Func() func(string) {
	return func(dataURL string) {
		s.mu.Lock()
		s.calls = append(s.calls, dataURL)
		s.mu.Unlock()
	}
}

// Calls returns the recorded data URLs.
func (s *Sink) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many times the sink fired.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Recorder records every snapshot a widget publishes.
type Recorder struct {
	mu     sync.Mutex
	states []upload.State
}

// Record subscribes r to w and returns the unsubscribe func.
func (r *Recorder) Record(w *upload.Widget) func() {
	return w.Subscribe(func(s upload.State) {
		r.mu.Lock()
		r.states = append(r.states, s)
		r.mu.Unlock()
	})
}

// States returns the recorded snapshots.
func (r *Recorder) States() []upload.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]upload.State(nil), r.states...)
}

// Progress returns the distinct progress values seen while Selected,
// in order.
func (r *Recorder) Progress() []int {
	var out []int
	for _, s := range r.States() {
		if s.Phase != upload.PhaseSelected {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == s.Progress {
			continue
		}
		out = append(out, s.Progress)
	}
	return out
}

// ExpectPhase asserts the widget's current phase.
//
// Example:
//
//	uploadtest.ExpectPhase(t, w, upload.PhaseSelected)
func ExpectPhase(t *testing.T, w *upload.Widget, want upload.Phase) {
	t.Helper()
	if got := w.State().Phase; got != want {
		t.Errorf("phase = %s, want %s", got, want)
	}
}

// ExpectProgress asserts the widget's current progress.
func ExpectProgress(t *testing.T, w *upload.Widget, want int) {
	t.Helper()
	if got := w.State().Progress; got != want {
		t.Errorf("progress = %d, want %d", got, want)
	}
}

// ExpectError asserts the error text shown in the drop zone.
// An empty want asserts that no error is shown.
func ExpectError(t *testing.T, w *upload.Widget, want string) {
	t.Helper()
	got := w.View().Error
	if got != want {
		t.Errorf("error text = %q, want %q", got, want)
	}
}

// ExpectDataURL asserts that dataURL carries contentType and content.
func ExpectDataURL(t *testing.T, dataURL, contentType string, content []byte) {
	t.Helper()
	prefix := "data:" + contentType + ";base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		t.Fatalf("data URL %q does not start with %q", truncate(dataURL, 80), prefix)
	}
	if content == nil {
		return
	}
	want, _, err := upload.EncodeDataURL(contentType, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("EncodeDataURL() error: %v", err)
	}
	if dataURL != want {
		t.Errorf("data URL payload mismatch: got %q, want %q", truncate(dataURL, 80), truncate(want, 80))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
