package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vango-dev/dropzone/pkg/auth"
)

// ErrUnsupportedType is returned when a file's MIME type is not accepted.
var ErrUnsupportedType = errors.New("upload: unsupported file type")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// ErrUnauthorized is returned when an offer is made by a caller that may not
// upload. It is auth.ErrUnauthorized, so either name matches with errors.Is.
var ErrUnauthorized = auth.ErrUnauthorized

// ErrDecodeFailure is returned when a file's content cannot be read or encoded.
var ErrDecodeFailure = errors.New("upload: decode failed")

// ErrClosed is returned by operations on a widget that has been torn down.
var ErrClosed = errors.New("upload: widget closed")

// Code identifies the kind of an upload Error.
type Code string

const (
	CodeUnsupportedType Code = "unsupported_type"
	CodeTooLarge        Code = "too_large"
	CodeUnauthorized    Code = "unauthorized"
	CodeDecodeFailure   Code = "decode_failure"
)

// Error is a user-facing upload error. Message is the text shown next to
// the drop target.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel (or cause) for errors.Is support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether offering another file can clear the error.
func (e *Error) Retryable() bool {
	return e.Code != CodeUnauthorized
}

func newError(code Code, sentinel error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// File is a file offered to the widget, as a file picker or drop event
// would deliver it.
type File struct {
	// Name is the original filename.
	Name string

	// Size is the declared size in bytes.
	Size int64

	// ContentType is the MIME type reported for the file.
	ContentType string

	// Open returns a reader over the file contents.
	// It is called at most once per accepted file.
	Open func() (io.ReadCloser, error)
}

// Info returns the metadata of f.
func (f File) Info() FileInfo {
	return FileInfo{
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
	}
}

// BytesFile builds a File over an in-memory buffer.
func BytesFile(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FileInfo is the metadata of the selected file kept in widget state.
type FileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

const (
	// DefaultMaxSizeMB is the default size limit in megabytes.
	DefaultMaxSizeMB = 50

	// DefaultAccept is the default file-picker filter.
	DefaultAccept = ".jpg,.jpeg,.png,image/jpeg,image/png"

	// DefaultProgressInterval is the default period of the progress timer.
	DefaultProgressInterval = 100 * time.Millisecond

	// DefaultProgressStep is the default progress increment per tick.
	DefaultProgressStep = 15

	// DefaultCompleteDelay is the delay between reaching 100% and
	// invoking the completion sink.
	DefaultCompleteDelay = 600 * time.Millisecond
)

// DefaultAcceptedMimeTypes returns the default accepted MIME types.
func DefaultAcceptedMimeTypes() []string {
	return []string{"image/jpeg", "image/png"}
}

// Config holds the construction-time configuration of a Widget.
type Config struct {
	// MaxSizeMB is the maximum allowed file size in megabytes.
	// Default: 50.
	MaxSizeMB int

	// AcceptedMimeTypes is the set of allowed MIME types.
	// Default: image/jpeg, image/png.
	AcceptedMimeTypes []string

	// Accept is the file-picker filter string.
	Accept string

	// ProgressInterval is how often simulated progress advances.
	ProgressInterval time.Duration

	// ProgressStep is how much progress advances per tick.
	ProgressStep int

	// CompleteDelay is how long to wait at 100% before invoking the sink.
	CompleteDelay time.Duration
}

// DefaultConfig returns a Config with the default limits and timings.
func DefaultConfig() Config {
	return Config{
		MaxSizeMB:         DefaultMaxSizeMB,
		AcceptedMimeTypes: DefaultAcceptedMimeTypes(),
		Accept:            DefaultAccept,
		ProgressInterval:  DefaultProgressInterval,
		ProgressStep:      DefaultProgressStep,
		CompleteDelay:     DefaultCompleteDelay,
	}
}

// withDefaults returns c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = def.MaxSizeMB
	}
	if len(c.AcceptedMimeTypes) == 0 {
		c.AcceptedMimeTypes = def.AcceptedMimeTypes
	}
	if c.Accept == "" {
		c.Accept = def.Accept
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = def.ProgressInterval
	}
	if c.ProgressStep <= 0 {
		c.ProgressStep = def.ProgressStep
	}
	// A negative delay means "no delay"; zero means "default".
	if c.CompleteDelay == 0 {
		c.CompleteDelay = def.CompleteDelay
	} else if c.CompleteDelay < 0 {
		c.CompleteDelay = 0
	}
	return c
}

// MaxSizeBytes returns the size limit in bytes.
func (c Config) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}
