package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/dropzone/pkg/upload"
)

// Category represents the type of error.
type Category string

const (
	CategoryUpload Category = "upload"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
)

// Diagnostic is a structured error with a code, an explanation, and a hint
// for fixing it.
type Diagnostic struct {
	// Code is a unique error identifier (e.g., "D101").
	Code string

	// Category is the error type (upload, config, cli).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the file the error is about, if any.
	Path string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Diagnostic) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Diagnostic) Unwrap() error {
	return e.Wrapped
}

// WithPath records the file the error is about.
func (e *Diagnostic) WithPath(path string) *Diagnostic {
	e.Path = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Diagnostic) WithSuggestion(s string) *Diagnostic {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Diagnostic) WithDetail(d string) *Diagnostic {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Diagnostic) Wrap(err error) *Diagnostic {
	e.Wrapped = err
	return e
}

// New creates a Diagnostic from a registered error code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Diagnostic{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new Diagnostic with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a Diagnostic.
func FromError(err error, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}
	return New(code).Wrap(err)
}

// uploadCodes maps widget error codes to diagnostic codes.
var uploadCodes = map[upload.Code]string{
	upload.CodeUnsupportedType: "D101",
	upload.CodeTooLarge:        "D102",
	upload.CodeUnauthorized:    "D103",
	upload.CodeDecodeFailure:   "D104",
}

// FromUpload converts an error returned by an upload widget into a
// Diagnostic. The user-facing message of an *upload.Error becomes the
// diagnostic detail.
func FromUpload(err error) *Diagnostic {
	if err == nil {
		return nil
	}

	var ue *upload.Error
	switch {
	case stderrors.As(err, &ue):
		code, ok := uploadCodes[ue.Code]
		if !ok {
			code = "D104"
		}
		return New(code).WithDetail(ue.Message).Wrap(err)
	case stderrors.Is(err, upload.ErrUnauthorized):
		return New("D103").Wrap(err)
	case stderrors.Is(err, upload.ErrDecodeFailure):
		return New("D104").Wrap(err)
	case stderrors.Is(err, upload.ErrClosed):
		return New("D105").Wrap(err)
	case stderrors.Is(err, upload.ErrCompleted):
		return New("D106").Wrap(err)
	}
	return FromError(err, "D104")
}
