package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Decoder turns an accepted file into its transportable string form.
// Decode runs off the caller's goroutine; it should return promptly once
// ctx is cancelled.
type Decoder interface {
	Decode(ctx context.Context, f File) (string, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, f File) (string, error)

// Decode calls fn(ctx, f).
func (fn DecoderFunc) Decode(ctx context.Context, f File) (string, error) {
	return fn(ctx, f)
}

// DataURLDecoder reads a file and encodes it as
// "data:<mime>;base64,<payload>".
type DataURLDecoder struct {
	// MaxBytes caps how much content is read. A file whose content is
	// longer than MaxBytes fails to decode, whatever its declared size.
	// Zero means no limit.
	MaxBytes int64
}

// Decode implements Decoder.
func (d DataURLDecoder) Decode(ctx context.Context, f File) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("%w: %s has no content", ErrDecodeFailure, f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrDecodeFailure, f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = &ctxReader{ctx: ctx, r: rc}
	if d.MaxBytes > 0 {
		r = io.LimitReader(r, d.MaxBytes+1) // +1 to detect overflow
	}

	url, n, err := EncodeDataURL(f.ContentType, r)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrDecodeFailure, f.Name, err)
	}
	if d.MaxBytes > 0 && n > d.MaxBytes {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrDecodeFailure, f.Name, d.MaxBytes)
	}
	return url, nil
}

// EncodeDataURL streams r into a base64 data URL and returns it along with
// the number of content bytes read. An empty contentType is encoded as
// application/octet-stream.
func EncodeDataURL(contentType string, r io.Reader) (string, int64, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &b)
	n, err := io.Copy(enc, r)
	if err != nil {
		return "", n, err
	}
	if err := enc.Close(); err != nil {
		return "", n, err
	}
	return b.String(), n, nil
}

// ctxReader fails reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
