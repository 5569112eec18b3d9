package upload

import "slices"

// Validate checks f against the type and size limits in cfg.
// It returns nil, or an *Error with CodeUnsupportedType or CodeTooLarge.
// The type check runs first.
func Validate(f File, cfg Config) error {
	cfg = cfg.withDefaults()

	if !slices.Contains(cfg.AcceptedMimeTypes, f.ContentType) {
		return newError(CodeUnsupportedType, ErrUnsupportedType,
			"Only JPEG and PNG files are allowed.")
	}

	if f.Size > cfg.MaxSizeBytes() {
		return newError(CodeTooLarge, ErrTooLarge,
			"File is too large. Max allowed size is %dMB.", cfg.MaxSizeMB)
	}

	return nil
}
