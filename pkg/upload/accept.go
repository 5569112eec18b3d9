package upload

import (
	"path/filepath"
	"strings"
)

// AcceptFilter is a parsed file-picker accept string, e.g.
// ".jpg,.png,image/*".
type AcceptFilter struct {
	extensions []string
	mimeTypes  []string
	wildcards  []string // "image/" for "image/*"
}

// ParseAccept parses an HTML-style accept attribute.
// Entries are comma separated and compared case-insensitively.
func ParseAccept(accept string) AcceptFilter {
	var f AcceptFilter
	for _, part := range strings.Split(accept, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		switch {
		case part == "":
		case strings.HasPrefix(part, "."):
			f.extensions = append(f.extensions, part)
		case strings.HasSuffix(part, "/*"):
			f.wildcards = append(f.wildcards, strings.TrimSuffix(part, "*"))
		case strings.Contains(part, "/"):
			f.mimeTypes = append(f.mimeTypes, part)
		}
	}
	return f
}

// Empty reports whether the filter has no entries. An empty filter
// matches everything.
func (f AcceptFilter) Empty() bool {
	return len(f.extensions) == 0 && len(f.mimeTypes) == 0 && len(f.wildcards) == 0
}

// Match reports whether a file with the given name and content type
// passes the filter.
func (f AcceptFilter) Match(name, contentType string) bool {
	if f.Empty() {
		return true
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.extensions {
		if ext == e {
			return true
		}
	}

	contentType = strings.ToLower(contentType)
	if contentType == "" {
		return false
	}
	for _, m := range f.mimeTypes {
		if contentType == m {
			return true
		}
	}
	for _, w := range f.wildcards {
		if strings.HasPrefix(contentType, w) {
			return true
		}
	}
	return false
}
