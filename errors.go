package mdcite

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown    = errors.New("markdown content cannot be empty")
	ErrHTMLConversion   = errors.New("HTML conversion failed")
	ErrInvalidMode      = errors.New("invalid processing mode")
	ErrStyleUnavailable = errors.New("CSL style unavailable")
	ErrCacheUnavailable = errors.New("bibliography cache unavailable")
)
