package bibliography

import "errors"

var (
	// ErrFileUnavailable wraps a missing, unreadable or oversized file.
	ErrFileUnavailable = errors.New("bibliography file unavailable")
	// ErrUnsupportedFormat reports a file whose format could not be detected.
	ErrUnsupportedFormat = errors.New("unsupported bibliography format")
	// ErrMalformed reports a structured file (CSL-JSON) that failed to decode.
	ErrMalformed = errors.New("malformed bibliography file")
)
