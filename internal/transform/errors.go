package transform

import "errors"

var (
	ErrBadOptions   = errors.New("malformed transform options")
	ErrBadValue     = errors.New("transform cannot handle value")
	ErrNotNumeric   = errors.New("value is not numeric")
	ErrResultTooBig = errors.New("transform result too large")
	ErrUnclosed     = errors.New("unclosed transform options")
)
