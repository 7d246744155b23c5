// Package dateutil parses metadata dates and formats them with either
// strftime directives (%Y-%m-%d) or readable tokens (YYYY-MM-DD).
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDateFormat indicates an unusable format string.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrUnparsableDate indicates a value that is not a recognized date.
	ErrUnparsableDate = errors.New("unparsable date")
)

// MaxFormatLength bounds format strings taken from document metadata.
const MaxFormatLength = 64

// DefaultFormat is the token format used by a bare "auto" date.
const DefaultFormat = "YYYY-MM-DD"

// inputLayouts are the accepted date shapes: YYYY-MM-DD with an optional
// HH:MM or HH:MM:SS time, separated by a space or "T".
var inputLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// layoutTokens maps readable tokens to Go layout fragments, longest first.
var layoutTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named token formats accepted wherever a token format is.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDate reads a metadata date value.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, value)
}

// Format renders t. Formats containing '%' are strftime formats; anything
// else is a token format or a preset name.
func Format(t time.Time, format string) (string, error) {
	if strings.Contains(format, "%") {
		return Strftime(t, format)
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	layout, err := TokenLayout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// TokenLayout converts a token format (YYYY, YY, MMMM, MMM, MM, M, DD, D)
// into a Go layout. Text inside [brackets] is copied literally; other
// characters pass through unchanged.
func TokenLayout(format string) (string, error) {
	if err := checkFormat(format); err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if layout, n := matchToken(format[i:]); n > 0 {
			b.WriteString(layout)
			i += n
			continue
		}
		b.WriteByte(format[i])
		i++
	}
	return b.String(), nil
}

func matchToken(s string) (string, int) {
	for _, tok := range layoutTokens {
		if strings.HasPrefix(s, tok.token) {
			return tok.layout, len(tok.token)
		}
	}
	return "", 0
}

func checkFormat(format string) error {
	if format == "" {
		return fmt.Errorf("%w: empty format", ErrInvalidDateFormat)
	}
	if len(format) > MaxFormatLength {
		return fmt.Errorf("%w: format longer than %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}
	return nil
}

// ResolveAuto expands the "auto" and "auto:FORMAT" date values to now.
// Other values are returned unchanged.
func ResolveAuto(value string, now time.Time) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	switch {
	case lower == "auto":
		return Format(now, DefaultFormat)
	case strings.HasPrefix(lower, "auto:"):
		format := strings.TrimSpace(value)[len("auto:"):]
		if format == "" {
			return "", fmt.Errorf("%w: nothing after \"auto:\"", ErrInvalidDateFormat)
		}
		return Format(now, format)
	case strings.HasPrefix(lower, "auto"):
		return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}
	return value, nil
}
