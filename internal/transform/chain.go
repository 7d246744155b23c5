package transform

import (
	"fmt"
	"strings"
)

// Step is one named transform of a chain with its raw option text.
type Step struct {
	Name    string
	Options string
}

// ParseChain splits a variable payload into its metadata key and transform
// steps. Colons inside parentheses or quotes do not separate steps, and a
// backslash escapes the next character. The key is returned even when the
// chain is malformed so the caller can fall back to the plain value.
func ParseChain(payload string) (string, []Step, error) {
	segments, err := splitSegments(payload)
	if err != nil {
		key, _, _ := strings.Cut(payload, ":")
		return strings.TrimSpace(key), nil, err
	}

	key := strings.TrimSpace(segments[0])
	steps := make([]Step, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		step, err := parseStep(seg)
		if err != nil {
			return key, nil, err
		}
		steps = append(steps, step)
	}
	return key, steps, nil
}

func splitSegments(payload string) ([]string, error) {
	var (
		segments []string
		depth    int
		quote    byte
		start    int
	)
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0 && (c == '"' || c == '\''):
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ':' && depth == 0:
			segments = append(segments, payload[start:i])
			start = i + 1
		}
	}
	if depth > 0 || quote != 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnclosed, payload)
	}
	return append(segments, payload[start:]), nil
}

func parseStep(seg string) (Step, error) {
	seg = strings.TrimSpace(seg)
	open := strings.IndexByte(seg, '(')
	if open == -1 {
		return Step{Name: strings.ToLower(seg)}, nil
	}
	if !strings.HasSuffix(seg, ")") {
		return Step{}, fmt.Errorf("%w: %q", ErrUnclosed, seg)
	}
	return Step{
		Name:    strings.ToLower(strings.TrimSpace(seg[:open])),
		Options: seg[open+1 : len(seg)-1],
	}, nil
}

// unquote strips one matching pair of surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// splitArgs splits comma-separated options into at most n arguments, the
// last one taking the remainder. "\," is a literal comma. Arguments are
// trimmed, then unquoted.
func splitArgs(opts string, n int) []string {
	var (
		args  []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		args = append(args, unquote(strings.TrimSpace(cur.String())))
		cur.Reset()
	}
	for i := 0; i < len(opts); i++ {
		c := opts[i]
		switch {
		case c == '\\' && i+1 < len(opts) && opts[i+1] == ',':
			cur.WriteByte(',')
			i++
			continue
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',' && len(args) < n-1:
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return args
}

// lastUnescapedComma returns the index of the last ',' not preceded by a
// backslash, or -1.
func lastUnescapedComma(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ',' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}
