// Package mdcode locates code in Markdown source: fenced blocks, indented
// blocks and inline code spans. Passes that rewrite Markdown text use it
// to leave code untouched.
package mdcode

import (
	"strings"
)

// Span is a half-open byte range [Start, End) of the source.
type Span struct {
	Start, End int
}

// Regions returns the code spans of text in ascending, non-overlapping
// order. An unclosed fence runs to the end of the text; a backtick run
// with no matching closer is literal text.
func Regions(text string) []Span {
	if !strings.ContainsAny(text, "`~\t") && !strings.Contains(text, "    ") {
		return nil
	}

	var (
		spans     []Span
		fence     *openFence
		inList    bool
		prevBlank = true
		indented  = false // inside an indented code block
		textStart = 0     // start of the current run of non-block text
	)

	flushText := func(end int) {
		if end > textStart {
			spans = append(spans, inlineSpans(text, textStart, end)...)
		}
	}

	for pos := 0; pos < len(text); {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		next := len(text)
		if lineEnd >= 0 {
			lineEnd += pos
			next = lineEnd + 1
		} else {
			lineEnd = len(text)
		}
		line := text[pos:lineEnd]
		blank := strings.TrimSpace(line) == ""

		if indented && !blank && !isIndented(line) {
			indented = false
			textStart = pos
		}

		switch {
		case fence != nil:
			if fence.closedBy(line) {
				spans = append(spans, Span{fence.start, next})
				fence = nil
				textStart = next
			}

		case indented:
			if !blank {
				spans[len(spans)-1].End = lineEnd
			}

		default:
			if f := openingFence(line); f != nil {
				flushText(pos)
				f.start = pos
				fence = f
				inList = false
				break
			}
			if !blank && prevBlank && !inList && isIndented(line) {
				flushText(pos)
				spans = append(spans, Span{pos, lineEnd})
				indented = true
				break
			}
			if !blank {
				switch {
				case isListItem(line):
					inList = true
				case !isIndented(line) && prevBlank:
					inList = false
				}
			}
		}

		prevBlank = blank
		pos = next
	}

	switch {
	case fence != nil:
		spans = append(spans, Span{fence.start, len(text)})
	case !indented:
		flushText(len(text))
	}
	return spans
}

// Outside applies fn to every stretch of text that is not code and
// returns the reassembled text.
func Outside(text string, fn func(string) string) string {
	spans := Regions(text)
	if len(spans) == 0 {
		return fn(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, s := range spans {
		b.WriteString(fn(text[pos:s.Start]))
		b.WriteString(text[s.Start:s.End])
		pos = s.End
	}
	b.WriteString(fn(text[pos:]))
	return b.String()
}

type openFence struct {
	char  byte
	size  int
	start int
}

// openingFence recognizes ``` or ~~~ (three or more) indented by at most
// three spaces. A backtick fence's info string may not contain backticks.
func openingFence(line string) *openFence {
	trimmed, ok := trimIndent(line)
	if !ok || len(trimmed) < 3 {
		return nil
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return nil
	}
	n := runLength(trimmed, 0, c)
	if n < 3 {
		return nil
	}
	if c == '`' && strings.IndexByte(trimmed[n:], '`') >= 0 {
		return nil
	}
	return &openFence{char: c, size: n}
}

func (f *openFence) closedBy(line string) bool {
	trimmed, ok := trimIndent(line)
	if !ok {
		return false
	}
	n := runLength(trimmed, 0, f.char)
	return n >= f.size && strings.TrimSpace(trimmed[n:]) == ""
}

// trimIndent strips up to three leading spaces; ok is false when the line
// is indented further.
func trimIndent(line string) (string, bool) {
	i := 0
	for i < len(line) && i < 4 && line[i] == ' ' {
		i++
	}
	if i == 4 || (i < len(line) && line[i] == '\t') {
		return "", false
	}
	return line[i:], true
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

// isListItem reports whether line opens a bullet or ordered list item.
func isListItem(line string) bool {
	s, ok := trimIndent(line)
	if !ok || s == "" {
		return false
	}
	switch s[0] {
	case '-', '*', '+':
		return len(s) == 1 || s[1] == ' ' || s[1] == '\t'
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || (s[i] != '.' && s[i] != ')') {
		return false
	}
	return i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\t'
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// inlineSpans finds code spans in text[start:end]: a backtick run closed
// by the next run of the same length within the same paragraph.
func inlineSpans(text string, start, end int) []Span {
	var spans []Span
	for i := start; i < end; {
		if text[i] != '`' {
			i++
			continue
		}
		n := runLength(text[:end], i, '`')
		closeAt := -1
		for j := i + n; j < end; {
			if text[j] == '\n' && blankLineAt(text[:end], j+1) {
				break
			}
			if text[j] != '`' {
				j++
				continue
			}
			m := runLength(text[:end], j, '`')
			if m == n {
				closeAt = j
				break
			}
			j += m
		}
		if closeAt < 0 {
			i += n
			continue
		}
		spans = append(spans, Span{i, closeAt + n})
		i = closeAt + n
	}
	return spans
}

// blankLineAt reports whether the line starting at i holds only
// whitespace. The end of the text counts as blank.
func blankLineAt(text string, i int) bool {
	for ; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\r':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}
