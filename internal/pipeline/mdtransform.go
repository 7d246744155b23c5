package pipeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-mdcite/internal/mdcode"
)

// Placeholders use Unicode Private Use Area characters. They pass through
// Goldmark unchanged, so no raw HTML support is needed to carry markers.
const (
	MarkStartPlaceholder  = "\uE000"
	MarkEndPlaceholder    = "\uE001"
	citeStartPlaceholder  = "\uE002"
	citeEndPlaceholder    = "\uE003"
	referencesPlaceholder = "\uE004"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	citeMarker       = regexp.MustCompile(`<!--CITE:(.*?)-->`)
	referencesMarker = regexp.MustCompile(`<!--\s*REFERENCES\s*-->`)
	protectedCite    = regexp.MustCompile(citeStartPlaceholder + `([0-9]+)` + citeEndPlaceholder)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// Preprocessor prepares Markdown for conversion in a given mode.
type Preprocessor struct {
	Mode Mode
}

// PreprocessMarkdown normalizes line endings and, in multimarkdown mode,
// turns ==text== into highlight placeholders.
func (p *Preprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	if p.Mode == ModeMultiMarkdown {
		content = convertHighlights(content)
	}
	return compressBlankLines(content)
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return normalizeLineEndings(content)
}

func normalizeLineEndings(content string) string {
	if !strings.Contains(content, "\r") {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights pairs ==...== delimiters on one line, ignoring
// delimiters inside code.
func convertHighlights(content string) string {
	if !strings.Contains(content, "==") {
		return content
	}
	code := mdcode.Regions(content)

	var b strings.Builder
	b.Grow(len(content))
	pos := 0
	for {
		open := nextHighlightDelim(content, pos, code)
		if open < 0 {
			break
		}
		closing := nextHighlightDelim(content, open+2, code)
		if closing < 0 {
			break
		}
		if strings.Contains(content[open+2:closing], "\n") {
			b.WriteString(content[pos : open+2])
			pos = open + 2
			continue
		}
		b.WriteString(content[pos:open])
		b.WriteString(MarkStartPlaceholder)
		b.WriteString(content[open+2 : closing])
		b.WriteString(MarkEndPlaceholder)
		pos = closing + 2
	}
	b.WriteString(content[pos:])
	return b.String()
}

// nextHighlightDelim returns the offset of the next "==" at or after from
// that does not touch a code region, or -1.
func nextHighlightDelim(content string, from int, code []mdcode.Span) int {
	for from < len(content) {
		idx := strings.Index(content[from:], "==")
		if idx < 0 {
			return -1
		}
		i := from + idx
		if end, ok := codeEnd(code, i, i+2); ok {
			from = end
			continue
		}
		return i
	}
	return -1
}

// codeEnd reports whether [start, end) overlaps a code region and, if so,
// where that region ends.
func codeEnd(code []mdcode.Span, start, end int) (int, bool) {
	for _, s := range code {
		if s.Start >= end {
			break
		}
		if s.End > start {
			return s.End, true
		}
	}
	return 0, false
}

// ConvertMarkPlaceholders converts highlight placeholders to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// ProtectMarkers swaps citation placeholders and the references marker for
// private-use tokens. A citation becomes its index into the returned keys,
// so nothing in a key can be reinterpreted as Markdown. Markers written
// inside code are left as text and render escaped.
func ProtectMarkers(content string) (string, []string) {
	var keys []string
	content = mdcode.Outside(content, func(text string) string {
		text = citeMarker.ReplaceAllStringFunc(text, func(m string) string {
			key := citeMarker.FindStringSubmatch(m)[1]
			keys = append(keys, key)
			return citeStartPlaceholder + strconv.Itoa(len(keys)-1) + citeEndPlaceholder
		})
		return referencesMarker.ReplaceAllString(text, referencesPlaceholder)
	})
	return content, keys
}

// RestoreMarkers reverses ProtectMarkers on converted HTML. A references
// marker left alone in a paragraph loses its <p> wrapper.
func RestoreMarkers(html string, keys []string) string {
	html = protectedCite.ReplaceAllStringFunc(html, func(m string) string {
		i, err := strconv.Atoi(protectedCite.FindStringSubmatch(m)[1])
		if err != nil || i >= len(keys) {
			return m
		}
		return "<!--CITE:" + keys[i] + "-->"
	})
	html = strings.ReplaceAll(html, "<p>"+referencesPlaceholder+"</p>", "<!-- REFERENCES -->")
	return strings.ReplaceAll(html, referencesPlaceholder, "<!-- REFERENCES -->")
}
