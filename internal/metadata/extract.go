package metadata

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdcite/internal/yamlutil"
)

// Format identifies the kind of metadata block found at the top of a document.
type Format int

const (
	FormatNone Format = iota
	FormatYAML
	FormatPandoc
	FormatMMD
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatPandoc:
		return "pandoc"
	case FormatMMD:
		return "mmd"
	default:
		return "none"
	}
}

// pandocKeys maps title block lines to keys by position.
var pandocKeys = [...]string{"title", "author", "date"}

var (
	mmdListItem = regexp.MustCompile(`^([-+*]|[0-9]+\.)[ \t]`)
	mmdLink     = regexp.MustCompile(`!?\[[^\]]*\]\(|^\[[^\]]+\]:`)
)

// Extract detects and parses the metadata block at the start of text and
// returns the items with the remaining text. When no block is recognized,
// it returns an empty list and text unchanged.
func Extract(text string) (List, string) {
	items, rest, _ := ExtractFormat(text)
	return items, rest
}

// ExtractFormat is Extract that also reports which block format matched.
func ExtractFormat(text string) (List, string, Format) {
	src := strings.TrimPrefix(text, "\ufeff")

	switch {
	case strings.HasPrefix(src, "---"):
		if items, rest, ok := extractYAML(src); ok {
			return items, rest, FormatYAML
		}
	case strings.HasPrefix(src, "%"):
		if items, rest, ok := extractPandoc(src); ok {
			return items, rest, FormatPandoc
		}
	default:
		if items, rest, ok := extractMMD(src); ok {
			return items, rest, FormatMMD
		}
	}
	return nil, text, FormatNone
}

// nextLine returns the line starting at pos without its terminator
// (a trailing "\r" is dropped too) and the offset of the following line.
func nextLine(text string, pos int) (string, int) {
	end := strings.IndexByte(text[pos:], '\n')
	if end == -1 {
		return strings.TrimSuffix(text[pos:], "\r"), len(text)
	}
	return strings.TrimSuffix(text[pos:pos+end], "\r"), pos + end + 1
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// ---------------------------------------------------------------------------
// YAML front matter
// ---------------------------------------------------------------------------

func extractYAML(text string) (List, string, bool) {
	first, pos := nextLine(text, 0)
	if strings.TrimRight(first, " \t") != "---" {
		return nil, text, false
	}

	start := pos
	for pos < len(text) {
		line, next := nextLine(text, pos)
		if fence := strings.TrimRight(line, " \t"); fence == "---" || fence == "..." {
			return parseYAMLBlock(text[start:pos]), text[next:], true
		}
		pos = next
	}
	return nil, text, false
}

// parseYAMLBlock uses the YAML parser when the block has nested structure,
// falling back to flat "key: value" lines when the block is not valid YAML
// or is flat. Scalars keep their source text either way (no number or date
// coercion).
func parseYAMLBlock(block string) List {
	if isStructuredYAML(block) {
		if items, ok := parseStructuredYAML(block); ok {
			return items
		}
	}
	return parseFlatYAML(block)
}

func isStructuredYAML(block string) bool {
	for pos := 0; pos < len(block); {
		line, next := nextLine(block, pos)
		pos = next
		if isBlank(line) || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' || line[0] == '-' {
			return true
		}
		if idx := strings.IndexByte(line, ':'); idx != -1 {
			value := strings.TrimSpace(line[idx+1:])
			if value == "" || strings.ContainsAny(value[:1], "[{|>") {
				return true
			}
		}
	}
	return false
}

func parseStructuredYAML(block string) (List, bool) {
	if strings.TrimSpace(block) == "" {
		return nil, false
	}
	decoded, err := yamlutil.UnmarshalOrderedText([]byte(block))
	if errors.Is(err, yamlutil.ErrUnsupported) {
		decoded, err = yamlutil.UnmarshalOrdered([]byte(block))
	}
	if err != nil {
		return nil, false
	}
	pairs, ok := decoded.([]yamlutil.Pair)
	if !ok {
		return nil, false
	}
	var items List
	for _, p := range pairs {
		flatten(p.Key, p.Value, &items)
	}
	return items, true
}

// flatten emits nested mappings as dotted keys (author.family). Sequences
// of scalars are joined with ", "; other sequences are indexed (author.0.family).
func flatten(key string, value any, out *List) {
	switch v := value.(type) {
	case []yamlutil.Pair:
		for _, p := range v {
			flatten(key+"."+p.Key, p.Value, out)
		}
	case []any:
		if allScalars(v) {
			parts := make([]string, len(v))
			for i, elem := range v {
				parts[i] = scalarString(elem)
			}
			*out = append(*out, Item{Key: key, Value: strings.Join(parts, ", ")})
			return
		}
		for i, elem := range v {
			flatten(key+"."+strconv.Itoa(i), elem, out)
		}
	default:
		*out = append(*out, Item{Key: key, Value: scalarString(v)})
	}
}

func allScalars(values []any) bool {
	for _, v := range values {
		switch v.(type) {
		case []yamlutil.Pair, []any:
			return false
		}
	}
	return true
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

func parseFlatYAML(block string) List {
	var items List
	for pos := 0; pos < len(block); {
		line, next := nextLine(block, pos)
		pos = next

		if isBlank(line) || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		items = append(items, Item{Key: key, Value: unquote(strings.TrimSpace(line[idx+1:]))})
	}
	return items
}

// unquote strips one matching pair of surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// ---------------------------------------------------------------------------
// Pandoc title block
// ---------------------------------------------------------------------------

func extractPandoc(text string) (List, string, bool) {
	var items List
	pos, n := 0, 0
	for pos < len(text) && n < len(pandocKeys) {
		line, next := nextLine(text, pos)
		if !strings.HasPrefix(line, "%") {
			break
		}
		if value := strings.TrimSpace(line[1:]); value != "" {
			items = append(items, Item{Key: pandocKeys[n], Value: value})
		}
		n++
		pos = next
	}
	if n == 0 {
		return nil, text, false
	}
	return items, text[pos:], true
}

// ---------------------------------------------------------------------------
// MultiMarkdown metadata
// ---------------------------------------------------------------------------

func extractMMD(text string) (List, string, bool) {
	pos := 0
	for pos < len(text) {
		line, next := nextLine(text, pos)
		if !isBlank(line) {
			break
		}
		pos = next
	}

	var items List
	for pos < len(text) {
		line, next := nextLine(text, pos)

		if isBlank(line) {
			if len(items) == 0 {
				return nil, text, false
			}
			return items, text[next:], true
		}

		// Indented lines continue the previous value.
		if len(items) > 0 && (line[0] == ' ' || line[0] == '\t') {
			last := &items[len(items)-1]
			last.Value = strings.TrimSpace(last.Value + " " + strings.TrimSpace(line))
			pos = next
			continue
		}

		key, value, ok := splitMMDLine(line)
		if !ok || isProse(line) {
			if len(items) == 0 {
				return nil, text, false
			}
			return items, text[pos:], true
		}

		items = append(items, Item{Key: key, Value: value})
		pos = next
	}

	if len(items) == 0 {
		return nil, text, false
	}
	return items, text[pos:], true
}

// splitMMDLine splits "Key: value". The colon must be followed by a space
// or tab, and the key must not be indented or empty.
func splitMMDLine(line string) (string, string, bool) {
	if line[0] == ' ' || line[0] == '\t' {
		return "", "", false
	}
	idx := strings.IndexByte(line, ':')
	if idx <= 0 || idx+1 >= len(line) {
		return "", "", false
	}
	if c := line[idx+1]; c != ' ' && c != '\t' {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

// isProse reports lines that look like ordinary Markdown rather than
// metadata: headings, comments, Kramdown markers, list items, URLs, links,
// and lines with markup or a protocol before their first colon.
func isProse(line string) bool {
	t := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(t, "#"),
		strings.HasPrefix(t, "<!--"),
		strings.HasPrefix(t, "{:"),
		mmdListItem.MatchString(t),
		strings.Contains(t, "://"),
		strings.HasPrefix(t, "www."),
		mmdLink.MatchString(t):
		return true
	}
	if idx := strings.IndexByte(t, ':'); idx > 0 {
		if strings.ContainsAny(t[:idx], "<`") || strings.Contains(t[:idx], "//") {
			return true
		}
	}
	return false
}
