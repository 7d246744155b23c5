package citation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alnah/go-mdcite/internal/mdcode"
)

const (
	placeholderOpen  = "<!--CITE:"
	placeholderClose = "-->"
)

// Placeholder returns the inert marker that stands for key until Render.
func Placeholder(key string) string {
	return placeholderOpen + key + placeholderClose
}

// keyPattern is a Pandoc citation key: word characters, with internal
// punctuation allowed only when another word character follows.
const keyPattern = `[\p{L}\p{N}_](?:[\p{L}\p{N}_]|[:.#$%&+?~/-][\p{L}\p{N}_])*`

var (
	mmarkCite = regexp.MustCompile(`^\[@([!?-]?)((?:RFC|BCP|STD|I-D\.|W3C\.)[A-Za-z0-9._-]+)\]`)
	mmdCite   = regexp.MustCompile(`^(?:\[([^\[\]]*)\])?\[#([^\[\]\s]+)\]`)
	bracketed = regexp.MustCompile(`^\[([^\[\]]*)\]`)
	groupItem = regexp.MustCompile(`^([^@]*?)(-?)@(` + keyPattern + `)([^@]*)$`)
	bare      = regexp.MustCompile(`^@(` + keyPattern + `)(?:[ \t]?\[([^\[\]@]*)\])?`)
	locator   = regexp.MustCompile(`^(?i:(?:p|pp|page|pages|chap|chapter|ch|sec|section|vol|volume|fig|figure|para|paragraph|no|line|lines|note|part|book|col|column|art|article|verse|v)\.?\s|§|[0-9])`)
)

// Parse scans text for citations outside code and returns the text with
// every citation replaced by its placeholder, plus the registry of
// citations in document order. A bracketed group such as [@a; @b] becomes
// adjacent placeholders, one per key.
func Parse(text string) (string, *Registry) {
	reg := NewRegistry()
	if !strings.ContainsAny(text, "@#") {
		return text, reg
	}

	code := mdcode.Regions(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		limit := len(text)
		if len(code) > 0 {
			if i >= code[0].Start {
				b.WriteString(text[i:code[0].End])
				i = code[0].End
				code = code[1:]
				continue
			}
			limit = code[0].Start
		}

		var (
			cites    []*Citation
			consumed int
		)
		switch text[i] {
		case '[':
			cites, consumed = matchBracket(text[i:limit])
		case '@':
			if atBoundary(text, i) {
				cites, consumed = matchBare(text[i:limit])
			}
		}
		if cites == nil {
			b.WriteByte(text[i])
			i++
			continue
		}
		for _, c := range cites {
			c.Position += i
			reg.Add(c)
			b.WriteString(Placeholder(c.Key))
		}
		i += consumed
	}
	return b.String(), reg
}

// atBoundary reports whether a bare @key may start at i: at the start of
// the text or after a character that is not a word character, a backslash
// or a slash (so e-mail addresses, \@ and URL paths are left alone).
func atBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return r != '\\' && r != '/' && r != '@' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

// matchBracket matches a citation starting with '[' at the start of s.
// Position fields are offsets into s: the bracket for the first citation,
// the start of its item for later members of a group.
func matchBracket(s string) ([]*Citation, int) {
	if m := mmarkCite.FindStringSubmatch(s); m != nil {
		return []*Citation{{
			Key:              m[2],
			Syntax:           SyntaxMmark,
			Normative:        m[1] == "!",
			Informative:      m[1] == "?",
			AuthorSuppressed: m[1] == "-",
		}}, len(m[0])
	}

	if m := mmdCite.FindStringSubmatch(s); m != nil && !strings.Contains(m[2], placeholderClose) {
		return []*Citation{{
			Key:     m[2],
			Syntax:  SyntaxMMD,
			Locator: strings.TrimSpace(m[1]),
		}}, len(m[0])
	}

	return matchGroup(s)
}

// matchGroup matches a Pandoc bracketed citation: one or more items
// separated by ';', each of the form "prefix -@key locator, suffix". The
// whole bracket is rejected if any item is not a citation.
func matchGroup(s string) ([]*Citation, int) {
	m := bracketed.FindStringSubmatchIndex(s)
	if m == nil {
		return nil, 0
	}
	body := s[m[2]:m[3]]
	if !strings.Contains(body, "@") {
		return nil, 0
	}

	items := strings.Split(body, ";")
	cites := make([]*Citation, 0, len(items))
	offset := m[2]
	for _, item := range items {
		im := groupItem.FindStringSubmatchIndex(item)
		if im == nil {
			return nil, 0
		}
		prefix := item[im[2]:im[3]]
		if prefix != "" && !strings.HasSuffix(prefix, " ") && !strings.HasSuffix(prefix, "\t") {
			return nil, 0
		}
		c := &Citation{
			Key:              item[im[6]:im[7]],
			Syntax:           SyntaxPandoc,
			Prefix:           strings.TrimSpace(prefix),
			AuthorSuppressed: im[5] > im[4],
		}
		if len(cites) > 0 {
			c.Position = offset + len(item) - len(strings.TrimLeft(item, " \t"))
		}
		c.Locator, c.Suffix = splitLocator(item[im[8]:im[9]])
		cites = append(cites, c)
		offset += len(item) + 1
	}

	if len(cites) > 1 {
		for i, c := range cites {
			c.GroupIndex = i
			c.GroupSize = len(cites)
		}
	}
	return cites, m[1]
}

func matchBare(s string) ([]*Citation, int) {
	m := bare.FindStringSubmatch(s)
	if m == nil {
		return nil, 0
	}
	c := &Citation{Key: m[1], Syntax: SyntaxPandoc, AuthorInText: true}
	c.Locator, c.Suffix = splitLocator(m[2])
	return []*Citation{c}, len(m[0])
}

// splitLocator separates the text after a key into a locator ("p. 33",
// "chap. 2", "12-14") and a free suffix. Text that does not start like a
// locator is all suffix.
func splitLocator(rest string) (string, string) {
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ","))
	if rest == "" {
		return "", ""
	}
	if !locator.MatchString(rest) {
		return "", rest
	}
	loc, suffix, _ := strings.Cut(rest, ",")
	return strings.TrimSpace(loc), strings.TrimSpace(suffix)
}
