package bibliography

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// bibtexTypes maps BibTeX entry types onto CSL item types. Unlisted types
// become "article".
var bibtexTypes = map[string]string{
	"article":       "article-journal",
	"inproceedings": "paper-conference",
	"conference":    "paper-conference",
	"proceedings":   "book",
	"book":          "book",
	"booklet":       "pamphlet",
	"incollection":  "chapter",
	"inbook":        "chapter",
	"phdthesis":     "thesis",
	"mastersthesis": "thesis",
	"thesis":        "thesis",
	"techreport":    "report",
	"report":        "report",
	"manual":        "report",
	"online":        "webpage",
	"electronic":    "webpage",
	"www":           "webpage",
	"misc":          "article",
}

var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

var (
	yearPattern = regexp.MustCompile(`\b[0-9]{4}\b`)
	bibtexStart = regexp.MustCompile(`(?m)^[ \t]*@[A-Za-z]+[ \t]*[{(]`)
)

// ParseBibTeX reads every @TYPE{key, field = value, ...} entry of src.
// @string definitions feed later values; @comment and @preamble are
// skipped. An entry with unbalanced braces is skipped and scanning resumes
// inside it.
func ParseBibTeX(src string) []*Entry {
	macros := make(map[string]string, len(monthMacros))
	for k, v := range monthMacros {
		macros[k] = v
	}

	var entries []*Entry
	pos := 0
	for {
		at := strings.IndexByte(src[pos:], '@')
		if at == -1 {
			return entries
		}
		i := pos + at + 1

		start := i
		for i < len(src) && (isIdentByte(src[i])) {
			i++
		}
		typ := strings.ToLower(src[start:i])
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		if typ == "" || i >= len(src) || (src[i] != '{' && src[i] != '(') {
			pos = start
			continue
		}

		end := closingDelim(src, i)
		if end == -1 {
			pos = i
			continue
		}
		body := src[i+1 : end]
		pos = end + 1

		switch typ {
		case "comment", "preamble":
			continue
		case "string":
			for name, value := range parseFields(body, macros) {
				macros[name] = value
			}
			continue
		}

		key, rest, _ := strings.Cut(body, ",")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		entries = append(entries, bibtexEntry(key, typ, parseFields(rest, macros)))
	}
}

func bibtexEntry(id, typ string, f map[string]string) *Entry {
	cslType, ok := bibtexTypes[typ]
	if !ok {
		cslType = "article"
	}
	e := &Entry{
		ID:             id,
		Type:           cslType,
		Title:          f["title"],
		Author:         firstOf(f, "author", "editor"),
		Year:           f["year"],
		ContainerTitle: firstOf(f, "journal", "journaltitle", "booktitle", "series"),
		Publisher:      firstOf(f, "publisher", "institution", "school", "organization"),
		Volume:         f["volume"],
		Issue:          firstOf(f, "number", "issue"),
		Page:           strings.ReplaceAll(f["pages"], "--", "–"),
		DOI:            f["doi"],
		URL:            f["url"],
	}
	if e.Year == "" {
		e.Year = yearPattern.FindString(f["date"])
	}
	return e
}

func firstOf(fields map[string]string, names ...string) string {
	for _, name := range names {
		if v := fields[name]; v != "" {
			return v
		}
	}
	return ""
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// closingDelim returns the index closing the '{' or '(' at open, tracking
// brace depth and ignoring backslash-escaped braces.
func closingDelim(s string, open int) int {
	closer := byte('}')
	if s[open] == '(' {
		closer = ')'
	}
	depth := 0
	for i := open + 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			return i
		}
	}
	return -1
}

// parseFields reads "name = value" pairs separated by commas. Values are
// braced, quoted, numeric, or macro names, optionally joined with '#'.
// Names are lowercased and the first definition of a name wins.
func parseFields(s string, macros map[string]string) map[string]string {
	fields := make(map[string]string)
	i := 0
	for i < len(s) {
		for i < len(s) && (isSpace(s[i]) || s[i] == ',') {
			i++
		}
		start := i
		for i < len(s) && s[i] != '=' && s[i] != ',' && !isSpace(s[i]) {
			i++
		}
		name := strings.ToLower(s[start:i])
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			if next := strings.IndexByte(s[i:], ','); next != -1 {
				i += next + 1
				continue
			}
			break
		}
		i++

		var value string
		value, i = parseValue(s, i, macros)
		if _, seen := fields[name]; !seen && name != "" {
			fields[name] = value
		}
	}
	return fields
}

func parseValue(s string, i int, macros map[string]string) (string, int) {
	var parts []string
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		switch s[i] {
		case '{':
			end := closingDelim(s, i)
			if end == -1 {
				parts = append(parts, s[i+1:])
				i = len(s)
			} else {
				parts = append(parts, s[i+1:end])
				i = end + 1
			}
		case '"':
			end := closingQuote(s, i)
			if end == -1 {
				parts = append(parts, s[i+1:])
				i = len(s)
			} else {
				parts = append(parts, s[i+1:end])
				i = end + 1
			}
		default:
			start := i
			for i < len(s) && s[i] != ',' && s[i] != '#' && s[i] != '}' && !isSpace(s[i]) {
				i++
			}
			token := s[start:i]
			if expanded, ok := macros[strings.ToLower(token)]; ok {
				token = expanded
			}
			parts = append(parts, token)
		}

		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i < len(s) && s[i] == '#' {
			i++
			continue
		}
		break
	}
	return cleanValue(strings.Join(parts, "")), i
}

// closingQuote finds the '"' ending a quoted value; quotes inside braces
// do not count.
func closingQuote(s string, open int) int {
	depth := 0
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// accents maps LaTeX accent commands to Unicode combining marks.
var accents = map[byte]rune{
	'"':  '\u0308',
	'\'': '\u0301',
	'`':  '\u0300',
	'^':  '\u0302',
	'~':  '\u0303',
	'=':  '\u0304',
	'.':  '\u0307',
	'c':  '\u0327',
	'u':  '\u0306',
	'v':  '\u030c',
	'H':  '\u030b',
}

var latexSymbols = map[string]string{
	"ss": "ß", "o": "ø", "O": "Ø", "ae": "æ", "AE": "Æ",
	"oe": "œ", "OE": "Œ", "aa": "å", "AA": "Å", "l": "ł", "L": "Ł", "i": "ı",
}

// cleanValue turns a raw BibTeX value into display text: LaTeX accents and
// escapes are decoded, grouping braces removed, '~' becomes a space and
// whitespace runs collapse.
func cleanValue(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '{', '}':
			continue
		case '~':
			b.WriteByte(' ')
			continue
		case '\\':
			i = writeCommand(&b, raw, i)
			continue
		}
		b.WriteByte(c)
	}
	return norm.NFC.String(strings.Join(strings.FieldsFunc(b.String(), unicode.IsSpace), " "))
}

// writeCommand decodes the LaTeX command starting at the backslash at i
// and returns the index of its last consumed byte.
func writeCommand(b *strings.Builder, s string, i int) int {
	if i+1 >= len(s) {
		return i
	}
	c := s[i+1]

	if strings.IndexByte(`&%$_#{}`, c) != -1 {
		b.WriteByte(c)
		return i + 1
	}

	if mark, ok := accents[c]; ok && (!isIdentByte(c) || i+2 < len(s) && !isIdentByte(s[i+2])) {
		j := i + 2
		for j < len(s) && (s[j] == ' ' || s[j] == '{') {
			j++
		}
		if j < len(s) && s[j] != '\\' && s[j] != '}' {
			r, size := utf8.DecodeRuneInString(s[j:])
			b.WriteRune(r)
			b.WriteRune(mark)
			return j + size - 1
		}
		return j - 1
	}

	j := i + 1
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	if sym, ok := latexSymbols[s[i+1:j]]; ok {
		b.WriteString(sym)
		return j - 1
	}
	// Unknown command: drop the name, keep its argument text.
	return j - 1
}
