package bibliography

import (
	"regexp"
	"strings"
)

// yamlLine is a non-blank, non-comment line with its indentation width.
type yamlLine struct {
	indent int
	text   string
}

func splitYAMLLines(s string) []yamlLine {
	var lines []yamlLine
	for _, raw := range strings.Split(s, "\n") {
		raw = strings.TrimRight(raw, " \t\r")
		text := strings.TrimLeft(raw, " \t")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, yamlLine{indent: len(raw) - len(text), text: text})
	}
	return lines
}

// nestedUnder reports whether ln belongs to a key at keyIndent: it is more
// indented, or it is a sequence item at the same indentation.
func nestedUnder(ln yamlLine, keyIndent int) bool {
	return ln.indent > keyIndent || ln.indent == keyIndent && strings.HasPrefix(ln.text, "-")
}

// cslFields accumulates one entry while scanning.
type cslFields struct {
	values  map[string]string
	authors string
	editors string
	year    string
}

// scanCSLYAML is the line-oriented CSL-YAML reader. The indentation of the
// first "- key: value" line sets the entry level; each "- " at that level
// starts an entry. author/editor and issued/year may be written inline or
// as nested blocks, which small sub-scanners consume until indentation
// returns to the entry's fields.
func scanCSLYAML(s string) []*Entry {
	lines := splitYAMLLines(s)
	base := -1
	var (
		entries []*Entry
		cur     *cslFields
	)
	finish := func() {
		if cur != nil {
			if e := cur.entry(); e != nil {
				entries = append(entries, e)
			}
		}
		cur = nil
	}

	for i := 0; i < len(lines); {
		ln := lines[i]
		if item, ok := strings.CutPrefix(ln.text, "- "); ok {
			if base == -1 && strings.Contains(item, ":") {
				base = ln.indent
			}
			if ln.indent == base {
				finish()
				cur = &cslFields{values: make(map[string]string)}
				item = strings.TrimLeft(item, " ")
				keyIndent := ln.indent + len(ln.text) - len(item)
				i = cur.field(item, keyIndent, lines, i+1)
				continue
			}
		}
		if cur != nil && ln.indent > base {
			i = cur.field(ln.text, ln.indent, lines, i+1)
			continue
		}
		i++
	}
	finish()
	return entries
}

// field records "key: value" found at keyIndent and consumes any nested
// lines that belong to it. It returns the index of the next unread line.
func (f *cslFields) field(text string, keyIndent int, lines []yamlLine, next int) int {
	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return next
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	end := next
	for end < len(lines) && nestedUnder(lines[end], keyIndent) {
		end++
	}
	nested := lines[next:end]

	switch key {
	case "author", "editor":
		var names string
		if value != "" {
			names = flowNames(value)
		} else {
			names = blockNames(nested)
		}
		if key == "author" {
			f.authors = names
		} else {
			f.editors = names
		}
	case "issued", "year":
		if y := firstYear(value, nested); y != "" && (f.year == "" || key == "year") {
			f.year = y
		}
	default:
		if value != "" {
			f.values[key] = unquoteYAML(value)
		}
	}
	return end
}

func (f *cslFields) entry() *Entry {
	id := f.values["id"]
	if id == "" {
		return nil
	}
	authors := f.authors
	if authors == "" {
		authors = f.editors
	}
	return &Entry{
		ID:             id,
		Type:           f.values["type"],
		Title:          f.values["title"],
		Author:         authors,
		Year:           f.year,
		ContainerTitle: firstNonEmpty(f.values["container-title"], f.values["journal"]),
		Publisher:      f.values["publisher"],
		Volume:         f.values["volume"],
		Issue:          f.values["issue"],
		Page:           f.values["page"],
		DOI:            f.values["doi"],
		URL:            f.values["url"],
	}
}

// blockNames reads a nested author list:
//
//	author:
//	  - family: Smith
//	    given: Jane
//	  - literal: ACME Corp
func blockNames(lines []yamlLine) string {
	var (
		names                  []string
		family, given, literal string
		started                bool
	)
	flush := func() {
		if name := formatName(family, given, literal); name != "" {
			names = append(names, name)
		}
		family, given, literal = "", "", ""
	}
	for _, ln := range lines {
		text := ln.text
		if item, ok := strings.CutPrefix(text, "-"); ok {
			if started {
				flush()
			}
			started = true
			text = strings.TrimSpace(item)
		}
		k, v, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "family":
			family = unquoteYAML(strings.TrimSpace(v))
		case "given":
			given = unquoteYAML(strings.TrimSpace(v))
		case "literal":
			literal = unquoteYAML(strings.TrimSpace(v))
		}
	}
	flush()
	return strings.Join(names, " and ")
}

var flowMapping = regexp.MustCompile(`\{([^}]*)\}`)

// flowNames reads an inline author value: a flow list of mappings such as
// [{family: Smith, given: J.}], or plain text kept as written.
func flowNames(value string) string {
	maps := flowMapping.FindAllStringSubmatch(value, -1)
	if maps == nil {
		return unquoteYAML(strings.Trim(value, "[] "))
	}
	var names []string
	for _, m := range maps {
		var family, given, literal string
		for _, pair := range strings.Split(m[1], ",") {
			k, v, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			v = unquoteYAML(strings.TrimSpace(v))
			switch strings.ToLower(strings.TrimSpace(k)) {
			case "family":
				family = v
			case "given":
				given = v
			case "literal":
				literal = v
			}
		}
		if name := formatName(family, given, literal); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " and ")
}

// firstYear returns the first four-digit number in value or, when value
// is empty, in the nested lines.
func firstYear(value string, nested []yamlLine) string {
	if value != "" {
		return yearPattern.FindString(value)
	}
	for _, ln := range nested {
		if y := yearPattern.FindString(ln.text); y != "" {
			return y
		}
	}
	return ""
}

func unquoteYAML(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
