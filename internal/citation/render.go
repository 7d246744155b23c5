package citation

import (
	"html"
	"log/slog"
	"strings"
)

// RenderOptions controls citation markup.
type RenderOptions struct {
	// LinkCitations wraps resolved citations in a link to #ref-KEY.
	LinkCitations bool
	// ShowTooltips adds the formatted reference as a title attribute.
	ShowTooltips bool
	Style        Style
	// Logger receives unresolved citations at warn level. Nil discards them.
	Logger *slog.Logger
}

// Render replaces every <!--CITE:KEY--> placeholder in html with citation
// markup. Members of a bracketed group share one pair of brackets and are
// separated by "; ". The nth placeholder of a key takes the nth citation of that key.
// A key missing from the bibliography still renders visibly, marked with
// the "missing" class, so no placeholder survives.
func Render(doc string, reg *Registry, opts RenderOptions) string {
	if !strings.Contains(doc, placeholderOpen) {
		return doc
	}

	numbers := reg.Numbers()
	cursor := make(map[string]int)
	open, closing := groupBrackets(opts.Style)

	var b strings.Builder
	b.Grow(len(doc))
	pos := 0
	for {
		start := strings.Index(doc[pos:], placeholderOpen)
		if start == -1 {
			b.WriteString(doc[pos:])
			return b.String()
		}
		start += pos
		keyStart := start + len(placeholderOpen)
		end := strings.Index(doc[keyStart:], placeholderClose)
		if end == -1 {
			b.WriteString(doc[pos:])
			return b.String()
		}
		end += keyStart

		b.WriteString(doc[pos:start])
		key := doc[keyStart:end]
		c := nextCitation(reg, key, cursor)
		if c.grouped() {
			if c.GroupIndex == 0 {
				b.WriteString(open)
			} else {
				b.WriteString("; ")
			}
		}
		b.WriteString(renderOne(key, c, reg, numbers, opts))
		if c.grouped() && c.GroupIndex == c.GroupSize-1 {
			b.WriteString(closing)
		}
		pos = end + len(placeholderClose)
	}
}

// nextCitation returns the citation matching the next placeholder of key,
// repeating the last one if placeholders outnumber citations.
func nextCitation(reg *Registry, key string, cursor map[string]int) *Citation {
	cites := reg.ByKey(key)
	if len(cites) == 0 {
		return &Citation{Key: key}
	}
	i := min(cursor[key], len(cites)-1)
	cursor[key]++
	return cites[i]
}

func renderOne(key string, c *Citation, reg *Registry, numbers map[string]int, opts RenderOptions) string {
	entry, found := reg.Entry(key)
	text := html.EscapeString(citationText(c, entry, opts.Style, numbers[key]))
	escapedKey := html.EscapeString(key)

	if !found {
		if c.Syntax != SyntaxMmark && opts.Logger != nil {
			opts.Logger.Warn("citation has no bibliography entry", "key", key)
		}
		return `<span class="citation missing" data-cites="` + escapedKey + `">` + text + `</span>`
	}

	var attrs strings.Builder
	attrs.WriteString(` class="citation" data-cites="` + escapedKey + `"`)
	if opts.ShowTooltips {
		attrs.WriteString(` title="` + html.EscapeString(formatReference(entry, false)) + `"`)
	}

	if opts.LinkCitations {
		return `<a href="#ref-` + escapedKey + `"` + attrs.String() + `>` + text + `</a>`
	}
	return `<span` + attrs.String() + `>` + text + `</span>`
}
