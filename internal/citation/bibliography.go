package citation

import (
	"html"
	"strconv"
	"strings"

	"github.com/alnah/go-mdcite/internal/bibliography"
)

// GenerateOptions controls the references block.
type GenerateOptions struct {
	// Suppress disables the block entirely.
	Suppress bool
	// Title, when set, is rendered as a heading above the entries.
	Title string
	Style Style
}

// Generate builds the references block for the entries cited at least
// once, in order of first citation. It returns "" when bibliography output
// is suppressed or no cited key has an entry.
func Generate(reg *Registry, opts GenerateOptions) string {
	if opts.Suppress {
		return ""
	}

	var cited []*bibliography.Entry
	for _, key := range reg.Keys() {
		if e, ok := reg.Entry(key); ok {
			cited = append(cited, e)
		}
	}
	if len(cited) == 0 {
		return ""
	}

	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(`<h2 class="unnumbered" id="references">` + html.EscapeString(opts.Title) + "</h2>\n")
	}
	b.WriteString(`<div class="references csl-bib-body">` + "\n")
	for i, e := range cited {
		b.WriteString(`<div id="ref-` + html.EscapeString(e.ID) + `" class="csl-entry">`)
		if opts.Style == StyleNumeric {
			b.WriteString(`<span class="csl-left-margin">[` + strconv.Itoa(i+1) + `]</span> `)
		}
		b.WriteString(formatReference(e, true))
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}
