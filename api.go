package mdcite

import (
	"github.com/alnah/go-mdcite/internal/bibliography"
	"github.com/alnah/go-mdcite/internal/citation"
	"github.com/alnah/go-mdcite/internal/metadata"
	"github.com/alnah/go-mdcite/internal/transform"
)

// ExtractMetadata splits a leading metadata block (YAML front matter,
// Pandoc title block or MultiMarkdown header) from text. Without one it
// returns no metadata and text unchanged.
func ExtractMetadata(text string) (Metadata, string) {
	l, rest := metadata.Extract(text)
	return fromList(l), rest
}

// MergeMetadata combines sources from lowest to highest precedence. The
// result holds one item per key.
func MergeMetadata(sources ...Metadata) Metadata {
	lists := make([]metadata.List, len(sources))
	for i, m := range sources {
		lists[i] = toList(m)
	}
	return fromList(metadata.Merge(lists...))
}

// SubstituteMetadata replaces [%key] and [%key:transform(...)] variables
// in text. Unknown keys leave the variable as written.
func SubstituteMetadata(text string, meta Metadata, transforms bool) string {
	return transform.Substitute(text, toList(meta), transforms)
}

// ParseCitations replaces Pandoc, MultiMarkdown and mmark citations in text
// with <!--CITE:KEY--> placeholders. Code spans and code blocks are left
// alone, and a group such as [@a; @b] yields one placeholder per key.
func ParseCitations(text string) (string, *Citations) {
	out, reg := citation.Parse(text)
	return out, &Citations{reg: reg}
}

// LoadBibliography reads BibTeX, CSL-JSON and CSL-YAML files, resolving
// relative paths against baseDir. The returned bibliography is always
// usable; the error joins the problems of files that were skipped.
func LoadBibliography(paths []string, baseDir string) (*Bibliography, error) {
	reg, err := bibliography.Load(paths, baseDir)
	return &Bibliography{reg: reg}, err
}

// CitationOptions controls RenderCitations.
type CitationOptions struct {
	LinkCitations bool
	ShowTooltips  bool
	// Numeric renders [1] instead of (Author Year).
	Numeric bool
}

// BibliographyOptions controls GenerateBibliography.
type BibliographyOptions struct {
	Suppress bool
	Title    string
	Numeric  bool
}

func styleFor(numeric bool) citation.Style {
	if numeric {
		return citation.StyleNumeric
	}
	return citation.StyleAuthorDate
}

// RenderCitations replaces every placeholder in html with citation markup,
// resolved against bib. It attaches bib to cites.
func RenderCitations(html string, cites *Citations, bib *Bibliography, opts CitationOptions) string {
	reg := attach(cites, bib)
	return citation.Render(html, reg, citation.RenderOptions{
		LinkCitations: opts.LinkCitations,
		ShowTooltips:  opts.ShowTooltips,
		Style:         styleFor(opts.Numeric),
	})
}

// GenerateBibliography builds the references block for the cited entries
// of bib, or "" when none was cited or output is suppressed.
func GenerateBibliography(cites *Citations, bib *Bibliography, opts BibliographyOptions) string {
	reg := attach(cites, bib)
	return citation.Generate(reg, citation.GenerateOptions{
		Suppress: opts.Suppress,
		Title:    opts.Title,
		Style:    styleFor(opts.Numeric),
	})
}

// InsertBibliography splices block into html at a <!-- REFERENCES -->
// marker, a {backmatter} marker, inside <div id="refs">, before </body>,
// or at the end, whichever comes first.
func InsertBibliography(html, block string) string {
	return citation.Insert(html, block)
}

func attach(cites *Citations, bib *Bibliography) *citation.Registry {
	if cites == nil || cites.reg == nil {
		return citation.NewRegistry()
	}
	if bib != nil {
		cites.reg.SetBibliography(bib.registry())
	}
	return cites.reg
}
