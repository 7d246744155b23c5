// Package mdcite preprocesses Markdown documents: it extracts and merges
// metadata, substitutes [%key] variables, resolves citations against
// BibTeX or CSL bibliographies and inserts a references section into the
// rendered HTML.
//
// # Quick Start
//
//	conv, err := mdcite.NewConverter(
//	    mdcite.WithBibliography("refs.bib"),
//	    mdcite.WithLinkCitations(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, mdcite.Input{
//	    Markdown: "---\ntitle: Notes\n---\nAs [@smith2020, p. 4] shows.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Warnings != nil {
//	    log.Print(result.Warnings)
//	}
//	os.WriteFile("notes.html", result.HTML, 0o644)
//
// # Conversion Pipeline
//
//  1. Metadata extraction (YAML front matter, Pandoc title block, MultiMarkdown header)
//  2. Metadata merge: WithMetadata < Input.MetadataFile < document < Input.Metadata
//  3. Variable substitution ([%title], [%date:strftime(%B %Y)], ...)
//  4. Citation parsing into <!--CITE:KEY--> placeholders
//  5. Markdown to HTML via Goldmark
//  6. Citation rendering, bibliography generation and insertion
//
// Document metadata can override the bibliography, csl, link-citations,
// show-tooltips, suppress-bibliography and reference-section-title options.
//
// # Error Handling
//
// Broken metadata, unknown citation keys and unreadable bibliography files
// never stop a conversion. They degrade to literal text or visible
// fallback markup and are reported in Result.Warnings. Convert only fails
// on empty input, cancellation or a Markdown conversion error.
//
// The building blocks are also exported as functions: ExtractMetadata,
// MergeMetadata, SubstituteMetadata, ParseCitations, LoadBibliography,
// RenderCitations, GenerateBibliography and InsertBibliography.
package mdcite
