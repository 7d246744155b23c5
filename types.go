package mdcite

import (
	"github.com/alnah/go-mdcite/internal/bibliography"
	"github.com/alnah/go-mdcite/internal/citation"
	"github.com/alnah/go-mdcite/internal/metadata"
)

// MetadataItem is one document metadata key/value pair.
type MetadataItem struct {
	Key   string
	Value string
}

// Metadata is an ordered list of metadata items. Key lookups ignore case
// and whitespace.
type Metadata []MetadataItem

// Get returns the value of the first item matching key.
func (m Metadata) Get(key string) (string, bool) {
	return toList(m).Get(key)
}

// FrontMatter renders m as a YAML front matter block, "" when empty.
func (m Metadata) FrontMatter() (string, error) {
	return toList(m).FrontMatter()
}

func toList(m Metadata) metadata.List {
	if m == nil {
		return nil
	}
	l := make(metadata.List, len(m))
	for i, item := range m {
		l[i] = metadata.Item(item)
	}
	return l
}

func fromList(l metadata.List) Metadata {
	if l == nil {
		return nil
	}
	m := make(Metadata, len(l))
	for i, item := range l {
		m[i] = MetadataItem(item)
	}
	return m
}

// Citation is one citation found in a document.
type Citation struct {
	Key string
	// Syntax is "pandoc", "mmd" or "mmark".
	Syntax           string
	Prefix           string
	Locator          string
	Suffix           string
	AuthorSuppressed bool
	AuthorInText     bool
	Normative        bool
	Informative      bool
	// GroupIndex and GroupSize place the citation in a bracketed group
	// such as [@a; @b]. GroupSize is 0 for a citation written alone.
	GroupIndex int
	GroupSize  int
	// Position is the byte offset of the citation in the parsed text.
	Position int
}

// Citations is the ordered set of citations parsed from one document.
type Citations struct {
	reg *citation.Registry
}

// Len returns the number of citations.
func (c *Citations) Len() int {
	if c == nil {
		return 0
	}
	return c.reg.Len()
}

// Keys returns each cited key once, in order of first appearance.
func (c *Citations) Keys() []string {
	if c == nil {
		return nil
	}
	return c.reg.Keys()
}

// All returns every citation in document order.
func (c *Citations) All() []Citation {
	if c == nil {
		return nil
	}
	return citationsFrom(c.reg)
}

func citationsFrom(reg *citation.Registry) []Citation {
	cites := reg.Citations()
	if len(cites) == 0 {
		return nil
	}
	out := make([]Citation, len(cites))
	for i, ct := range cites {
		out[i] = Citation{
			Key:              ct.Key,
			Syntax:           ct.Syntax.String(),
			Prefix:           ct.Prefix,
			Locator:          ct.Locator,
			Suffix:           ct.Suffix,
			AuthorSuppressed: ct.AuthorSuppressed,
			AuthorInText:     ct.AuthorInText,
			Normative:        ct.Normative,
			Informative:      ct.Informative,
			GroupIndex:       ct.GroupIndex,
			GroupSize:        ct.GroupSize,
			Position:         ct.Position,
		}
	}
	return out
}

// Reference is one bibliography entry.
type Reference struct {
	ID             string
	Type           string
	Title          string
	Author         string
	Year           string
	ContainerTitle string
	Publisher      string
	Volume         string
	Issue          string
	Page           string
	DOI            string
	URL            string
}

// Bibliography is a set of references keyed by id.
type Bibliography struct {
	reg *bibliography.Registry
}

// Len returns the number of references.
func (b *Bibliography) Len() int {
	if b == nil {
		return 0
	}
	return b.reg.Len()
}

// Lookup returns the reference with the given id. Ids are case-sensitive.
func (b *Bibliography) Lookup(id string) (Reference, bool) {
	if b == nil {
		return Reference{}, false
	}
	e, ok := b.reg.Lookup(id)
	if !ok {
		return Reference{}, false
	}
	return Reference(*e), true
}

// References returns all references in load order.
func (b *Bibliography) References() []Reference {
	if b == nil {
		return nil
	}
	entries := b.reg.Entries()
	out := make([]Reference, len(entries))
	for i, e := range entries {
		out[i] = Reference(*e)
	}
	return out
}

func (b *Bibliography) registry() *bibliography.Registry {
	if b == nil {
		return nil
	}
	return b.reg
}

// Input holds the per-document conversion parameters.
type Input struct {
	// Markdown is the document source, optionally starting with a
	// metadata block.
	Markdown string
	// SourceDir resolves relative bibliography, CSL and metadata file
	// paths. Empty means the working directory.
	SourceDir string
	// MetadataFile names a "key: value" file merged below the document's
	// own metadata.
	MetadataFile string
	// Metadata overrides every other metadata source.
	Metadata Metadata
	// OutputDir is where the HTML will be written. When set, relative
	// image and link paths are rebased from SourceDir to it and links to
	// Markdown files point at their .html counterpart.
	OutputDir string
}

// Result is the output of a conversion.
type Result struct {
	// HTML is the rendered document with citations resolved.
	HTML []byte
	// Markdown is the document body after metadata removal and
	// variable substitution.
	Markdown string
	// Metadata is the merged metadata that drove the conversion.
	Metadata Metadata
	// MetadataFormat is "yaml", "pandoc", "mmd" or "none".
	MetadataFormat string
	Citations      []Citation
	// Warnings joins recoverable problems: skipped bibliography files, an
	// unreadable CSL style or metadata file, a bad date format. The
	// conversion still succeeded.
	Warnings error
}
