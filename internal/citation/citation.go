package citation

import (
	"github.com/alnah/go-mdcite/internal/bibliography"
)

// Syntax is the notation a citation was written in.
type Syntax int

const (
	SyntaxPandoc Syntax = iota
	SyntaxMMD
	SyntaxMmark
)

func (s Syntax) String() string {
	switch s {
	case SyntaxMMD:
		return "mmd"
	case SyntaxMmark:
		return "mmark"
	default:
		return "pandoc"
	}
}

// Citation is one occurrence of a citation in the source text.
type Citation struct {
	Key    string
	Syntax Syntax
	// Prefix, Locator and Suffix are the free text around the key, e.g.
	// "see", "p. 33" and "and elsewhere" in [see @key, p. 33, and elsewhere].
	Prefix  string
	Locator string
	Suffix  string
	// AuthorSuppressed is set by [-@key] and [@-RFC1234].
	AuthorSuppressed bool
	// AuthorInText is set by a bare @key.
	AuthorInText bool
	// Normative and Informative carry the mmark ! and ? markers.
	Normative   bool
	Informative bool
	// GroupIndex and GroupSize place the citation in a bracketed group
	// such as [@a; @b]. GroupSize is 0 for a citation written alone.
	GroupIndex int
	GroupSize  int
	// Position is the byte offset of the citation in the parsed text.
	Position int
}

// grouped reports whether c shares its brackets with other citations.
func (c *Citation) grouped() bool {
	return c.GroupSize > 1
}

// Registry holds the citations of one document in order of appearance,
// plus the bibliography used to resolve them. The bibliography is shared,
// not owned.
type Registry struct {
	citations []*Citation
	bib       *bibliography.Registry
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(c *Citation) {
	r.citations = append(r.citations, c)
}

// Citations returns every citation in document order.
func (r *Registry) Citations() []*Citation {
	if r == nil {
		return nil
	}
	return append([]*Citation(nil), r.citations...)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.citations)
}

// Keys returns the distinct cited keys in order of first appearance.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool, len(r.citations))
	var keys []string
	for _, c := range r.citations {
		if !seen[c.Key] {
			seen[c.Key] = true
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// ByKey returns the citations of key in document order.
func (r *Registry) ByKey(key string) []*Citation {
	if r == nil {
		return nil
	}
	var out []*Citation
	for _, c := range r.citations {
		if c.Key == key {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) SetBibliography(bib *bibliography.Registry) {
	r.bib = bib
}

func (r *Registry) Bibliography() *bibliography.Registry {
	if r == nil {
		return nil
	}
	return r.bib
}

// Entry returns the bibliography entry for key, if one is attached.
func (r *Registry) Entry(key string) (*bibliography.Entry, bool) {
	return r.Bibliography().Lookup(key)
}

// Numbers assigns 1-based numbers to the cited keys that have a
// bibliography entry, in order of first citation.
func (r *Registry) Numbers() map[string]int {
	numbers := make(map[string]int)
	for _, key := range r.Keys() {
		if _, ok := r.Entry(key); ok {
			numbers[key] = len(numbers) + 1
		}
	}
	return numbers
}
