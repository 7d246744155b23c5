// Package cslstyle reads the parts of a CSL style file that affect how
// citations are rendered.
package cslstyle

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/alnah/go-mdcite/internal/fileutil"
)

// MaxStyleSize bounds the size of a style file.
const MaxStyleSize = 2 << 20

var (
	ErrStyleUnavailable = errors.New("CSL style unavailable")
	ErrInvalidStyle     = errors.New("invalid CSL style")
)

// Style is the subset of a CSL style the renderer understands.
type Style struct {
	// Title is the style's info/title, empty when absent.
	Title string
	// Format is the citation-format category: author-date, numeric,
	// label, note or author. Empty when the style declares none.
	Format string
}

// Numeric reports whether citations should render as numbers.
func (s Style) Numeric() bool {
	return s.Format == "numeric" || s.Format == "label"
}

// Load reads and parses the style at path.
func Load(path string) (Style, error) {
	data, err := fileutil.ReadFileLimited(path, MaxStyleSize)
	if err != nil {
		return Style{}, fmt.Errorf("%w: %s: %w", ErrStyleUnavailable, path, err)
	}
	return Parse(data)
}

// Parse extracts the style title and citation format from CSL XML.
func Parse(data []byte) (Style, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return Style{}, fmt.Errorf("%w: %w", ErrInvalidStyle, err)
	}
	root := xmlquery.FindOne(doc, "/*[local-name()='style']")
	if root == nil {
		return Style{}, fmt.Errorf("%w: missing <style> root", ErrInvalidStyle)
	}

	var s Style
	if title := xmlquery.FindOne(root, "./*[local-name()='info']/*[local-name()='title']"); title != nil {
		s.Title = strings.TrimSpace(title.InnerText())
	}
	for _, cat := range xmlquery.Find(root, "./*[local-name()='info']/*[local-name()='category']") {
		if f := cat.SelectAttr("citation-format"); f != "" {
			s.Format = strings.ToLower(strings.TrimSpace(f))
			break
		}
	}
	return s, nil
}
