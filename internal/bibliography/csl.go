package bibliography

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-mdcite/internal/fileutil"
	"github.com/alnah/go-mdcite/internal/yamlutil"
)

// cslItem is a CSL item as found in CSL-JSON and CSL-YAML. Scalars are
// decoded as any because real files mix numbers and strings freely.
type cslItem struct {
	ID             any       `yaml:"id"`
	Type           any       `yaml:"type"`
	Title          any       `yaml:"title"`
	ContainerTitle any       `yaml:"container-title"`
	Journal        any       `yaml:"journal"`
	Publisher      any       `yaml:"publisher"`
	Volume         any       `yaml:"volume"`
	Issue          any       `yaml:"issue"`
	Page           any       `yaml:"page"`
	DOI            any       `yaml:"DOI"`
	DOILower       any       `yaml:"doi"`
	URL            any       `yaml:"URL"`
	URLLower       any       `yaml:"url"`
	Author         []cslName `yaml:"author"`
	Editor         []cslName `yaml:"editor"`
	Issued         any       `yaml:"issued"`
	Year           any       `yaml:"year"`
}

type cslName struct {
	Family  any `yaml:"family"`
	Given   any `yaml:"given"`
	Literal any `yaml:"literal"`
}

type cslDocument struct {
	References []cslItem `yaml:"references"`
}

// ParseCSLJSON decodes a CSL-JSON array of items, or an object holding the
// items under "references".
func ParseCSLJSON(data []byte) ([]*Entry, error) {
	items, err := decodeCSL(data)
	if err != nil {
		return nil, err
	}
	return cslEntries(items), nil
}

// ParseCSLYAML reads CSL-YAML. Well-formed YAML is decoded structurally;
// anything the decoder rejects goes through a line scanner that tolerates
// loose indentation.
func ParseCSLYAML(data []byte) []*Entry {
	body := stripYAMLFences(string(data))
	if items, err := decodeCSL([]byte(body)); err == nil && len(items) > 0 {
		return cslEntries(items)
	}
	return scanCSLYAML(body)
}

func decodeCSL(data []byte) ([]cslItem, error) {
	limit := int(fileutil.MaxBibliographySize)
	trimmed := strings.TrimLeft(string(data), " \t\r\n\ufeff")
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "-") {
		var items []cslItem
		if err := yamlutil.UnmarshalWithLimit([]byte(trimmed), &items, limit); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return items, nil
	}
	var doc cslDocument
	if err := yamlutil.UnmarshalWithLimit([]byte(trimmed), &doc, limit); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return doc.References, nil
}

// stripYAMLFences removes a surrounding "---" ... "---"/"..." pair so a
// bibliography written as front matter decodes as plain YAML.
func stripYAMLFences(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	if !strings.HasPrefix(s, "---") {
		return s
	}
	_, rest, ok := strings.Cut(s, "\n")
	if !ok {
		return ""
	}
	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if t := strings.TrimSpace(line); t == "---" || t == "..." {
			return strings.Join(lines[:i], "\n")
		}
	}
	return rest
}

func cslEntries(items []cslItem) []*Entry {
	entries := make([]*Entry, 0, len(items))
	for _, it := range items {
		id := scalarText(it.ID)
		if id == "" {
			continue
		}
		authors := it.Author
		if len(authors) == 0 {
			authors = it.Editor
		}
		year := scalarText(it.Year)
		if year == "" {
			year = issuedYear(it.Issued)
		}
		entries = append(entries, &Entry{
			ID:             id,
			Type:           scalarText(it.Type),
			Title:          scalarText(it.Title),
			Author:         joinNames(authors),
			Year:           year,
			ContainerTitle: firstText(it.ContainerTitle, it.Journal),
			Publisher:      scalarText(it.Publisher),
			Volume:         scalarText(it.Volume),
			Issue:          scalarText(it.Issue),
			Page:           scalarText(it.Page),
			DOI:            firstText(it.DOI, it.DOILower),
			URL:            firstText(it.URL, it.URLLower),
		})
	}
	return entries
}

func joinNames(names []cslName) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if name := formatName(scalarText(n.Family), scalarText(n.Given), scalarText(n.Literal)); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " and ")
}

// formatName renders "Family, Given", falling back to whichever part exists.
func formatName(family, given, literal string) string {
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	case literal != "":
		return literal
	default:
		return given
	}
}

// issuedYear reads the year of a CSL date: {date-parts: [[Y, M, D]]},
// {raw: "..."}, {literal: "..."}, a plain date string or a bare number.
func issuedYear(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any:
		if parts, ok := t["date-parts"].([]any); ok && len(parts) > 0 {
			if first, ok := parts[0].([]any); ok && len(first) > 0 {
				return scalarText(first[0])
			}
		}
		for _, key := range []string{"year", "raw", "literal"} {
			if y := yearPattern.FindString(scalarText(t[key])); y != "" {
				return y
			}
		}
		return ""
	case []any:
		if len(t) > 0 {
			return issuedYear(t[0])
		}
		return ""
	default:
		return yearPattern.FindString(scalarText(t))
	}
}

func firstText(values ...any) string {
	for _, v := range values {
		if s := scalarText(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		// Some exporters wrap titles in a one-element list.
		if len(t) > 0 {
			return scalarText(t[0])
		}
		return ""
	case map[string]any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
