package bibliography

import "strings"

// Entry is one reference. Fields hold display text; empty means absent.
type Entry struct {
	ID             string `yaml:"id"`
	Type           string `yaml:"type,omitempty"`
	Title          string `yaml:"title,omitempty"`
	Author         string `yaml:"author,omitempty"`
	Year           string `yaml:"year,omitempty"`
	ContainerTitle string `yaml:"containerTitle,omitempty"`
	Publisher      string `yaml:"publisher,omitempty"`
	Volume         string `yaml:"volume,omitempty"`
	Issue          string `yaml:"issue,omitempty"`
	Page           string `yaml:"page,omitempty"`
	DOI            string `yaml:"doi,omitempty"`
	URL            string `yaml:"url,omitempty"`
}

// Authors splits the author field on " and ", the separator used by
// BibTeX and produced by the CSL loaders.
func (e *Entry) Authors() []string {
	if strings.TrimSpace(e.Author) == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(e.Author, " and ") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// FamilyNames returns the family name of every author: the part before
// the comma in "Family, Given", otherwise the last word.
func (e *Entry) FamilyNames() []string {
	authors := e.Authors()
	families := make([]string, 0, len(authors))
	for _, name := range authors {
		if family, _, ok := strings.Cut(name, ","); ok {
			families = append(families, strings.TrimSpace(family))
			continue
		}
		fields := strings.Fields(name)
		families = append(families, fields[len(fields)-1])
	}
	return families
}

// AuthorLabel is the short author text used in citations: "Smith",
// "Smith and Doe", or "Smith et al." for three or more authors.
func (e *Entry) AuthorLabel() string {
	families := e.FamilyNames()
	switch len(families) {
	case 0:
		return ""
	case 1:
		return families[0]
	case 2:
		return families[0] + " and " + families[1]
	default:
		return families[0] + " et al."
	}
}
