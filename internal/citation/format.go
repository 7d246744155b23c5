package citation

import (
	"html"
	"strconv"
	"strings"

	"github.com/alnah/go-mdcite/internal/bibliography"
)

// Style selects how citations and bibliography entries are labeled.
type Style int

const (
	// StyleAuthorDate renders (Smith 2020).
	StyleAuthorDate Style = iota
	// StyleNumeric renders [1] and numbers the bibliography.
	StyleNumeric
)

func (s Style) String() string {
	if s == StyleNumeric {
		return "numeric"
	}
	return "author-date"
}

// ParseStyle maps a CSL citation-format value to a Style. Everything but
// "numeric" and "label" is treated as author-date.
func ParseStyle(format string) Style {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "numeric", "label":
		return StyleNumeric
	default:
		return StyleAuthorDate
	}
}

// citationText builds the visible text of one citation. number is the
// entry's position in a numeric bibliography (0 when unknown). Members of
// a group get their item text only; Render adds the shared brackets.
func citationText(c *Citation, e *bibliography.Entry, style Style, number int) string {
	if c.Syntax == SyntaxMmark {
		return "[" + c.Key + "]"
	}
	if c.grouped() {
		return itemText(c, e, style, number)
	}
	if e == nil {
		if c.AuthorInText {
			return c.Key + "?"
		}
		return "(" + itemText(c, e, style, number) + ")"
	}

	if style == StyleNumeric && number > 0 {
		label := "[" + joinNonEmpty(", ", strconv.Itoa(number), c.Locator, c.Suffix) + "]"
		if c.Prefix != "" {
			label = c.Prefix + " " + label
		}
		if c.AuthorInText {
			return displayName(e) + " " + label
		}
		return label
	}

	if c.AuthorInText {
		inner := joinNonEmpty(", ", e.Year, joinNonEmpty(", ", c.Locator, c.Suffix))
		if inner == "" {
			return displayName(e)
		}
		return displayName(e) + " (" + inner + ")"
	}
	return "(" + itemText(c, e, style, number) + ")"
}

// itemText is the bracket-free text of a parenthetical citation:
// "see Smith 2020, p. 3", "2020, p. 3" when the author is suppressed, or
// "see 1, p. 3" in a numeric group.
func itemText(c *Citation, e *bibliography.Entry, style Style, number int) string {
	if e == nil {
		return c.Key + "?"
	}
	tail := joinNonEmpty(", ", c.Locator, c.Suffix)
	if style == StyleNumeric && number > 0 {
		return joinNonEmpty(" ", c.Prefix, joinNonEmpty(", ", strconv.Itoa(number), tail))
	}
	if c.AuthorSuppressed {
		year := e.Year
		if year == "" {
			year = displayName(e)
		}
		return joinNonEmpty(" ", c.Prefix, joinNonEmpty(", ", year, tail))
	}
	return joinNonEmpty(" ", c.Prefix, joinNonEmpty(", ", joinNonEmpty(" ", displayName(e), e.Year), tail))
}

// groupBrackets returns the delimiters shared by a citation group.
func groupBrackets(style Style) (string, string) {
	if style == StyleNumeric {
		return "[", "]"
	}
	return "(", ")"
}

// displayName is the short author label, degrading to the title and then
// the id when the entry has no authors.
func displayName(e *bibliography.Entry) string {
	if label := e.AuthorLabel(); label != "" {
		return label
	}
	if e.Title != "" {
		return e.Title
	}
	return e.ID
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// referenceWriter appends reference fields, choosing the separator from
// whether anything has been written yet.
type referenceWriter struct {
	b     strings.Builder
	html  bool
	wrote bool
}

func (w *referenceWriter) text(s string) string {
	if w.html {
		return html.EscapeString(s)
	}
	return s
}

func (w *referenceWriter) em(s string) string {
	if w.html {
		return "<em>" + html.EscapeString(s) + "</em>"
	}
	return s
}

func (w *referenceWriter) add(s string) {
	if s == "" {
		return
	}
	if w.wrote {
		w.b.WriteByte(' ')
	}
	w.b.WriteString(s)
	w.wrote = true
}

// formatReference renders an entry as "Author. (Year). Title. Container,
// vol(issue):page. Publisher. DOI-or-URL". Absent fields are skipped.
func formatReference(e *bibliography.Entry, asHTML bool) string {
	w := &referenceWriter{html: asHTML}

	if e.Author != "" {
		w.add(w.text(withPeriod(e.Author)))
	}
	if e.Year != "" {
		w.add("(" + w.text(e.Year) + ").")
	}
	if e.Title != "" {
		w.add(w.em(strings.TrimRight(e.Title, ".")) + terminal(e.Title))
	}

	numbers := w.text(e.Volume)
	if e.Issue != "" {
		numbers += "(" + w.text(e.Issue) + ")"
	}
	if e.Page != "" {
		if numbers != "" {
			numbers += ":"
		}
		numbers += w.text(e.Page)
	}
	switch {
	case e.ContainerTitle != "" && numbers != "":
		w.add(w.em(e.ContainerTitle) + ", " + numbers + ".")
	case e.ContainerTitle != "":
		w.add(w.em(strings.TrimRight(e.ContainerTitle, ".")) + ".")
	case numbers != "":
		w.add(numbers + ".")
	}

	if e.Publisher != "" {
		w.add(w.text(withPeriod(e.Publisher)))
	}

	link := e.URL
	if e.DOI != "" {
		link = "https://doi.org/" + strings.TrimPrefix(e.DOI, "https://doi.org/")
	}
	if link != "" {
		if asHTML {
			escaped := html.EscapeString(link)
			w.add(`<a href="` + escaped + `">` + escaped + `</a>`)
		} else {
			w.add(link)
		}
	}

	if !w.wrote {
		w.add(w.text(e.ID))
	}
	return w.b.String()
}

// withPeriod ends s with a period unless it already ends with terminal
// punctuation.
func withPeriod(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}

// terminal returns the punctuation that closes a title: its own '?' or
// '!', otherwise a period.
func terminal(title string) string {
	if strings.HasSuffix(title, "?") || strings.HasSuffix(title, "!") {
		return ""
	}
	return "."
}
