package citation

import (
	"regexp"
	"strings"
)

var (
	referencesMarker = regexp.MustCompile(`<!--\s*REFERENCES\s*-->`)
	refsDiv          = regexp.MustCompile(`<div\b[^>]*\bid\s*=\s*["']refs["'][^>]*>`)
	divTag           = regexp.MustCompile(`(?i)<div\b|</div\s*>`)
	bodyClose        = regexp.MustCompile(`(?i)</body\s*>`)
)

// Insert splices block into doc at the first available location:
//
//  1. an explicit <!-- REFERENCES --> marker (replaced)
//  2. a {backmatter} marker (replaced, with its paragraph if alone in one)
//  3. inside an existing <div id="refs">, before its closing tag
//  4. before </body>
//  5. the end of the document
func Insert(doc, block string) string {
	if block == "" {
		return doc
	}

	for _, loc := range referencesMarker.FindAllStringIndex(doc, -1) {
		if !insideCode(doc, loc[0]) {
			return doc[:loc[0]] + block + doc[loc[1]:]
		}
	}

	for _, marker := range []string{"<p>{backmatter}</p>", "{backmatter}"} {
		if at := indexOutsideCode(doc, marker); at != -1 {
			return doc[:at] + block + doc[at+len(marker):]
		}
	}

	if loc := refsDiv.FindStringIndex(doc); loc != nil {
		if end := matchingDivClose(doc, loc[1]); end != -1 {
			return doc[:end] + block + doc[end:]
		}
	}

	if locs := bodyClose.FindAllStringIndex(doc, -1); len(locs) > 0 {
		at := locs[len(locs)-1][0]
		return doc[:at] + block + doc[at:]
	}

	if doc != "" && !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}
	return doc + block
}

// indexOutsideCode is strings.Index skipping matches inside <code>.
func indexOutsideCode(doc, s string) int {
	for from := 0; from < len(doc); {
		i := strings.Index(doc[from:], s)
		if i == -1 {
			return -1
		}
		i += from
		if !insideCode(doc, i) {
			return i
		}
		from = i + len(s)
	}
	return -1
}

// insideCode reports whether offset i of rendered HTML falls within a
// <code> element.
func insideCode(doc string, i int) bool {
	open := strings.LastIndex(doc[:i], "<code")
	return open != -1 && strings.LastIndex(doc[:i], "</code>") < open
}

// matchingDivClose returns the offset of the </div> closing a div whose
// opening tag ends at from, or -1.
func matchingDivClose(doc string, from int) int {
	depth := 1
	for _, loc := range divTag.FindAllStringIndex(doc[from:], -1) {
		if doc[from+loc[0]+1] == '/' {
			depth--
			if depth == 0 {
				return from + loc[0]
			}
		} else {
			depth++
		}
	}
	return -1
}
