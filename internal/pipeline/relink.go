package pipeline

import (
	"bytes"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RelinkPaths rebases relative image and link targets written against
// sourceDir so they resolve from outputDir, and points links to Markdown
// files at the HTML file converted from them. Bytes outside rewritten tags
// are copied unchanged. An empty outputDir means the HTML sits next to its
// source.
//
// Rewrites:
//   - img[src]: relative paths to images
//   - a[href]: relative file paths (not anchors, not URLs)
//
// Absolute paths, URLs with a scheme, protocol-relative URLs and fragment-only
// links are left alone.
func RelinkPaths(htmlContent, sourceDir, outputDir string) string {
	if !strings.Contains(htmlContent, "src=") && !strings.Contains(htmlContent, "href=") {
		return htmlContent
	}
	r, ok := newRelinker(sourceDir, outputDir)
	if !ok {
		return htmlContent
	}

	var out bytes.Buffer
	out.Grow(len(htmlContent))
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return htmlContent
		}
		// Token() lower-cases the tag name in place, so keep the raw bytes first.
		raw := append([]byte(nil), z.Raw()...)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}
		tok := z.Token()
		if !r.rewriteToken(&tok) {
			out.Write(raw)
			continue
		}
		writeTag(&out, tok, tt == html.SelfClosingTagToken)
	}
	return out.String()
}

// relinker holds the relative path from the output directory back to the
// source directory.
type relinker struct {
	prefix string // slash separated, "" when both directories match
}

func newRelinker(sourceDir, outputDir string) (*relinker, bool) {
	if sourceDir == "" {
		sourceDir = "."
	}
	if outputDir == "" {
		outputDir = sourceDir
	}
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, false
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, false
	}
	rel, err := filepath.Rel(absOutput, absSource)
	if err != nil {
		return nil, false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}
	return &relinker{prefix: rel}, true
}

// rewriteToken updates the path attribute of img and a tags and reports
// whether anything changed.
func (r *relinker) rewriteToken(tok *html.Token) bool {
	var key string
	switch tok.DataAtom {
	case atom.Img:
		key = "src"
	case atom.A:
		key = "href"
	default:
		return false
	}
	changed := false
	for i := range tok.Attr {
		a := &tok.Attr[i]
		if a.Namespace != "" || a.Key != key {
			continue
		}
		if v, ok := r.rewrite(a.Val, tok.DataAtom == atom.A); ok && v != a.Val {
			a.Val = v
			changed = true
		}
	}
	return changed
}

// rewrite returns the rebased form of ref.
func (r *relinker) rewrite(ref string, isLink bool) (string, bool) {
	if !isRelativePath(ref) {
		return ref, false
	}
	p, suffix := splitSuffix(ref)
	if p == "" {
		return ref, false
	}
	if isLink {
		p = markdownToHTML(p)
	}
	if r.prefix != "" {
		p = path.Join(r.prefix, p)
	}
	return p + suffix, true
}

// isRelativePath reports whether ref is a relative file path.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "?") {
		return false
	}
	if strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, `\`) {
		return false
	}
	if filepath.IsAbs(ref) {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// splitSuffix separates a path from its query string or fragment.
func splitSuffix(ref string) (string, string) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// markdownToHTML swaps a .md or .markdown extension for .html.
func markdownToHTML(p string) string {
	ext := path.Ext(p)
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return strings.TrimSuffix(p, ext) + ".html"
	}
	return p
}

// writeTag serializes a start tag with double-quoted attribute values.
func writeTag(w *bytes.Buffer, tok html.Token, selfClosing bool) {
	w.WriteByte('<')
	w.WriteString(tok.Data)
	for _, a := range tok.Attr {
		w.WriteByte(' ')
		if a.Namespace != "" {
			w.WriteString(a.Namespace)
			w.WriteByte(':')
		}
		w.WriteString(a.Key)
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(a.Val))
		w.WriteByte('"')
	}
	if selfClosing {
		w.WriteString(" /")
	}
	w.WriteByte('>')
}
