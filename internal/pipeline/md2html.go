package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// htmlTemplate wraps a fragment in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// Options configures a GoldmarkConverter.
type Options struct {
	Mode Mode
	// RawHTML passes inline and block HTML from the source through.
	RawHTML bool
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
type GoldmarkConverter struct {
	md   goldmark.Markdown
	mode Mode
}

// NewGoldmarkConverter creates a GoldmarkConverter for opts.Mode.
func NewGoldmarkConverter(opts Options) *GoldmarkConverter {
	var exts []goldmark.Extender
	switch opts.Mode {
	case ModeGFM:
		exts = append(exts, extension.GFM)
	case ModeMultiMarkdown:
		exts = append(exts,
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		)
	}

	rendererOpts := []renderer.Option{gmhtml.WithXHTML()}
	if opts.RawHTML {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkConverter{md: md, mode: opts.Mode}
}

// Mode returns the dialect the converter was built for.
func (c *GoldmarkConverter) Mode() Mode {
	return c.mode
}

// ToHTML converts Markdown content to an HTML fragment. Citation and
// references markers in content survive conversion unchanged.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		protected, keys := ProtectMarkers(content)
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(protected), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		out := RestoreMarkers(buf.String(), keys)
		done <- result{html: ConvertMarkPlaceholders(out)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Standalone wraps an HTML fragment in a complete HTML5 document.
func Standalone(fragment, title string) string {
	if title == "" {
		title = "Document"
	}
	return fmt.Sprintf(htmlTemplate, html.EscapeString(title), fragment)
}
