package mdcite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-mdcite/internal/bibcache"
	"github.com/alnah/go-mdcite/internal/bibliography"
	"github.com/alnah/go-mdcite/internal/citation"
	"github.com/alnah/go-mdcite/internal/cslstyle"
	"github.com/alnah/go-mdcite/internal/dateutil"
	"github.com/alnah/go-mdcite/internal/fileutil"
	"github.com/alnah/go-mdcite/internal/metadata"
	"github.com/alnah/go-mdcite/internal/pipeline"
	"github.com/alnah/go-mdcite/internal/transform"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.Preprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ bibliography.Cache            = (*bibcache.Store)(nil)
)

// Converter runs the document pipeline: metadata extraction and merge,
// variable substitution, citation parsing, Markdown conversion, citation
// rendering and bibliography insertion.
// A Converter is safe for concurrent use. Close it when done.
type Converter struct {
	cfg           converterConfig
	mode          pipeline.Mode
	style         citation.Style
	cache         *bibcache.Store
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
}

// NewConverter creates a Converter. It fails when the mode is unknown, the
// CSL style cannot be read or the cache cannot be opened.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{cfg: defaultConfig()}

	for _, opt := range opts {
		opt(c)
	}

	mode, err := pipeline.ParseMode(c.cfg.mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, err)
	}
	c.mode = mode

	if c.cfg.cslPath != "" {
		s, err := cslstyle.Load(c.cfg.cslPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStyleUnavailable, err)
		}
		c.style = styleOf(s)
	}

	if c.preprocessor == nil {
		c.preprocessor = &pipeline.Preprocessor{Mode: mode}
	}
	if c.htmlConverter == nil {
		c.htmlConverter = pipeline.NewGoldmarkConverter(pipeline.Options{Mode: mode, RawHTML: c.cfg.rawHTML})
	}

	if c.cfg.cachePath != "" {
		store, err := bibcache.Open(c.cfg.cachePath, c.cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
		c.cache = store
	}

	return c, nil
}

// Close releases the bibliography cache.
func (c *Converter) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// Mode returns the Markdown dialect in use.
func (c *Converter) Mode() string {
	return c.mode.String()
}

// docSettings are the converter options after document metadata had its
// say.
type docSettings struct {
	citations      bool
	linkCitations  bool
	showTooltips   bool
	suppress       bool
	bibliography   []string
	cslPath        string
	referenceTitle string
}

// Convert runs the full pipeline on one document.
// Recoverable problems are reported in Result.Warnings; the returned error
// is reserved for empty input, cancellation and conversion failures.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var warnings []error
	warn := func(err error) {
		warnings = append(warnings, err)
	}

	text := pipeline.NormalizeLineEndings(input.Markdown)
	docMeta, body, format := metadata.ExtractFormat(text)

	var fileMeta metadata.List
	if input.MetadataFile != "" {
		fileMeta, err = metadata.LoadFile(fileutil.ResolvePath(input.SourceDir, input.MetadataFile))
		if err != nil {
			c.cfg.logger.Warn("skipping metadata file", "path", input.MetadataFile, "error", err)
			warn(err)
		}
	}

	meta := metadata.Merge(toList(c.cfg.metadata), fileMeta, docMeta, toList(input.Metadata))
	meta, err = resolveDate(meta, c.cfg.now)
	if err != nil {
		c.cfg.logger.Warn("keeping date as written", "error", err)
		warn(err)
	}

	sub := transform.Substituter{TransformsEnabled: c.cfg.transforms, Logger: c.cfg.logger}
	body = sub.Substitute(body, meta)

	res := &Result{
		Markdown:       body,
		Metadata:       fromList(meta),
		MetadataFormat: format.String(),
	}

	settings := c.settingsFor(meta)
	mdContent := body
	var reg *citation.Registry
	if settings.citations && c.mode.CitationsAllowed() {
		mdContent, reg = citation.Parse(body)
	}

	mdContent = c.preprocessor.PreprocessMarkdown(ctx, mdContent)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	if reg.Len() > 0 {
		bib, err := c.loadBibliography(settings.bibliography, input.SourceDir)
		if err != nil {
			warn(err)
		}
		reg.SetBibliography(bib)

		style, err := c.styleFor(settings.cslPath, input.SourceDir)
		if err != nil {
			c.cfg.logger.Warn("using default citation style", "csl", settings.cslPath, "error", err)
			warn(err)
		}

		htmlContent = citation.Render(htmlContent, reg, citation.RenderOptions{
			LinkCitations: settings.linkCitations,
			ShowTooltips:  settings.showTooltips,
			Style:         style,
			Logger:        c.cfg.logger,
		})
		block := citation.Generate(reg, citation.GenerateOptions{
			Suppress: settings.suppress,
			Title:    settings.referenceTitle,
			Style:    style,
		})
		if block != "" {
			htmlContent = citation.Insert(htmlContent, block)
		}
		res.Citations = citationsFrom(reg)
	}

	if input.OutputDir != "" {
		htmlContent = pipeline.RelinkPaths(htmlContent, input.SourceDir, input.OutputDir)
	}

	if c.cfg.standalone {
		htmlContent = pipeline.Standalone(htmlContent, meta.Value("title"))
	}

	res.HTML = []byte(htmlContent)
	res.Warnings = errors.Join(warnings...)
	return res, nil
}

// settingsFor overlays the Pandoc-style metadata keys bibliography, csl,
// link-citations, show-tooltips, suppress-bibliography and
// reference-section-title onto the converter options.
func (c *Converter) settingsFor(meta metadata.List) docSettings {
	s := docSettings{
		citations:      c.cfg.citations,
		linkCitations:  c.cfg.linkCitations,
		showTooltips:   c.cfg.showTooltips,
		suppress:       c.cfg.suppressBibliography,
		bibliography:   c.cfg.bibliography,
		cslPath:        c.cfg.cslPath,
		referenceTitle: c.cfg.referenceTitle,
	}
	if v, ok := meta.Get("bibliography"); ok {
		s.bibliography = splitPaths(v)
	}
	if v, ok := meta.Get("csl"); ok {
		s.cslPath = strings.TrimSpace(v)
	}
	if meta.Has("link-citations") {
		s.linkCitations = meta.Bool("link-citations")
	}
	if meta.Has("show-tooltips") {
		s.showTooltips = meta.Bool("show-tooltips")
	}
	if meta.Has("suppress-bibliography") {
		s.suppress = meta.Bool("suppress-bibliography")
	}
	if v, ok := meta.Get("reference-section-title"); ok {
		s.referenceTitle = strings.TrimSpace(v)
	}
	return s
}

func (c *Converter) loadBibliography(paths []string, baseDir string) (*bibliography.Registry, error) {
	l := bibliography.Loader{Logger: c.cfg.logger}
	if c.cache != nil {
		l.Cache = c.cache
	}
	return l.Load(paths, baseDir)
}

// styleFor returns the converter style unless the document names another
// CSL file.
func (c *Converter) styleFor(cslPath, baseDir string) (citation.Style, error) {
	if cslPath == "" || cslPath == c.cfg.cslPath {
		return c.style, nil
	}
	s, err := cslstyle.Load(fileutil.ResolvePath(baseDir, cslPath))
	if err != nil {
		return c.style, fmt.Errorf("%w: %v", ErrStyleUnavailable, err)
	}
	return styleOf(s), nil
}

func styleOf(s cslstyle.Style) citation.Style {
	if s.Numeric() {
		return citation.StyleNumeric
	}
	return citation.StyleAuthorDate
}

// resolveDate expands "date: auto" and "date: auto:FORMAT". On error the
// list is returned unchanged.
func resolveDate(meta metadata.List, now func() time.Time) (metadata.List, error) {
	v, ok := meta.Get("date")
	if !ok {
		return meta, nil
	}
	resolved, err := dateutil.ResolveAuto(v, now())
	if err != nil || resolved == v {
		return meta, err
	}
	out := meta.Clone()
	for i := range out {
		if metadata.NormalizeKey(out[i].Key) == "date" {
			out[i].Value = resolved
			break
		}
	}
	return out, nil
}

// splitPaths splits a metadata list value ("a.bib, b.json" or "a.bib; b.json").
func splitPaths(v string) []string {
	var paths []string
	for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
