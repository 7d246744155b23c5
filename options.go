package mdcite

import (
	"log/slog"
	"time"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	mode                 string
	transforms           bool
	citations            bool
	linkCitations        bool
	showTooltips         bool
	suppressBibliography bool
	bibliography         []string
	cslPath              string
	referenceTitle       string
	cachePath            string
	rawHTML              bool
	standalone           bool
	metadata             Metadata
	logger               *slog.Logger
	now                  func() time.Time
}

func defaultConfig() converterConfig {
	return converterConfig{
		transforms: true,
		citations:  true,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
}

// WithMode selects the Markdown dialect: "multimarkdown" (default), "gfm"
// or "commonmark". Citations are never parsed in commonmark mode.
func WithMode(mode string) Option {
	return func(c *Converter) {
		c.cfg.mode = mode
	}
}

// WithTransforms toggles [%key:transform] chains. When off, the whole
// text between "[%" and "]" is looked up as a key.
func WithTransforms(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.transforms = enabled
	}
}

// WithCitations toggles citation parsing.
func WithCitations(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.citations = enabled
	}
}

// WithLinkCitations makes resolved citations link to their reference.
func WithLinkCitations(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.linkCitations = enabled
	}
}

// WithTooltips adds the formatted reference as a title attribute.
func WithTooltips(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.showTooltips = enabled
	}
}

// WithSuppressBibliography disables the generated references block.
func WithSuppressBibliography(suppress bool) Option {
	return func(c *Converter) {
		c.cfg.suppressBibliography = suppress
	}
}

// WithBibliography adds bibliography files (BibTeX, CSL-JSON, CSL-YAML).
// A document's own "bibliography" metadata replaces them.
func WithBibliography(paths ...string) Option {
	return func(c *Converter) {
		c.cfg.bibliography = append(c.cfg.bibliography, paths...)
	}
}

// WithCSL sets the CSL style file that picks author-date or numeric
// citations.
func WithCSL(path string) Option {
	return func(c *Converter) {
		c.cfg.cslPath = path
	}
}

// WithReferenceSectionTitle adds a heading above the references block.
func WithReferenceSectionTitle(title string) Option {
	return func(c *Converter) {
		c.cfg.referenceTitle = title
	}
}

// WithCachePath stores parsed bibliography files in a cache database at
// path. The Converter holds the file open until Close.
func WithCachePath(path string) Option {
	return func(c *Converter) {
		c.cfg.cachePath = path
	}
}

// WithRawHTML passes HTML in the Markdown source through to the output.
func WithRawHTML(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.rawHTML = enabled
	}
}

// WithStandalone wraps the output in a complete HTML document titled after
// the "title" metadata.
func WithStandalone(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.standalone = enabled
	}
}

// WithMetadata sets default metadata, overridden by every other source.
func WithMetadata(m Metadata) Option {
	return func(c *Converter) {
		c.cfg.metadata = append(Metadata(nil), m...)
	}
}

// WithLogger sets the logger for recoverable problems. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("mdcite: WithLogger logger must not be nil")
	}
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// WithClock sets the time source for "date: auto". Panics if now is nil.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("mdcite: WithClock function must not be nil")
	}
	return func(c *Converter) {
		c.cfg.now = now
	}
}
