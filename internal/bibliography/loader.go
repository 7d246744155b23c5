package bibliography

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdcite/internal/fileutil"
)

// Format is a bibliography file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatBibTeX
	FormatCSLJSON
	FormatCSLYAML
)

func (f Format) String() string {
	switch f {
	case FormatBibTeX:
		return "bibtex"
	case FormatCSLJSON:
		return "csl-json"
	case FormatCSLYAML:
		return "csl-yaml"
	default:
		return "unknown"
	}
}

// Cache stores parsed entries keyed by file content and format.
type Cache interface {
	Lookup(format Format, data []byte) ([]*Entry, bool)
	Store(format Format, data []byte, entries []*Entry) error
}

// Loader reads bibliography files into a Registry.
type Loader struct {
	// Cache, when set, skips parsing for content seen before.
	Cache Cache
	// Logger receives per-file diagnostics. Nil discards them.
	Logger *slog.Logger
	// MaxFileSize overrides fileutil.MaxBibliographySize when positive.
	MaxFileSize int64
}

// Load is Loader.Load with default settings.
func Load(paths []string, baseDir string) (*Registry, error) {
	return Loader{}.Load(paths, baseDir)
}

// Load reads every path (relative ones against baseDir) and merges the
// entries, first id wins. The registry is never nil; the error joins the
// problems of every skipped file and does not invalidate the registry.
func (l Loader) Load(paths []string, baseDir string) (*Registry, error) {
	reg := NewRegistry()
	var errs []error
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		entries, err := l.loadFile(fileutil.ResolvePath(baseDir, p))
		if err != nil {
			l.log().Warn("skipping bibliography file", "path", p, "error", err)
			errs = append(errs, err)
			continue
		}
		added := 0
		for _, e := range entries {
			if reg.Add(e) {
				added++
			}
		}
		l.log().Debug("loaded bibliography file", "path", p, "entries", len(entries), "added", added)
	}
	return reg, errors.Join(errs...)
}

func (l Loader) loadFile(path string) ([]*Entry, error) {
	limit := l.MaxFileSize
	if limit <= 0 {
		limit = fileutil.MaxBibliographySize
	}
	data, err := fileutil.ReadFileLimited(path, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileUnavailable, path, err)
	}

	format := DetectFormat(path, data)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if l.Cache != nil {
		if entries, ok := l.Cache.Lookup(format, data); ok {
			return entries, nil
		}
	}

	entries, err := Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if l.Cache != nil {
		if err := l.Cache.Store(format, data, entries); err != nil {
			l.log().Debug("bibliography cache store failed", "path", path, "error", err)
		}
	}
	return entries, nil
}

func (l Loader) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Parse decodes data in the given format.
func Parse(format Format, data []byte) ([]*Entry, error) {
	switch format {
	case FormatBibTeX:
		return ParseBibTeX(string(data)), nil
	case FormatCSLJSON:
		return ParseCSLJSON(data)
	case FormatCSLYAML:
		return ParseCSLYAML(data), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// DetectFormat picks the format from the file extension, then from the
// content for unknown extensions.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib", ".bibtex":
		return FormatBibTeX
	case ".json":
		return FormatCSLJSON
	case ".yaml", ".yml":
		return FormatCSLYAML
	}
	return sniffFormat(data)
}

func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	switch trimmed[0] {
	case '@', '%':
		return FormatBibTeX
	case '[', '{':
		return FormatCSLJSON
	}
	if bytes.HasPrefix(trimmed, []byte("---")) ||
		bytes.HasPrefix(trimmed, []byte("references:")) ||
		bytes.HasPrefix(trimmed, []byte("- id:")) {
		return FormatCSLYAML
	}
	if bibtexStart.Match(trimmed) {
		return FormatBibTeX
	}
	return FormatUnknown
}
