package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mdcite "github.com/alnah/go-mdcite"
	"github.com/alnah/go-mdcite/internal/config"
	"github.com/alnah/go-mdcite/internal/fileutil"
	"github.com/alnah/go-mdcite/internal/hints"
)

// ErrInvalidMeta is returned for a --meta value that is not key=value.
var ErrInvalidMeta = errors.New("invalid --meta value")

// newLogger returns a text logger on w. Verbose enables debug records,
// quiet keeps errors only.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig builds the configuration: defaults, then the config file
// (--config or MDCITE_CONFIG), then MDCITE_* variables. Flags are merged
// by the caller.
func loadConfig(common commonFlags, env *Environment, logger *slog.Logger) (*config.Config, error) {
	name := common.config
	if name == "" {
		name = strings.TrimSpace(env.getenv(config.EnvConfig))
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(userConfigPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	var environ []string
	if env.Environ != nil {
		environ = env.Environ()
	}
	unknown, err := cfg.ApplyEnv(environ)
	for _, name := range unknown {
		logger.Warn("unknown environment variable", "name", name)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// userConfigPaths lists where a named config would live in the user config
// directory.
func userConfigPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-mdcite", name+".yaml")}
}

// mergeDocumentFlags merges document flags into config. CLI values
// override config values.
func mergeDocumentFlags(f documentFlags, cfg *config.Config) {
	if f.mode != "" {
		cfg.Mode = f.mode
	}
	if f.noTransforms {
		cfg.Transforms.Enabled = false
	}
}

// mergeFlags merges convert flags into config. CLI values override config
// values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	mergeDocumentFlags(flags.document, cfg)

	// Citation flags
	if len(flags.citations.bibliography) > 0 {
		cfg.Citations.Bibliography = flags.citations.bibliography
	}
	if flags.citations.csl != "" {
		cfg.Citations.CSL = flags.citations.csl
	}
	if flags.citations.linkCitations {
		cfg.Citations.LinkCitations = true
	}
	if flags.citations.tooltips {
		cfg.Citations.ShowTooltips = true
	}
	if flags.citations.suppress {
		cfg.Citations.SuppressBibliography = true
	}
	if flags.citations.referenceTitle != "" {
		cfg.Citations.ReferenceSectionTitle = flags.citations.referenceTitle
	}

	// Output flags
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.out.standalone {
		cfg.Output.Standalone = true
	}
	if flags.out.rawHTML {
		cfg.Output.RawHTML = true
	}

	// Cache flags
	if flags.cache.path != "" {
		cfg.Cache.Path = flags.cache.path
	}

	// Disable flags
	if flags.citations.disabled {
		cfg.Citations.Enabled = false
	}
}

// absPath makes a command-line or config path absolute so the converter
// does not resolve it against the document directory. "~/" paths and URLs
// are left for later stages.
func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "~/") || fileutil.IsURL(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// absolutizePaths anchors the bibliography and CSL paths of cfg in the
// working directory. Paths named in document metadata stay relative to
// the document.
func absolutizePaths(cfg *config.Config) {
	for i, p := range cfg.Citations.Bibliography {
		cfg.Citations.Bibliography[i] = absPath(p)
	}
	cfg.Citations.CSL = absPath(cfg.Citations.CSL)
}

// resolveCachePath returns the cache file to open, or "" for none.
// Without an explicit path the user cache directory is used.
func resolveCachePath(cfg *config.Config, disabled bool) string {
	if disabled {
		return ""
	}
	if cfg.Cache.Path != "" {
		return cfg.Cache.Path
	}
	return config.DefaultCachePath()
}

// parseMeta turns repeated key=value flags into metadata, in flag order.
func parseMeta(pairs []string) (mdcite.Metadata, error) {
	var meta mdcite.Metadata
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (want key=value)", ErrInvalidMeta, p)
		}
		meta = append(meta, mdcite.MetadataItem{Key: key, Value: strings.TrimSpace(value)})
	}
	return meta, nil
}

// configMetadata returns the config file metadata sorted by key.
func configMetadata(cfg *config.Config) mdcite.Metadata {
	keys := make([]string, 0, len(cfg.Metadata))
	for k := range cfg.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	meta := make(mdcite.Metadata, 0, len(keys))
	for _, k := range keys {
		meta = append(meta, mdcite.MetadataItem{Key: k, Value: cfg.Metadata[k]})
	}
	return meta
}

// converterOptions maps the merged config onto library options.
func converterOptions(cfg *config.Config, cachePath string, logger *slog.Logger, env *Environment) []mdcite.Option {
	opts := []mdcite.Option{
		mdcite.WithMode(cfg.Mode),
		mdcite.WithTransforms(cfg.Transforms.Enabled),
		mdcite.WithCitations(cfg.Citations.Enabled),
		mdcite.WithLinkCitations(cfg.Citations.LinkCitations),
		mdcite.WithTooltips(cfg.Citations.ShowTooltips),
		mdcite.WithSuppressBibliography(cfg.Citations.SuppressBibliography),
		mdcite.WithBibliography(cfg.Citations.Bibliography...),
		mdcite.WithCSL(cfg.Citations.CSL),
		mdcite.WithReferenceSectionTitle(cfg.Citations.ReferenceSectionTitle),
		mdcite.WithStandalone(cfg.Output.Standalone),
		mdcite.WithRawHTML(cfg.Output.RawHTML),
		mdcite.WithMetadata(configMetadata(cfg)),
		mdcite.WithLogger(logger),
	}
	if cachePath != "" {
		opts = append(opts, mdcite.WithCachePath(cachePath))
	}
	if env.Now != nil {
		opts = append(opts, mdcite.WithClock(env.Now))
	}
	return opts
}

// newConverter creates the shared converter and attaches hints to
// construction errors.
func newConverter(opts []mdcite.Option) (*mdcite.Converter, error) {
	conv, err := mdcite.NewConverter(opts...)
	switch {
	case err == nil:
		return conv, nil
	case errors.Is(err, mdcite.ErrInvalidMode):
		return nil, fmt.Errorf("%w%s", err, hints.ForMode())
	case errors.Is(err, mdcite.ErrCacheUnavailable):
		return nil, fmt.Errorf("%w%s", err, hints.ForCacheLocked())
	default:
		return nil, err
	}
}
