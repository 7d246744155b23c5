// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in ~/.config/go-mdcite/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-mdcite/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForBibliography returns hints for a bibliography file that was skipped.
// Unknown extensions get the list of formats content sniffing understands.
func ForBibliography(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib", ".bibtex", ".json", ".yaml", ".yml":
		return format("check the file exists, is readable and under 10 MiB")
	default:
		return format("supported formats: BibTeX (.bib), CSL-JSON (.json), CSL-YAML (.yaml, .yml)")
	}
}

// ForMode returns hints for an unknown processing mode.
func ForMode() string {
	return format("use --mode multimarkdown, gfm or commonmark")
}

// ForCacheLocked returns hints when the bibliography cache is held by
// another process.
func ForCacheLocked() string {
	return formatHints([]string{"another mdcite may be running", "use --no-cache or set MDCITE_CACHE"})
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
