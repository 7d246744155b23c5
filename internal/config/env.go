package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Environment variables read by ApplyEnv. EnvConfig is consumed by the CLI
// to pick the config file itself.
const (
	EnvPrefix       = "MDCITE_"
	EnvConfig       = "MDCITE_CONFIG"
	EnvMode         = "MDCITE_MODE"
	EnvBibliography = "MDCITE_BIBLIOGRAPHY"
	EnvCSL          = "MDCITE_CSL"
	EnvCache        = "MDCITE_CACHE"
	EnvOutputDir    = "MDCITE_OUTPUT_DIR"
)

var knownEnv = map[string]bool{
	EnvConfig:       true,
	EnvMode:         true,
	EnvBibliography: true,
	EnvCSL:          true,
	EnvCache:        true,
	EnvOutputDir:    true,
}

// ApplyEnv overlays MDCITE_* variables from environ (KEY=VALUE pairs, as
// returned by os.Environ) onto c. MDCITE_BIBLIOGRAPHY holds a
// list separated by the OS path list separator. It returns the names of
// unrecognized MDCITE_* variables, sorted, so callers can warn about them.
func (c *Config) ApplyEnv(environ []string) ([]string, error) {
	var unknown []string
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if !knownEnv[name] {
			unknown = append(unknown, name)
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch name {
		case EnvMode:
			c.Mode = value
		case EnvBibliography:
			c.Citations.Bibliography = splitList(value)
		case EnvCSL:
			c.Citations.CSL = value
		case EnvCache:
			c.Cache.Path = value
		case EnvOutputDir:
			c.Output.DefaultDir = value
		}
	}
	sort.Strings(unknown)
	if err := c.Validate(); err != nil {
		return unknown, fmt.Errorf("environment: %w", err)
	}
	return unknown, nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultCachePath returns the cache file under the user cache directory,
// or "" when the platform has none.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "go-mdcite", "bibliography.db")
}
