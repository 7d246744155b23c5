package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdcite/internal/fileutil"
	"github.com/alnah/go-mdcite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxTitleLength    = 200
	MaxModeLength     = 20
	MaxMetaKeyLength  = 100
	MaxMetaValLength  = 2000
	MaxBibliographies = 64
	MaxMetadataItems  = 256
)

// Config holds all configuration for document conversion.
type Config struct {
	Mode       string            `yaml:"mode"`
	Transforms TransformsConfig  `yaml:"transforms"`
	Metadata   map[string]string `yaml:"metadata"`
	Citations  CitationsConfig   `yaml:"citations"`
	Output     OutputConfig      `yaml:"output"`
	Cache      CacheConfig       `yaml:"cache"`
}

// TransformsConfig toggles [%key:transform] chains.
type TransformsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CitationsConfig defines citation and bibliography options.
type CitationsConfig struct {
	Enabled               bool     `yaml:"enabled"`
	LinkCitations         bool     `yaml:"linkCitations"`
	ShowTooltips          bool     `yaml:"showTooltips"`
	SuppressBibliography  bool     `yaml:"suppressBibliography"`
	Bibliography          []string `yaml:"bibliography"`
	CSL                   string   `yaml:"csl"`
	ReferenceSectionTitle string   `yaml:"referenceSectionTitle"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the source
	Standalone bool   `yaml:"standalone"` // Wrap output in a full HTML document
	RawHTML    bool   `yaml:"rawHTML"`    // Pass HTML in the source through
}

// CacheConfig locates the parsed-bibliography cache.
type CacheConfig struct {
	Path string `yaml:"path"` // Empty = no cache
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("mode", c.Mode, MaxModeLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Mode) {
	case "", "multimarkdown", "mmd", "gfm", "github", "commonmark", "cmark":
	default:
		return fmt.Errorf("%w: mode %q (must be multimarkdown, gfm, or commonmark)", ErrInvalidValue, c.Mode)
	}

	if len(c.Metadata) > MaxMetadataItems {
		return fmt.Errorf("%w: metadata has %d keys (max %d)", ErrInvalidValue, len(c.Metadata), MaxMetadataItems)
	}
	for k, v := range c.Metadata {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: metadata key cannot be empty", ErrInvalidValue)
		}
		if err := validateFieldLength("metadata key", k, MaxMetaKeyLength); err != nil {
			return err
		}
		if err := validateFieldLength("metadata."+k, v, MaxMetaValLength); err != nil {
			return err
		}
	}

	if len(c.Citations.Bibliography) > MaxBibliographies {
		return fmt.Errorf("%w: citations.bibliography has %d files (max %d)",
			ErrInvalidValue, len(c.Citations.Bibliography), MaxBibliographies)
	}
	for i, p := range c.Citations.Bibliography {
		if err := validateFieldLength(fmt.Sprintf("citations.bibliography[%d]", i), p, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("citations.csl", c.Citations.CSL, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("citations.referenceSectionTitle", c.Citations.ReferenceSectionTitle, MaxTitleLength); err != nil {
		return err
	}

	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	return validateFieldLength("cache.path", c.Cache.Path, MaxPathLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given:
// multimarkdown mode with transforms and citations on.
func DefaultConfig() *Config {
	return &Config{
		Mode:       "multimarkdown",
		Transforms: TransformsConfig{Enabled: true},
		Citations:  CitationsConfig{Enabled: true},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdcite/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdcite", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
