package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	mdcite "github.com/alnah/go-mdcite"
	"github.com/alnah/go-mdcite/internal/bibcache"
	"github.com/alnah/go-mdcite/internal/config"
	"github.com/alnah/go-mdcite/internal/cslstyle"
	"github.com/alnah/go-mdcite/internal/fileutil"
	"github.com/alnah/go-mdcite/internal/hints"
	"github.com/alnah/go-mdcite/internal/pipeline"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status       string             `json:"status"` // "ready", "warnings", "errors"
	Mode         string             `json:"mode"`
	Bibliography []bibliographyInfo `json:"bibliography"`
	Style        styleInfo          `json:"style"`
	Cache        cacheInfo          `json:"cache"`
	System       systemInfo         `json:"system"`
	Warnings     []string           `json:"warnings,omitempty"`
	Errors       []string           `json:"errors,omitempty"`
}

// bibliographyInfo holds the outcome of loading one bibliography file.
type bibliographyInfo struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	OK      bool   `json:"ok"`
}

// styleInfo holds CSL style detection results.
type styleInfo struct {
	Path   string `json:"path,omitempty"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
}

// cacheInfo holds bibliography cache results.
type cacheInfo struct {
	Path    string `json:"path,omitempty"`
	Usable  bool   `json:"usable"`
	Entries int    `json:"entries"`
}

// systemInfo holds platform details.
type systemInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	GOMAXPROCS int    `json:"gomaxprocs"`
	Workers    int    `json:"workers"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	common := commonFlags{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			jsonOutput = true
		case "--config", "-c":
			if i+1 < len(args) {
				common.config = args[i+1]
				i++
			}
		}
	}

	result := runDoctor(common, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks against the effective
// configuration.
func runDoctor(common commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
			Workers:    mdcite.ResolveWorkers(0),
		},
	}

	cfg, err := loadConfig(common, env, slog.New(slog.DiscardHandler))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		cfg = config.DefaultConfig()
	}

	checkMode(result, cfg)
	checkBibliography(result, cfg)
	checkStyle(result, cfg)
	checkCache(result, cfg)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkMode validates the configured Markdown dialect.
func checkMode(result *doctorResult, cfg *config.Config) {
	mode, err := pipeline.ParseMode(cfg.Mode)
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hints.ForMode())
		return
	}
	result.Mode = mode.String()
	if !mode.CitationsAllowed() && cfg.Citations.Enabled {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("citations are never processed in %s mode", mode))
	}
}

// checkBibliography loads every configured bibliography file on its own.
func checkBibliography(result *doctorResult, cfg *config.Config) {
	if len(cfg.Citations.Bibliography) == 0 && cfg.Citations.Enabled {
		result.Warnings = append(result.Warnings,
			"no bibliography configured; documents must name one in their metadata")
	}
	for _, p := range cfg.Citations.Bibliography {
		info := bibliographyInfo{Path: p}
		if fileutil.IsURL(p) {
			result.Errors = append(result.Errors, fmt.Sprintf("remote bibliography not supported: %s", p))
			result.Bibliography = append(result.Bibliography, info)
			continue
		}
		bib, err := mdcite.LoadBibliography([]string{p}, "")
		info.Entries = bib.Len()
		if err != nil {
			result.Errors = append(result.Errors, err.Error()+hints.ForBibliography(p))
		} else {
			info.OK = true
			if info.Entries == 0 {
				result.Warnings = append(result.Warnings, fmt.Sprintf("no entries found in %s", p))
			}
		}
		result.Bibliography = append(result.Bibliography, info)
	}
}

// checkStyle reads the configured CSL style.
func checkStyle(result *doctorResult, cfg *config.Config) {
	if cfg.Citations.CSL == "" {
		return
	}
	result.Style.Path = cfg.Citations.CSL
	s, err := cslstyle.Load(cfg.Citations.CSL)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Style.Title = s.Title
	result.Style.Format = s.Format
	if s.Format == "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s declares no citation-format; author-date is used", cfg.Citations.CSL))
	}
}

// checkCache opens the bibliography cache the CLI would use.
func checkCache(result *doctorResult, cfg *config.Config) {
	path := resolveCachePath(cfg, false)
	result.Cache.Path = path
	if path == "" {
		result.Warnings = append(result.Warnings, "no user cache directory; bibliography files are parsed on every run")
		return
	}
	store, err := bibcache.Open(path, nil)
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hints.ForCacheLocked())
		return
	}
	defer func() { _ = store.Close() }()
	result.Cache.Usable = true
	result.Cache.Entries = store.Len()
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdcite doctor")
	fmt.Fprintln(w)

	// Processing section
	fmt.Fprintln(w, "Processing")
	if r.Mode != "" {
		fmt.Fprintf(w, "  [OK] Mode: %s\n", r.Mode)
	} else {
		fmt.Fprintln(w, "  [ERROR] Mode: invalid")
	}
	if r.Style.Path != "" {
		if r.Style.Title != "" || r.Style.Format != "" {
			fmt.Fprintf(w, "  [OK] Style: %s (%s)\n", r.Style.Title, orDefault(r.Style.Format, "author-date"))
		} else {
			fmt.Fprintf(w, "  [ERROR] Style: %s unreadable\n", r.Style.Path)
		}
	}
	fmt.Fprintln(w)

	// Bibliography section
	if len(r.Bibliography) > 0 {
		fmt.Fprintln(w, "Bibliography")
		for _, b := range r.Bibliography {
			if b.OK {
				fmt.Fprintf(w, "  [OK] %s: %d entries\n", b.Path, b.Entries)
			} else {
				fmt.Fprintf(w, "  [ERROR] %s\n", b.Path)
			}
		}
		fmt.Fprintln(w)
	}

	// Cache section
	fmt.Fprintln(w, "Cache")
	switch {
	case r.Cache.Usable:
		fmt.Fprintf(w, "  [OK] %s (%d files)\n", r.Cache.Path, r.Cache.Entries)
	case r.Cache.Path == "":
		fmt.Fprintln(w, "  [WARN] disabled")
	default:
		fmt.Fprintf(w, "  [ERROR] %s not usable\n", r.Cache.Path)
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] Workers: %d (GOMAXPROCS %d)\n", r.System.Workers, r.System.GOMAXPROCS)
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
