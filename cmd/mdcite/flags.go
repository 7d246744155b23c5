package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds flags that shape how one document is read.
type documentFlags struct {
	mode         string
	meta         []string // key=value, repeatable
	metadataFile string
	noTransforms bool
}

// citationFlags holds citation and bibliography flags.
type citationFlags struct {
	bibliography   []string
	csl            string
	linkCitations  bool
	tooltips       bool
	suppress       bool
	referenceTitle string
	disabled       bool
}

// outputFlags holds output shaping flags.
type outputFlags struct {
	standalone bool
	rawHTML    bool
}

// cacheFlags holds bibliography cache flags.
type cacheFlags struct {
	path     string
	disabled bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	workers   int
	watch     bool
	document  documentFlags
	citations citationFlags
	out       outputFlags
	cache     cacheFlags
}

// metadataFlags holds flags for the metadata command.
type metadataFlags struct {
	common   commonFlags
	document documentFlags
	body     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and debug logs")
}

// addDocumentFlags adds document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.mode, "mode", "m", "", "markdown dialect: multimarkdown, gfm, commonmark")
	fs.StringArrayVar(&f.meta, "meta", nil, "metadata key=value (repeatable, overrides the document)")
	fs.StringVar(&f.metadataFile, "metadata-file", "", "key: value file merged below document metadata")
	fs.BoolVar(&f.noTransforms, "no-transforms", false, "treat [%key:...] as a plain key lookup")
}

// addCitationFlags adds citation flags to a FlagSet.
func addCitationFlags(fs *flag.FlagSet, f *citationFlags) {
	fs.StringArrayVarP(&f.bibliography, "bibliography", "b", nil, "bibliography file: .bib, .json, .yaml (repeatable)")
	fs.StringVar(&f.csl, "csl", "", "CSL style file")
	fs.BoolVar(&f.linkCitations, "link-citations", false, "link citations to their reference")
	fs.BoolVar(&f.tooltips, "tooltips", false, "add the formatted reference as a tooltip")
	fs.BoolVar(&f.suppress, "suppress-bibliography", false, "do not insert the references block")
	fs.StringVar(&f.referenceTitle, "reference-title", "", "heading above the references block")
	fs.BoolVar(&f.disabled, "no-citations", false, "disable citation processing")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.standalone, "standalone", false, "write a complete HTML document")
	fs.BoolVar(&f.rawHTML, "raw-html", false, "pass HTML in the source through")
}

// addCacheFlags adds cache flags to a FlagSet.
func addCacheFlags(fs *flag.FlagSet, f *cacheFlags) {
	fs.StringVar(&f.path, "cache", "", "bibliography cache file (default: user cache dir)")
	fs.BoolVar(&f.disabled, "no-cache", false, "parse bibliography files on every run")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.watch, "watch", false, "rebuild when inputs or bibliographies change")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addCitationFlags(fs, &f.citations)
	addOutputFlags(fs, &f.out)
	addCacheFlags(fs, &f.cache)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseMetadataFlags parses metadata command flags and returns positional args.
func parseMetadataFlags(args []string) (*metadataFlags, []string, error) {
	fs := flag.NewFlagSet("metadata", flag.ContinueOnError)
	f := &metadataFlags{}

	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	fs.BoolVar(&f.body, "body", false, "also print the body after substitution")

	fs.Usage = func() { printMetadataUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
