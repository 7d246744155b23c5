package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcite <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert markdown files to HTML with citations resolved")
	fmt.Fprintln(w, "  metadata    Print the merged metadata of a document")
	fmt.Fprintln(w, "  doctor      Check configuration, bibliography files and cache")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdcite help <command>' for details on a specific command.")
	fmt.Fprintln(w, "A markdown file as first argument runs convert: mdcite paper.md")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcite convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to HTML. Metadata variables are substituted,")
	fmt.Fprintln(w, "citations resolved and a references block inserted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --watch                 Rebuild when inputs or bibliographies change")
	fmt.Fprintln(w, "      --standalone            Write a complete HTML document")
	fmt.Fprintln(w, "      --raw-html              Pass HTML in the source through")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -m, --mode <s>              Dialect: multimarkdown, gfm, commonmark")
	fmt.Fprintln(w, "      --meta <key=value>      Metadata override (repeatable)")
	fmt.Fprintln(w, "      --metadata-file <path>  \"key: value\" file below document metadata")
	fmt.Fprintln(w, "      --no-transforms         Treat [%key:...] as a plain key lookup")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Citations:")
	fmt.Fprintln(w, "  -b, --bibliography <path>   BibTeX, CSL-JSON or CSL-YAML file (repeatable)")
	fmt.Fprintln(w, "      --csl <path>            CSL style (numeric styles render [1])")
	fmt.Fprintln(w, "      --link-citations        Link citations to their reference")
	fmt.Fprintln(w, "      --tooltips              Show the reference as a tooltip")
	fmt.Fprintln(w, "      --suppress-bibliography Do not insert the references block")
	fmt.Fprintln(w, "      --reference-title <s>   Heading above the references block")
	fmt.Fprintln(w, "      --no-citations          Disable citation processing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Cache:")
	fmt.Fprintln(w, "      --cache <path>          Bibliography cache file")
	fmt.Fprintln(w, "      --no-cache              Parse bibliography files on every run")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show timing and debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDCITE_CONFIG, MDCITE_MODE, MDCITE_BIBLIOGRAPHY (path list),")
	fmt.Fprintln(w, "  MDCITE_CSL, MDCITE_CACHE, MDCITE_OUTPUT_DIR")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document metadata keys bibliography, csl, link-citations, show-tooltips,")
	fmt.Fprintln(w, "suppress-bibliography and reference-section-title override these options.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mdcite convert paper.md -b refs.bib")
	fmt.Fprintln(w, "  mdcite convert ./docs/ -o ./html/ --csl ieee.csl --link-citations")
	fmt.Fprintln(w, "  mdcite convert paper.md --meta author=\"Jane Doe\" --standalone --watch")
}

// printMetadataUsage prints usage for the metadata command.
func printMetadataUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcite metadata <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the merged metadata of a document as YAML front matter.")
	fmt.Fprintln(w, "Sources, lowest first: config metadata, --metadata-file, the document, --meta.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -m, --mode <s>              Dialect: multimarkdown, gfm, commonmark")
	fmt.Fprintln(w, "      --meta <key=value>      Metadata override (repeatable)")
	fmt.Fprintln(w, "      --metadata-file <path>  \"key: value\" file below document metadata")
	fmt.Fprintln(w, "      --no-transforms         Treat [%key:...] as a plain key lookup")
	fmt.Fprintln(w, "      --body                  Also print the body after substitution")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcite doctor [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the effective configuration: mode, CSL style, every bibliography")
	fmt.Fprintln(w, "file and the bibliography cache. Exits 1 when errors are found.")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcite completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(mdcite completion bash)\"        # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(mdcite completion zsh)\"         # in ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:  mdcite completion fish > ~/.config/fish/completions/mdcite.fish")
}

// printHelp prints help for a named command, or the main usage.
func printHelp(w io.Writer, args []string) error {
	if len(args) == 0 {
		printUsage(w)
		return nil
	}
	switch args[0] {
	case "convert":
		printConvertUsage(w)
	case "metadata":
		printMetadataUsage(w)
	case "doctor":
		printDoctorUsage(w)
	case "completion":
		printCompletionUsage(w)
	case "version", "help":
		printUsage(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	return nil
}
