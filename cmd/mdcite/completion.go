package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Desc     string   // help text
	Bool     bool     // takes no value
	Values   []string // for enum flags
	FileGlob string   // for file flags, e.g. "*.bib"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
}

// flagCompletionMeta maps flag names to value hints. Flag names, types
// and descriptions come from the FlagSet.
var flagCompletionMeta = map[string]flagDef{
	"mode":          {Values: []string{"multimarkdown", "gfm", "commonmark"}},
	"config":        {FileGlob: "*.yaml"},
	"bibliography":  {FileGlob: "*.bib"},
	"csl":           {FileGlob: "*.csl"},
	"metadata-file": {FileGlob: "*"},
	"cache":         {FileGlob: "*.db"},
}

// extractFlags lists the flags of fs enriched with completion hints.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
			Bool:  f.Value.Type() == "bool",
		}
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			fd.Values = meta.Values
			fd.FileGlob = meta.FileGlob
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	convertFS := newConvertFlagSet(&convertFlags{})

	metadataFS := flag.NewFlagSet("metadata", flag.ContinueOnError)
	mf := &metadataFlags{}
	addCommonFlags(metadataFS, &mf.common)
	addDocumentFlags(metadataFS, &mf.document)
	metadataFS.BoolVar(&mf.body, "body", false, "also print the body after substitution")

	return []commandDef{
		{Name: "convert", Desc: "Convert markdown files to HTML", Flags: extractFlags(convertFS)},
		{Name: "metadata", Desc: "Print merged document metadata", Flags: extractFlags(metadataFS)},
		{Name: "doctor", Desc: "Check configuration and bibliography files", Flags: []flagDef{
			{Long: "json", Desc: "machine-readable output", Bool: true},
			{Long: "config", Short: "c", Desc: "config file name or path", FileGlob: "*.yaml"},
		}},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes a shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	switch shell {
	case ShellBash:
		return generateBash(w, cmds)
	case ShellZsh:
		return generateZsh(w, cmds)
	case ShellFish:
		return generateFish(w, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# bash completion for mdcite\n")
	b.WriteString("_mdcite_completions() {\n")
	b.WriteString("  local cur prev cmd\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("  if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("    return\n  fi\n")
	b.WriteString("  case \"$cmd\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("      case \"$prev\" in\n")
		for _, f := range c.Flags {
			switch {
			case len(f.Values) > 0:
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n",
					f.Long, strings.Join(f.Values, " "))
			case f.FileGlob != "":
				fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", f.Long)
			}
		}
		b.WriteString("      esac\n")
		longs := make([]string, 0, len(c.Flags))
		for _, f := range c.Flags {
			longs = append(longs, "--"+f.Long)
		}
		sort.Strings(longs)
		b.WriteString("      if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(longs, " "))
		b.WriteString("      else\n")
		b.WriteString("        COMPREPLY=($(compgen -f -X '!*.@(md|markdown)' -- \"$cur\") $(compgen -d -- \"$cur\"))\n")
		b.WriteString("      fi\n")
		b.WriteString("      ;;\n")
	}
	b.WriteString("  esac\n}\n")
	b.WriteString("complete -F _mdcite_completions mdcite\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("#compdef mdcite\n\n")
	b.WriteString("_mdcite() {\n")
	b.WriteString("  local -a commands\n  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("  )\n")
	b.WriteString("  if (( CURRENT == 2 )); then\n")
	b.WriteString("    _describe 'command' commands\n    return\n  fi\n")
	b.WriteString("  case \"${words[2]}\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n      _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			action := ""
			switch {
			case f.Bool:
			case len(f.Values) > 0:
				action = fmt.Sprintf(":value:(%s)", strings.Join(f.Values, " "))
			case f.FileGlob != "":
				action = fmt.Sprintf(":file:_files -g \"%s\"", f.FileGlob)
			default:
				action = ":value:"
			}
			fmt.Fprintf(&b, "        '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), action)
		}
		b.WriteString("        '*:markdown:_files -g \"*.(md|markdown)\"'\n      ;;\n")
	}
	b.WriteString("  esac\n}\n\n")
	b.WriteString("compdef _mdcite mdcite\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# fish completion for mdcite\n")
	b.WriteString("function __fish_mdcite_needs_command\n")
	b.WriteString("    test (count (commandline -opc)) -eq 1\nend\n\n")
	b.WriteString("function __fish_mdcite_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\nend\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdcite -f -n __fish_mdcite_needs_command -a %s -d '%s'\n",
			c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mdcite -n '__fish_mdcite_using_command %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch {
			case f.Bool:
			case len(f.Values) > 0:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case f.FileGlob != "":
				b.WriteString(" -r -F")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishEscape(f.Desc))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}
