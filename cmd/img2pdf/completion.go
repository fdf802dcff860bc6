package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/fileutil"
	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --output
	Short  string   // -o (empty if none)
	Type   flagType // completion type
	Desc   string   // help text
	Values []string // for enum flags
	Exts   []string // for file flags, without the dot
}

// commandDef describes a command for completion.
type commandDef struct {
	Name     string
	Desc     string
	Flags    []flagDef
	Args     []string // file extensions accepted as arguments, without the dot
	ArgWords []string // fixed words accepted as arguments
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values []string // enum values
	Exts   []string // file extensions
	IsDir  bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"page-size":   {Values: img2pdf.PageSizes()},
	"orientation": {Values: []string{img2pdf.OrientationPortrait, img2pdf.OrientationLandscape}},
	"quality":     {Values: []string{string(img2pdf.QualityHigh), string(img2pdf.QualityMedium), string(img2pdf.QualityLow)}},

	// File flags
	"config": {Exts: []string{"yaml", "yml"}},

	// Directory flags
	"output": {IsDir: true},
}

// imageExts returns the image extensions without their leading dot.
func imageExts() []string {
	exts := fileutil.ImageExtensions()
	for i, e := range exts {
		exts[i] = strings.TrimPrefix(e, ".")
	}
	return exts
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case len(meta.Exts) > 0:
				fd.Type = flagFile
				fd.Exts = meta.Exts
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the FlagSets the commands parse with.
func getCommands() []commandDef {
	images := imageExts()
	return []commandDef{
		{
			Name:  "convert",
			Desc:  "Convert images to a multi-page PDF",
			Flags: extractFlagsFromFlagSet(convertFlagSet(io.Discard, &convertFlags{})),
			Args:  images,
		},
		{
			Name:  "preview",
			Desc:  "Render PDF pages to PNG files",
			Flags: extractFlagsFromFlagSet(previewFlagSet(io.Discard, &previewFlags{})),
			Args:  append([]string{"pdf"}, images...),
		},
		{
			Name:  "info",
			Desc:  "Show PDF pages and metadata",
			Flags: extractFlagsFromFlagSet(infoFlagSet(io.Discard, &infoFlags{})),
			Args:  []string{"pdf"},
		},
		{
			Name:  "shell",
			Desc:  "Build a document interactively",
			Flags: extractFlagsFromFlagSet(shellFlagSet(io.Discard, &shellFlags{})),
			Args:  images,
		},
		{
			Name:  "doctor",
			Desc:  "Check that rendering works on this system",
			Flags: extractFlagsFromFlagSet(doctorFlagSet(io.Discard, &doctorFlags{})),
		},
		{
			Name:     "completion",
			Desc:     "Generate shell completion script",
			ArgWords: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)},
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name:     "help",
			Desc:     "Show help for a command",
			ArgWords: commands,
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	switch shell {
	case ShellBash:
		return generateBash(w, cmds)
	case ShellZsh:
		return generateZsh(w, cmds)
	case ShellFish:
		return generateFish(w, cmds)
	case ShellPowerShell:
		return generatePowerShell(w, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		if errors.Is(err, ErrUnsupportedShell) {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return err
	}
	return nil
}

// script collects output and keeps the first write error.
type script struct {
	w   io.Writer
	err error
}

func (s *script) line(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format+"\n", args...)
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer, cmds []commandDef) error {
	s := &script{w: w}
	s.line("# bash completion for img2pdf")
	s.line("_img2pdf_completions() {")
	s.line("    local cur prev cmd")
	s.line("    COMPREPLY=()")
	s.line(`    cur="${COMP_WORDS[COMP_CWORD]}"`)
	s.line(`    prev="${COMP_WORDS[COMP_CWORD-1]}"`)
	s.line(`    cmd="${COMP_WORDS[1]}"`)
	s.line("")
	s.line("    if [[ ${COMP_CWORD} -eq 1 ]]; then")
	s.line(`        COMPREPLY=( $(compgen -W "%s" -- "${cur}") $(compgen -d -- "${cur}") )`, commandNames(cmds))
	s.line("        return 0")
	s.line("    fi")
	s.line("")
	s.line(`    case "${cmd}" in`)
	for _, c := range cmds {
		s.line("    %s)", c.Name)
		bashCommand(s, c)
		s.line("        ;;")
	}
	s.line("    esac")
	s.line("}")
	s.line("complete -o filenames -F _img2pdf_completions img2pdf")
	return s.err
}

func bashCommand(s *script, c commandDef) {
	var words []string
	hasValues := false
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
		if f.Type != flagBool {
			hasValues = true
		}
	}

	if hasValues {
		s.line(`        case "${prev}" in`)
		for _, f := range c.Flags {
			if f.Type == flagBool {
				continue
			}
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				s.line(`        %s) COMPREPLY=( $(compgen -W "%s" -- "${cur}") ); return 0 ;;`, pattern, strings.Join(f.Values, " "))
			case flagDir:
				s.line(`        %s) COMPREPLY=( $(compgen -d -- "${cur}") ); return 0 ;;`, pattern)
			case flagFile:
				s.line(`        %s) COMPREPLY=( %s ); return 0 ;;`, pattern, bashFiles(f.Exts))
			default:
				s.line("        %s) return 0 ;;", pattern)
			}
		}
		s.line("        esac")
	}

	if len(words) > 0 {
		s.line(`        if [[ ${cur} == -* ]]; then`)
		s.line(`            COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(words, " "))
		s.line("            return 0")
		s.line("        fi")
	}
	switch {
	case len(c.ArgWords) > 0:
		s.line(`        COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(c.ArgWords, " "))
	case len(c.Args) > 0:
		s.line("        COMPREPLY=( %s $(compgen -d -- \"${cur}\") )", bashFiles(c.Args))
	}
}

// bashFiles completes files whose extension is one of exts, in any case.
func bashFiles(exts []string) string {
	parts := make([]string, len(exts))
	for i, e := range exts {
		parts[i] = fmt.Sprintf(`$(compgen -f -X '!*.%s' -- "${cur}")`, e)
	}
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer, cmds []commandDef) error {
	s := &script{w: w}
	s.line("#compdef img2pdf")
	s.line("")
	s.line("_img2pdf() {")
	s.line("    local -a commands")
	s.line("    commands=(")
	for _, c := range cmds {
		s.line("        '%s:%s'", c.Name, zshEscape(c.Desc))
	}
	s.line("    )")
	s.line("")
	s.line("    if (( CURRENT == 2 )); then")
	s.line("        _describe 'command' commands")
	s.line("        _files -/")
	s.line("        return")
	s.line("    fi")
	s.line("")
	s.line(`    case "$words[2]" in`)
	for _, c := range cmds {
		s.line("    %s)", c.Name)
		s.line("        _arguments -s \\")
		for _, f := range c.Flags {
			s.line("            %s \\", zshFlag(f))
		}
		switch {
		case len(c.ArgWords) > 0:
			s.line("            '*:argument:(%s)'", strings.Join(c.ArgWords, " "))
		case len(c.Args) > 0:
			s.line(`            '*:file:_files -g "*.(%s)(-.)" -/'`, strings.Join(c.Args, "|"))
		default:
			s.line("            '*: :'")
		}
		s.line("        ;;")
	}
	s.line("    esac")
	s.line("}")
	s.line("")
	s.line("compdef _img2pdf img2pdf")
	return s.err
}

func zshFlag(f flagDef) string {
	spec := "[" + zshEscape(f.Desc) + "]"
	switch f.Type {
	case flagBool:
	case flagEnum:
		spec += ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagDir:
		spec += ":directory:_files -/"
	case flagFile:
		spec += `:file:_files -g "*.(` + strings.Join(f.Exts, "|") + `)"`
	default:
		spec += ":" + f.Long + ": "
	}
	if f.Short == "" {
		return "'--" + f.Long + spec + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s'", f.Short, f.Long, f.Short, f.Long, spec)
}

// zshEscape makes s safe inside a single-quoted _arguments description.
func zshEscape(s string) string {
	return strings.NewReplacer(`'`, `'\''`, "[", `\[`, "]", `\]`, ":", `\:`).Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer, cmds []commandDef) error {
	s := &script{w: w}
	s.line("# fish completion for img2pdf")
	s.line("function __fish_img2pdf_needs_command")
	s.line("    set -l cmd (commandline -opc)")
	s.line("    test (count $cmd) -eq 1")
	s.line("end")
	s.line("")
	s.line("function __fish_img2pdf_using_command")
	s.line("    set -l cmd (commandline -opc)")
	s.line("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]")
	s.line("end")
	s.line("")
	for _, c := range cmds {
		s.line("complete -c img2pdf -n __fish_img2pdf_needs_command -a %s -d '%s'", c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_img2pdf_using_command %s'", c.Name)
		for _, f := range c.Flags {
			opt := "-l " + f.Long
			if f.Short != "" {
				opt = "-s " + f.Short + " " + opt
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				opt += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagDir:
				opt += " -x -a '(__fish_complete_directories)'"
			case flagFile:
				opt += " -r -F"
			default:
				opt += " -x"
			}
			s.line("complete -c img2pdf -n %s %s -d '%s'", cond, opt, fishEscape(f.Desc))
		}
		if len(c.ArgWords) > 0 {
			s.line("complete -c img2pdf -n %s -f -a '%s'", cond, strings.Join(c.ArgWords, " "))
		}
	}
	return s.err
}

func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(w io.Writer, cmds []commandDef) error {
	s := &script{w: w}
	s.line("# PowerShell completion for img2pdf")
	s.line("Register-ArgumentCompleter -Native -CommandName img2pdf -ScriptBlock {")
	s.line("    param($wordToComplete, $commandAst, $cursorPosition)")
	s.line("")
	s.line("    $commands = [ordered]@{")
	for _, c := range cmds {
		s.line("        '%s' = '%s'", c.Name, psEscape(c.Desc))
	}
	s.line("    }")
	s.line("    $flags = @{")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, "'--"+f.Long+"'")
			if f.Short != "" {
				words = append(words, "'-"+f.Short+"'")
			}
		}
		words = append(words, psQuote(c.ArgWords)...)
		s.line("        '%s' = @(%s)", c.Name, strings.Join(words, ", "))
	}
	s.line("    }")
	s.line("    $values = @{")
	seen := make(map[string]bool)
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			s.line("        '--%s' = @(%s)", f.Long, strings.Join(psQuote(f.Values), ", "))
			if f.Short != "" {
				s.line("        '-%s' = @(%s)", f.Short, strings.Join(psQuote(f.Values), ", "))
			}
		}
	}
	s.line("    }")
	s.line("")
	s.line("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })")
	s.line("    $position = if ($wordToComplete) { $elements.Count - 1 } else { $elements.Count }")
	s.line("    if ($position -le 1) {")
	s.line("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {")
	s.line("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)")
	s.line("        }")
	s.line("        return")
	s.line("    }")
	s.line("")
	s.line("    $command = $elements[1]")
	s.line("    $prev = $elements[$position - 1]")
	s.line("    $candidates = if ($values.ContainsKey($prev)) { $values[$prev] } elseif ($flags.ContainsKey($command)) { $flags[$command] } else { @() }")
	s.line("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {")
	s.line("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)")
	s.line("    }")
	s.line("}")
	return s.err
}

func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func psQuote(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = "'" + psEscape(w) + "'"
	}
	return out
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(img2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(img2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    img2pdf completion fish > ~/.config/fish/completions/img2pdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    img2pdf completion powershell | Out-String | Invoke-Expression")
}
