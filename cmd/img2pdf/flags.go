package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// marginUnset detects if --margin was explicitly set.
// Since 0 is a valid margin, we use an out-of-range sentinel.
const marginUnset = -1.0

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// imageFlags holds image placement flags.
type imageFlags struct {
	quality string
	fit     bool
	noFit   bool
}

// documentFlags holds document metadata flags.
type documentFlags struct {
	title       string
	author      string
	subject     string
	pageNumbers bool
}

// buildFlags holds the flags of every command that assembles a document.
type buildFlags struct {
	page     pageFlags
	image    imageFlags
	document documentFlags
	timeout  string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	build   buildFlags
	output  string
	workers int
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common  commonFlags
	build   buildFlags
	output  string
	workers int
	pages   string
	scale   float64
}

// infoFlags holds all flags for the info command.
type infoFlags struct {
	common commonFlags
	text   bool
}

// shellFlags holds all flags for the shell command.
type shellFlags struct {
	common commonFlags
	build  buildFlags
	output string
	scale  float64
}

// doctorFlags holds all flags for the doctor command.
type doctorFlags struct {
	json bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a3, a4, a5, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", marginUnset, "page margin in millimeters (0-50)")
}

// addImageFlags adds image placement flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.StringVar(&f.quality, "quality", "", "image quality: high, medium, low")
	fs.BoolVar(&f.fit, "fit", false, "scale images to fit the printable area")
	fs.BoolVar(&f.noFit, "no-fit", false, "center images at their natural size")
}

// addDocumentFlags adds document metadata flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "document title (also names the file)")
	fs.StringVar(&f.author, "author", "", "document author")
	fs.StringVar(&f.subject, "subject", "", "document subject")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "print \"Page N of M\" on each page")
}

// addBuildFlags adds the document assembly flag groups to a FlagSet.
func addBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	addPageFlags(fs, &f.page)
	addImageFlags(fs, &f.image)
	addDocumentFlags(fs, &f.document)
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to w on -h.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs over args and wraps parse failures as usage errors.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w (run 'img2pdf help %s')", ErrUsage, err, fs.Name())
	}
	return fs.Args(), nil
}

// The *FlagSet constructors register every flag of a command. Parsing and
// completion both build on them, so the two cannot drift apart.

func convertFlagSet(w io.Writer, f *convertFlags) *flag.FlagSet {
	fs := newFlagSet("convert", w, printConvertUsage)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel file reads (0 = one at a time)")

	addCommonFlags(fs, &f.common)
	addBuildFlags(fs, &f.build)
	return fs
}

func previewFlagSet(w io.Writer, f *previewFlags) *flag.FlagSet {
	fs := newFlagSet("preview", w, printPreviewUsage)

	fs.StringVarP(&f.output, "output", "o", "", "directory for rendered pages")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel render workers (0 = auto)")
	fs.StringVar(&f.pages, "pages", "", "pages to render, e.g. 1,3-5 (default: all)")
	fs.Float64VarP(&f.scale, "scale", "s", 0, "render scale over 72 DPI (default: 1.5)")

	addCommonFlags(fs, &f.common)
	addBuildFlags(fs, &f.build)
	return fs
}

func infoFlagSet(w io.Writer, f *infoFlags) *flag.FlagSet {
	fs := newFlagSet("info", w, printInfoUsage)

	fs.BoolVar(&f.text, "text", false, "print the text found on each page")
	addCommonFlags(fs, &f.common)
	return fs
}

func shellFlagSet(w io.Writer, f *shellFlags) *flag.FlagSet {
	fs := newFlagSet("shell", w, printShellUsage)

	fs.StringVarP(&f.output, "output", "o", "", "directory used by save and render")
	fs.Float64VarP(&f.scale, "scale", "s", 0, "preview scale over 72 DPI (default: 1.5)")

	addCommonFlags(fs, &f.common)
	addBuildFlags(fs, &f.build)
	return fs
}

func doctorFlagSet(w io.Writer, f *doctorFlags) *flag.FlagSet {
	fs := newFlagSet("doctor", w, printDoctorUsage)

	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	rest, err := parse(convertFlagSet(w, f), args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	rest, err := parse(previewFlagSet(w, f), args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseInfoFlags parses info command flags and returns positional args.
func parseInfoFlags(args []string, w io.Writer) (*infoFlags, []string, error) {
	f := &infoFlags{}
	rest, err := parse(infoFlagSet(w, f), args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseShellFlags parses shell command flags and returns positional args.
func parseShellFlags(args []string, w io.Writer) (*shellFlags, []string, error) {
	f := &shellFlags{}
	rest, err := parse(shellFlagSet(w, f), args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseDoctorFlags parses doctor command flags. Positional args are rejected.
func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	rest, err := parse(doctorFlagSet(w, f), args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: doctor takes no arguments, got %q", ErrUsage, rest[0])
	}
	return f, nil
}
