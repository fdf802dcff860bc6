package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
	"github.com/alnah/go-img2pdf/internal/hints"
	"github.com/alnah/go-img2pdf/internal/yamlutil"
)

// Shell constants.
const (
	shellPrompt = "img2pdf> "

	// shellUploadWorkers reads added files concurrently; pages follow
	// read completion order and can be rearranged with move.
	shellUploadWorkers = 4

	// thumbnailSide bounds the images written by show.
	thumbnailSide = 256

	// clearValue empties a text setting: "set author -".
	clearValue = "-"
)

// shell is an interactive session driven by line commands.
type shell struct {
	ctx     context.Context
	env     *Environment
	session *img2pdf.Session
	cfg     *config.Config
	opts    img2pdf.ConversionOptions
	st      styles
	quiet   bool
}

// runShell starts the interactive shell on env.Stdin. Positional
// arguments are added before the first prompt.
func runShell(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseShellFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	st, err := loadSettings(flags.common, &flags.build)
	if err != nil {
		return err
	}
	mergeOutputFlag(flags.output, st.cfg)
	if flags.scale > 0 {
		st.cfg.Preview.Scale = flags.scale
	}
	if err := st.cfg.Validate(); err != nil {
		return err
	}
	opts, err := buildOptions(st.cfg)
	if err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common)
	s := newSession(st, env, log, shellUploadWorkers)
	defer func() { _ = s.Close() }()

	sh := &shell{
		ctx:     ctx,
		env:     env,
		session: s,
		cfg:     st.cfg,
		opts:    opts,
		st:      newStyles(env.Stdout),
		quiet:   flags.common.quiet,
	}
	if len(positional) > 0 {
		if err := sh.add(positional); err != nil {
			sh.printError(err)
		}
	}
	return sh.run(env.Stdin)
}

// run reads commands from r until quit, end of input, or cancellation.
func (sh *shell) run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	sh.prompt()
	for scanner.Scan() {
		if err := sh.ctx.Err(); err != nil {
			return err
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			sh.prompt()
			continue
		}
		quit, err := sh.exec(fields[0], fields[1:])
		if err != nil {
			sh.printError(err)
		}
		if quit {
			return nil
		}
		sh.prompt()
	}
	return scanner.Err()
}

// exec runs one command and reports whether the shell should exit.
func (sh *shell) exec(name string, args []string) (quit bool, err error) {
	switch name {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		printShellCommands(sh.env.Stdout)
		return false, nil
	case "add":
		return false, sh.add(args)
	case "list", "ls":
		sh.list()
		return false, nil
	case "remove", "rm":
		return false, sh.remove(args)
	case "move", "mv":
		return false, sh.move(args)
	case "clear":
		sh.session.Clear()
		sh.printf("Removed all images\n")
		return false, nil
	case "show":
		return false, sh.show(args)
	case "set":
		return false, sh.set(args)
	case "settings":
		return false, sh.settings()
	case "convert":
		return false, sh.convert()
	case "next":
		return false, sh.navigate(sh.session.NextPage)
	case "prev":
		return false, sh.navigate(sh.session.PrevPage)
	case "goto":
		return false, sh.gotoPage(args)
	case "render":
		return false, sh.render(args)
	case "save":
		return false, sh.save(args)
	}
	return false, fmt.Errorf("%w: %s (type help for commands)", ErrUnknownCommand, name)
}

func (sh *shell) add(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: add <file|dir>...", ErrUsage)
	}
	paths, err := expandImageInputs(args)
	if err != nil {
		return err
	}
	before := sh.session.Len()
	if err := addFiles(sh.ctx, sh.session, paths, sh.env.Stderr, sh.quiet); err != nil {
		return err
	}
	sh.printf("Added %d images (%d total)\n", sh.session.Len()-before, sh.session.Len())
	return nil
}

func (sh *shell) list() {
	images := sh.session.Images()
	if len(images) == 0 {
		fmt.Fprintln(sh.env.Stdout, sh.st.dim.Render("No images"))
		return
	}
	for i, img := range images {
		fmt.Fprintf(sh.env.Stdout, "%3d. %s %s\n", i+1, img, sh.st.dim.Render(fmt.Sprintf("%dx%d", img.Width, img.Height)))
	}
	fmt.Fprintf(sh.env.Stdout, "%d images, %s\n", len(images), img2pdf.FormatFileSize(sh.session.TotalSize()))
}

func (sh *shell) remove(args []string) error {
	i, err := indexArg(args, 0, "remove <n>")
	if err != nil {
		return err
	}
	img, err := sh.session.Remove(i)
	if err != nil {
		return err
	}
	sh.printf("Removed %s\n", img.Name)
	return nil
}

func (sh *shell) move(args []string) error {
	from, err := indexArg(args, 0, "move <from> <to>")
	if err != nil {
		return err
	}
	to, err := indexArg(args, 1, "move <from> <to>")
	if err != nil {
		return err
	}
	if err := sh.session.Move(from, to); err != nil {
		return err
	}
	img, err := sh.session.Image(to)
	if err != nil {
		return err
	}
	sh.printf("Moved %s to position %d\n", img.Name, to+1)
	return nil
}

func (sh *shell) show(args []string) error {
	i, err := indexArg(args, 0, "show <n> [thumbnail.png]")
	if err != nil {
		return err
	}
	img, err := sh.session.Image(i)
	if err != nil {
		return err
	}
	w := sh.env.Stdout
	fmt.Fprintln(w, sh.st.title.Render(img.Name))
	fmt.Fprintln(w, sh.st.field("Type", img.MIMEType))
	fmt.Fprintln(w, sh.st.field("Size", img.SizeLabel))
	fmt.Fprintln(w, sh.st.field("Pixels", fmt.Sprintf("%dx%d", img.Width, img.Height)))

	if len(args) < 2 {
		return nil
	}
	thumb, err := sh.session.Thumbnail(i, thumbnailSide, thumbnailSide)
	if err != nil {
		return err
	}
	if err := writePNG(args[1], thumb); err != nil {
		return err
	}
	sh.printf("Created %s\n", args[1])
	return nil
}

// set changes one conversion option. The change is kept only if the
// resulting options validate.
func (sh *shell) set(args []string) error {
	usage := fmt.Errorf("%w: set <size|orientation|margin|quality|fit|numbers|title|author|subject> <value>", ErrUsage)
	if len(args) == 0 {
		return usage
	}
	next := *sh.cfg
	key, value := args[0], strings.Join(args[1:], " ")
	if isTextSetting(key) {
		if value == clearValue || value == `""` {
			value = ""
		}
	} else if value == "" {
		return usage
	}
	switch key {
	case "size":
		next.Page.Size = value
	case "orientation":
		next.Page.Orientation = value
	case "margin":
		m, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: margin %q is not a number", ErrUsage, value)
		}
		next.Page.Margin = m
	case "quality":
		next.Image.Quality = value
	case "fit", "numbers":
		on, err := parseSwitch(value)
		if err != nil {
			return err
		}
		if key == "fit" {
			next.Image.FitToPage = on
		} else {
			next.Document.PageNumbers = on
		}
	case "title":
		next.Document.Title = value
	case "author":
		next.Document.Author = value
	case "subject":
		next.Document.Subject = value
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrUsage, key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	opts, err := buildOptions(&next)
	if err != nil {
		return err
	}
	*sh.cfg = next
	sh.opts = opts
	if value == "" {
		sh.printf("%s cleared\n", key)
	} else {
		sh.printf("%s = %s\n", key, value)
	}
	return nil
}

// isTextSetting reports whether key is a metadata field that may be empty.
func isTextSetting(key string) bool {
	switch key {
	case "title", "author", "subject":
		return true
	}
	return false
}

// settings prints the current options in config file form.
func (sh *shell) settings() error {
	data, err := yamlutil.Marshal(sh.cfg)
	if err != nil {
		return err
	}
	_, err = sh.env.Stdout.Write(data)
	return err
}

func (sh *shell) convert() error {
	result, err := sh.session.Convert(sh.ctx, sh.opts)
	if err != nil {
		return conversionError(err)
	}
	fmt.Fprintln(sh.env.Stdout, sh.st.mark.Render(result.SuccessMessage()))
	sh.printf("%s\n", img2pdf.PreviewState{Current: 1, Total: result.PageCount()})
	return nil
}

func (sh *shell) navigate(step func() (img2pdf.PreviewState, error)) error {
	state, err := step()
	if err != nil {
		return conversionError(err)
	}
	sh.printf("%s\n", state)
	return nil
}

func (sh *shell) gotoPage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: goto <page>", ErrUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: page %q is not a number", ErrUsage, args[0])
	}
	state, err := sh.session.GotoPage(n)
	if errors.Is(err, img2pdf.ErrPageOutOfRange) {
		return fmt.Errorf("%w%s", err, hints.ForPageRange(state.Total))
	}
	if err != nil {
		return conversionError(err)
	}
	sh.printf("%s\n", state)
	return nil
}

// render writes the current preview page as PNG, by default into the
// output directory under <title>-page-<n>.png.
func (sh *shell) render(args []string) error {
	img, state, err := sh.session.RenderPreview()
	if err != nil {
		return conversionError(err)
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		doc, err := sh.session.Document()
		if err != nil {
			return err
		}
		dir := sh.cfg.Output.DefaultDir
		if dir == "" {
			dir = "."
		}
		path = pagePNGPath(dir, strings.TrimSuffix(doc.Filename, ".pdf"), state.Current)
	}
	if err := writePNG(path, img); err != nil {
		return err
	}
	sh.printf("Created %s (%s)\n", path, state)
	return nil
}

func (sh *shell) save(args []string) error {
	dir := sh.cfg.Output.DefaultDir
	if len(args) > 0 {
		dir = args[0]
	}
	path, err := saveDocument(sh.session, dir)
	if err != nil {
		return err
	}
	sh.printf("Saved %s\n", path)
	return nil
}

func (sh *shell) prompt() {
	if !sh.quiet {
		fmt.Fprint(sh.env.Stdout, shellPrompt)
	}
}

// printf writes informational output unless quiet.
func (sh *shell) printf(format string, args ...any) {
	if !sh.quiet {
		fmt.Fprintf(sh.env.Stdout, format, args...)
	}
}

func (sh *shell) printError(err error) {
	fmt.Fprintf(sh.env.Stderr, "error: %v\n", err)
}

// indexArg parses args[pos] as a 1-based image number and returns the
// 0-based index.
func indexArg(args []string, pos int, usage string) (int, error) {
	if len(args) <= pos {
		return 0, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	n, err := strconv.Atoi(args[pos])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, args[pos])
	}
	return n - 1, nil
}

// parseSwitch accepts on/off and the strconv boolean spellings.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not on or off", ErrUsage, s)
	}
	return b, nil
}
