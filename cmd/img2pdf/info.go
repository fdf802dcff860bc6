package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	img2pdf "github.com/alnah/go-img2pdf"
)

// runInfo prints the structure and metadata of PDF files.
func runInfo(args []string, env *Environment) error {
	flags, positional, err := parseInfoFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}

	st := newStyles(env.Stdout)
	for i, path := range positional {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if !isPDF(data) {
			return fmt.Errorf("%w: %s is not a PDF file", img2pdf.ErrInspect, path)
		}
		info, err := img2pdf.Inspect(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if i > 0 {
			fmt.Fprintln(env.Stdout)
		}
		printInfo(env.Stdout, st, filepath.Base(path), info, flags.text)
	}
	return nil
}

// printInfo writes one document report.
func printInfo(w io.Writer, st styles, name string, info *img2pdf.DocumentInfo, withText bool) {
	fmt.Fprintln(w, st.title.Render(name))
	fmt.Fprintln(w, st.field("Pages", strconv.Itoa(info.Pages)))
	fmt.Fprintln(w, st.field("Title", info.Title))
	fmt.Fprintln(w, st.field("Author", info.Author))
	fmt.Fprintln(w, st.field("Subject", info.Subject))
	fmt.Fprintln(w, st.field("Creator", info.Creator))
	fmt.Fprintln(w, st.field("Producer", info.Producer))

	for i, size := range info.PageSizes {
		fmt.Fprintln(w, st.field(fmt.Sprintf("Page %d", i+1), fmt.Sprintf("%.1f x %.1f mm", size[0], size[1])))
		if withText && i < len(info.Text) && info.Text[i] != "" {
			fmt.Fprintln(w, st.dim.Render("  "+info.Text[i]))
		}
	}
}
