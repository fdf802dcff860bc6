package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	img2pdf "github.com/alnah/go-img2pdf"
)

// runPreview renders pages to PNG files. The input is either one PDF file
// or images, which are converted in memory first.
func runPreview(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	st, err := loadSettings(flags.common, &flags.build)
	if err != nil {
		return err
	}
	mergePreviewFlags(flags, st)
	if err := st.cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common)
	pdf, base, err := previewSource(ctx, positional, st, env, log, flags.common.quiet)
	if err != nil {
		return err
	}

	scale := st.cfg.Preview.Scale
	if scale <= 0 {
		scale = img2pdf.DefaultPreviewScale
	}
	pool := img2pdf.NewRendererPool(pdf, img2pdf.ResolvePoolSize(st.cfg.Preview.Workers), env.previewOptions(scale)...)
	defer func() { _ = pool.Close() }()
	log.Debug("renderer pool ready", "size", pool.Size(), "scale", scale)

	total, err := pageCount(ctx, pool)
	if err != nil {
		return conversionError(err)
	}
	pages, err := parsePageRange(flags.pages, total)
	if err != nil {
		return err
	}

	rendered, err := img2pdf.RenderPages(ctx, pool, pages, img2pdf.BaseDPI*scale)
	if err != nil {
		return conversionError(err)
	}

	dir := st.cfg.Output.DefaultDir
	if dir == "" {
		dir = "."
	}
	for _, page := range rendered {
		path := pagePNGPath(dir, base, page.Page)
		if err := writePNG(path, page.Image); err != nil {
			return err
		}
		if flags.common.quiet {
			continue
		}
		if flags.common.verbose {
			b := page.Image.Bounds()
			fmt.Fprintf(env.Stdout, "%s (%s, %dx%d)\n", path, img2pdf.PreviewState{Current: page.Page, Total: total}, b.Dx(), b.Dy())
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", path)
		}
	}
	return nil
}

// mergePreviewFlags applies the preview-only flags over st.
func mergePreviewFlags(f *previewFlags, st *settings) {
	mergeOutputFlag(f.output, st.cfg)
	if f.scale > 0 {
		st.cfg.Preview.Scale = f.scale
	}
	if f.workers > 0 {
		st.cfg.Preview.Workers = f.workers
	}
}

// previewSource returns the PDF to render and the base name for its pages.
func previewSource(ctx context.Context, args []string, st *settings, env *Environment, log *slog.Logger, quiet bool) ([]byte, string, error) {
	if len(args) == 1 && strings.EqualFold(filepath.Ext(args[0]), ".pdf") {
		data, err := os.ReadFile(args[0]) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		name := filepath.Base(args[0])
		return data, strings.TrimSuffix(name, filepath.Ext(name)), nil
	}

	opts, err := buildOptions(st.cfg)
	if err != nil {
		return nil, "", err
	}
	paths, err := expandImageInputs(args)
	if err != nil {
		return nil, "", err
	}

	s := newSession(st, env, log, 1)
	defer func() { _ = s.Close() }()
	if err := addFiles(ctx, s, paths, env.Stderr, quiet); err != nil {
		return nil, "", err
	}
	result, err := s.Convert(ctx, opts)
	if err != nil {
		return nil, "", conversionError(err)
	}
	return result.PDF, strings.TrimSuffix(result.Filename, ".pdf"), nil
}

// pageCount reads the page count from a pooled renderer.
func pageCount(ctx context.Context, pool *img2pdf.RendererPool) (int, error) {
	r, err := pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer pool.Release(r)
	if r.NumPage() < 1 {
		return 0, fmt.Errorf("%w: document has no pages", img2pdf.ErrPreviewLoad)
	}
	return r.NumPage(), nil
}

// isPDF reports whether data starts with the PDF header.
func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
