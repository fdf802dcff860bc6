package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/fileutil"
	"github.com/alnah/go-img2pdf/internal/hints"
)

// runConvert converts the images named by args into one PDF and saves it
// under the title-derived filename.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
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
	mergeOutputFlag(flags.output, st.cfg)
	opts, err := buildOptions(st.cfg)
	if err != nil {
		return err
	}

	paths, err := expandImageInputs(positional)
	if err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common)
	s := newSession(st, env, log, flags.workers)
	defer func() { _ = s.Close() }()

	if err := addFiles(ctx, s, paths, env.Stderr, flags.common.quiet); err != nil {
		return err
	}

	start := env.Now()
	result, err := s.Convert(ctx, opts)
	if err != nil {
		return conversionError(err)
	}
	path, err := saveDocument(s, st.cfg.Output.DefaultDir)
	if err != nil {
		return err
	}

	if flags.common.quiet {
		return nil
	}
	fmt.Fprintln(env.Stdout, result.SuccessMessage())
	if flags.common.verbose {
		fmt.Fprintf(env.Stdout, "%d images -> %s (%v)\n", s.Len(), path, env.Now().Sub(start).Round(time.Millisecond))
	} else {
		fmt.Fprintf(env.Stdout, "Created %s\n", path)
	}
	return nil
}

// newSession creates a session wired to the run's converter and logger.
// Fewer than two workers reads files one at a time, in argument order.
func newSession(st *settings, env *Environment, log *slog.Logger, workers int) *img2pdf.Session {
	return img2pdf.NewSession(
		img2pdf.WithSessionLogger(log),
		img2pdf.WithConverter(st.newConverter(env, log)),
		img2pdf.WithUploadWorkers(max(workers, 1)),
		img2pdf.WithPreviewOptions(env.previewOptions(st.cfg.Preview.Scale)...),
	)
}

// expandImageInputs resolves positional arguments into image paths.
// Directories contribute their image files in name order; files named
// explicitly are kept whatever their extension.
func expandImageInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}
	return fileutil.ExpandInputs(args, fileutil.HasImageExtension)
}

// addFiles loads paths into s. Each skipped file is logged by the session;
// a summary line with a hint follows unless quiet.
func addFiles(ctx context.Context, s *img2pdf.Session, paths []string, w io.Writer, quiet bool) error {
	res, err := s.AddFiles(ctx, paths...)
	if err != nil {
		return err
	}
	if len(res.Skipped) == 0 || quiet {
		return nil
	}

	var hint string
	for _, fe := range res.Skipped {
		if errors.Is(fe, img2pdf.ErrNotAnImage) || errors.Is(fe, img2pdf.ErrUnsupportedImageFormat) {
			hint = hints.ForUnsupportedImage()
			break
		}
	}
	fmt.Fprintf(w, "warning: skipped %d of %d files%s\n", len(res.Skipped), len(paths), hint)
	return nil
}

// saveDocument writes the session document into dir.
func saveDocument(s *img2pdf.Session, dir string) (string, error) {
	path, err := s.Save(dir)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, img2pdf.ErrOutputDirectory), errors.Is(err, img2pdf.ErrNoDocument):
		return "", conversionError(err)
	default:
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
}
