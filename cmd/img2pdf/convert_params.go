package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
	"github.com/alnah/go-img2pdf/internal/fileutil"
	"github.com/alnah/go-img2pdf/internal/hints"
)

// settings is the resolved configuration of one command run.
type settings struct {
	cfg     *config.Config
	timeout time.Duration // 0 = converter default
}

// loadSettings builds the configuration from defaults, the config file,
// IMG2PDF_* variables and finally the command flags, in that order.
func loadSettings(common commonFlags, build *buildFlags) (*settings, error) {
	envCfg := loadEnvConfig()

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	applyEnvConfig(envCfg, cfg)

	var flagTimeout string
	if build != nil {
		mergeBuildFlags(build, cfg)
		flagTimeout = build.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout, err := resolveTimeout(flagTimeout, envCfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, timeout: timeout}, nil
}

// mergeBuildFlags merges CLI flags into config. CLI values override config values.
func mergeBuildFlags(f *buildFlags, cfg *config.Config) {
	// Page
	if f.page.size != "" {
		cfg.Page.Size = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Page.Orientation = f.page.orientation
	}
	if f.page.margin != marginUnset {
		cfg.Page.Margin = f.page.margin
	}

	// Image (--no-fit wins over --fit)
	if f.image.quality != "" {
		cfg.Image.Quality = f.image.quality
	}
	if f.image.fit {
		cfg.Image.FitToPage = true
	}
	if f.image.noFit {
		cfg.Image.FitToPage = false
	}

	// Document
	if f.document.title != "" {
		cfg.Document.Title = f.document.title
	}
	if f.document.author != "" {
		cfg.Document.Author = f.document.author
	}
	if f.document.subject != "" {
		cfg.Document.Subject = f.document.subject
	}
	if f.document.pageNumbers {
		cfg.Document.PageNumbers = true
	}
}

// mergeOutputFlag lets a non-empty --output replace output.defaultDir.
func mergeOutputFlag(output string, cfg *config.Config) {
	if output != "" {
		cfg.Output.DefaultDir = output
	}
}

// buildOptions converts cfg into validated conversion options.
func buildOptions(cfg *config.Config) (img2pdf.ConversionOptions, error) {
	quality, err := img2pdf.ParseQuality(cfg.Image.Quality)
	if err != nil {
		return img2pdf.ConversionOptions{}, err
	}

	opts := img2pdf.ConversionOptions{
		Page: &img2pdf.PageSettings{
			Size:        cfg.Page.Size,
			Orientation: cfg.Page.Orientation,
			Margin:      cfg.Page.Margin,
		},
		Quality:     quality,
		FitToPage:   cfg.Image.FitToPage,
		PageNumbers: cfg.Document.PageNumbers,
		Metadata: &img2pdf.Metadata{
			Title:   cfg.Document.Title,
			Author:  cfg.Document.Author,
			Subject: cfg.Document.Subject,
		},
	}
	if err := opts.Validate(); err != nil {
		if errors.Is(err, img2pdf.ErrInvalidMargin) {
			return img2pdf.ConversionOptions{}, fmt.Errorf("%w%s", err, hints.ForMargin())
		}
		return img2pdf.ConversionOptions{}, err
	}
	return opts, nil
}

// resolveTimeout determines the conversion timeout.
// Priority: flag > env var > converter default (returned as 0).
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue == "" {
		return envValue, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (use format like 30s, 2m, 1m30s)", ErrInvalidTimeout, flagValue)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}

// validateWorkers checks that n is within [0, config.MaxWorkers].
func validateWorkers(n int) error {
	if n < 0 || n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

// newConverter creates the converter for a run.
func (s *settings) newConverter(env *Environment, log *slog.Logger) *img2pdf.Converter {
	opts := []img2pdf.Option{
		img2pdf.WithLogger(log),
		img2pdf.WithClock(env.Now),
	}
	if s.timeout > 0 {
		opts = append(opts, img2pdf.WithTimeout(s.timeout))
	}
	return img2pdf.NewConverter(opts...)
}

// conversionError appends a hint to err when one applies.
func conversionError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, img2pdf.ErrNoImages):
		return fmt.Errorf("%w%s", err, hints.ForEmptySession())
	case errors.Is(err, img2pdf.ErrOutputDirectory):
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	case errors.Is(err, img2pdf.ErrPreviewLoad):
		return fmt.Errorf("%w%s", err, hints.ForPreviewLoad())
	}
	return err
}
