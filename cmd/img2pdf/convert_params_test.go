package main

// Notes:
// - mergeBuildFlags: we test that set flags override config and unset ones
//   (including the margin sentinel) leave it alone.
// - buildOptions: we test mapping and validation, including the margin hint.
// - resolveTimeout: we test parsing, validation, and flag over env priority.
// - loadSettings: we test a YAML file and the config-not-found hint. Env
//   overlay precedence is covered by the env_config tests.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestMergeBuildFlags - CLI over config
// ---------------------------------------------------------------------------

func TestMergeBuildFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Page.Margin = 7
		want := *cfg

		mergeBuildFlags(&buildFlags{page: pageFlags{margin: marginUnset}}, cfg)

		if diff := cmp.Diff(want, *cfg); diff != "" {
			t.Errorf("config changed (-want +got):\n%s", diff)
		}
	})

	t.Run("set flags override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeBuildFlags(&buildFlags{
			page:     pageFlags{size: "legal", orientation: "landscape", margin: 0},
			image:    imageFlags{quality: "medium", noFit: true},
			document: documentFlags{title: "T", author: "A", subject: "S", pageNumbers: true},
		}, cfg)

		want := config.DefaultConfig()
		want.Page = config.PageConfig{Size: "legal", Orientation: "landscape", Margin: 0}
		want.Image = config.ImageConfig{Quality: "medium", FitToPage: false}
		want.Document = config.DocumentConfig{Title: "T", Author: "A", Subject: "S", PageNumbers: true}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no-fit wins over fit", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeBuildFlags(&buildFlags{page: pageFlags{margin: marginUnset}, image: imageFlags{fit: true, noFit: true}}, cfg)
		if cfg.Image.FitToPage {
			t.Error("FitToPage = true, want false")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildOptions - Config to conversion options
// ---------------------------------------------------------------------------

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := buildOptions(config.DefaultConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(img2pdf.DefaultConversionOptions(), opts); diff != "" {
			t.Errorf("options mismatch (-want +got):\n%s", diff)
		}
	})

	tests := []struct {
		name      string
		mutate    func(*config.Config)
		wantErr   error
		errSubstr string
	}{
		{"invalid quality", func(c *config.Config) { c.Image.Quality = "ultra" }, img2pdf.ErrInvalidQuality, "ultra"},
		{"invalid size", func(c *config.Config) { c.Page.Size = "b5" }, img2pdf.ErrInvalidPageSize, "b5"},
		{"invalid orientation", func(c *config.Config) { c.Page.Orientation = "diagonal" }, img2pdf.ErrInvalidOrientation, "diagonal"},
		{"margin too large", func(c *config.Config) { c.Page.Margin = 80 }, img2pdf.ErrInvalidMargin, "hint: margin is in millimeters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			_, err := buildOptions(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q should contain %q", err, tt.errSubstr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveTimeout - Timeout duration resolution with env var support
// ---------------------------------------------------------------------------

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flagValue string
		envValue  time.Duration
		want      time.Duration
		errSubstr string
	}{
		{name: "all empty uses default", want: 0},
		{name: "flag only", flagValue: "2m", want: 2 * time.Minute},
		{name: "env only", envValue: 45 * time.Second, want: 45 * time.Second},
		{name: "flag overrides env", flagValue: "5m", envValue: 45 * time.Second, want: 5 * time.Minute},
		{name: "combined duration", flagValue: "1m30s", want: 90 * time.Second},
		{name: "invalid format", flagValue: "abc", errSubstr: "invalid timeout"},
		{name: "negative duration", flagValue: "-5s", errSubstr: "must be positive"},
		{name: "zero duration", flagValue: "0s", envValue: time.Minute, errSubstr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeout(tt.flagValue, tt.envValue)
			if tt.errSubstr != "" {
				if !errors.Is(err, ErrInvalidTimeout) {
					t.Fatalf("error = %v, want ErrInvalidTimeout", err)
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("error should contain %q, got: %v", tt.errSubstr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveTimeout(%q, %v) = %v, want %v", tt.flagValue, tt.envValue, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateWorkers - Worker bounds
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{config.MaxWorkers, false},
		{config.MaxWorkers + 1, true},
		{-1, true},
	}
	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestLoadSettings - Config file loading and flag merge
// ---------------------------------------------------------------------------

func TestLoadSettings(t *testing.T) {
	t.Parallel()

	t.Run("file then flags", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "work.yaml", "page:\n  size: a5\n  margin: 5\ndocument:\n  title: From file\n")

		st, err := loadSettings(commonFlags{config: path}, &buildFlags{
			page:     pageFlags{margin: marginUnset},
			document: documentFlags{title: "From flag"},
			timeout:  "10s",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.cfg.Page.Size != "a5" || st.cfg.Page.Margin != 5 {
			t.Errorf("page = %+v, want a5 with 5mm margin", st.cfg.Page)
		}
		if st.cfg.Document.Title != "From flag" {
			t.Errorf("title = %q, want From flag", st.cfg.Document.Title)
		}
		if st.cfg.Image.Quality != "high" || !st.cfg.Image.FitToPage {
			t.Errorf("image defaults lost: %+v", st.cfg.Image)
		}
		if st.timeout != 10*time.Second {
			t.Errorf("timeout = %v, want 10s", st.timeout)
		}
	})

	t.Run("missing named config has hint", func(t *testing.T) {
		t.Parallel()

		_, err := loadSettings(commonFlags{config: "no-such-config-name"}, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "hint: use --config") {
			t.Errorf("error should carry a hint, got: %v", err)
		}
	})

	t.Run("invalid flag value fails validation", func(t *testing.T) {
		t.Parallel()

		_, err := loadSettings(commonFlags{}, &buildFlags{
			page:     pageFlags{margin: marginUnset},
			document: documentFlags{title: strings.Repeat("x", config.MaxTitleLength+1)},
		})
		if !errors.Is(err, config.ErrFieldTooLong) {
			t.Errorf("error = %v, want ErrFieldTooLong", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConversionError - Hints on library errors
// ---------------------------------------------------------------------------

func TestConversionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"no images", img2pdf.ErrNoImages, "add images first"},
		{"output directory", img2pdf.ErrOutputDirectory, "writable"},
		{"preview load", img2pdf.ErrPreviewLoad, "MuPDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := conversionError(tt.err)
			if !errors.Is(err, tt.err) {
				t.Errorf("hint lost the error chain: %v", err)
			}
			if !strings.Contains(err.Error(), tt.hint) {
				t.Errorf("error %q should contain %q", err, tt.hint)
			}
		})
	}

	plain := errors.New("plain")
	if got := conversionError(plain); got != plain {
		t.Errorf("conversionError(plain) = %v, want unchanged", got)
	}
}
