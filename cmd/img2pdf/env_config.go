package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-img2pdf/internal/config"
)

// envPrefix starts every recognized environment variable.
const envPrefix = "IMG2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // IMG2PDF_CONFIG: config file path
	Timeout    time.Duration // IMG2PDF_TIMEOUT: PDF generation timeout
	OutputDir  string        // IMG2PDF_OUTPUT_DIR: default output directory

	// Tier 2 - Page and images
	PageSize    string   // IMG2PDF_PAGE_SIZE: a3, a4, a5, letter, legal
	Orientation string   // IMG2PDF_ORIENTATION: portrait, landscape
	Margin      *float64 // IMG2PDF_MARGIN: margin in mm
	Quality     string   // IMG2PDF_QUALITY: high, medium, low

	// Tier 3 - Document and preview
	Title        string   // IMG2PDF_TITLE: document title
	Author       string   // IMG2PDF_AUTHOR: document author
	Subject      string   // IMG2PDF_SUBJECT: document subject
	PageNumbers  *bool    // IMG2PDF_PAGE_NUMBERS: page number footer
	PreviewScale *float64 // IMG2PDF_PREVIEW_SCALE: preview scale
	Workers      int      // IMG2PDF_WORKERS: parallel render workers
}

// knownEnvVars lists valid IMG2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"IMG2PDF_CONFIG":     true,
	"IMG2PDF_TIMEOUT":    true,
	"IMG2PDF_OUTPUT_DIR": true,
	// Tier 2 - Page and images
	"IMG2PDF_PAGE_SIZE":   true,
	"IMG2PDF_ORIENTATION": true,
	"IMG2PDF_MARGIN":      true,
	"IMG2PDF_QUALITY":     true,
	// Tier 3 - Document and preview
	"IMG2PDF_TITLE":         true,
	"IMG2PDF_AUTHOR":        true,
	"IMG2PDF_SUBJECT":       true,
	"IMG2PDF_PAGE_NUMBERS":  true,
	"IMG2PDF_PREVIEW_SCALE": true,
	"IMG2PDF_WORKERS":       true,
	// Diagnostics
	"IMG2PDF_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Values that fail to parse are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("IMG2PDF_CONFIG"),
		OutputDir:  os.Getenv("IMG2PDF_OUTPUT_DIR"),
		// Tier 2
		PageSize:    os.Getenv("IMG2PDF_PAGE_SIZE"),
		Orientation: os.Getenv("IMG2PDF_ORIENTATION"),
		Quality:     os.Getenv("IMG2PDF_QUALITY"),
		// Tier 3
		Title:   os.Getenv("IMG2PDF_TITLE"),
		Author:  os.Getenv("IMG2PDF_AUTHOR"),
		Subject: os.Getenv("IMG2PDF_SUBJECT"),
	}

	if timeout := os.Getenv("IMG2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if margin := os.Getenv("IMG2PDF_MARGIN"); margin != "" {
		if m, err := strconv.ParseFloat(margin, 64); err == nil && m >= 0 {
			cfg.Margin = &m
		}
	}

	if numbers := os.Getenv("IMG2PDF_PAGE_NUMBERS"); numbers != "" {
		if b, err := strconv.ParseBool(numbers); err == nil {
			cfg.PageNumbers = &b
		}
	}

	if scale := os.Getenv("IMG2PDF_PREVIEW_SCALE"); scale != "" {
		if s, err := strconv.ParseFloat(scale, 64); err == nil && s > 0 {
			cfg.PreviewScale = &s
		}
	}

	if workers := os.Getenv("IMG2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// unknownEnvVars returns the set IMG2PDF_* variables that are not
// recognized, sorted by name.
func unknownEnvVars() []string {
	var names []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// warnUnknownEnvVars writes a warning for each unrecognized IMG2PDF_* variable.
// Helps catch typos like IMG2PDF_PAGESIZE instead of IMG2PDF_PAGE_SIZE.
func warnUnknownEnvVars(w io.Writer) {
	for _, name := range unknownEnvVars() {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overlays environment values on cfg.
// Every set variable wins over the config file, giving:
// CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeBuildFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Output (timeout handled separately in resolveTimeout)
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}

	// Tier 2 - Page and images
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Orientation != "" {
		cfg.Page.Orientation = env.Orientation
	}
	if env.Margin != nil {
		cfg.Page.Margin = *env.Margin
	}
	if env.Quality != "" {
		cfg.Image.Quality = env.Quality
	}

	// Tier 3 - Document and preview
	if env.Title != "" {
		cfg.Document.Title = env.Title
	}
	if env.Author != "" {
		cfg.Document.Author = env.Author
	}
	if env.Subject != "" {
		cfg.Document.Subject = env.Subject
	}
	if env.PageNumbers != nil {
		cfg.Document.PageNumbers = *env.PageNumbers
	}
	if env.PreviewScale != nil {
		cfg.Preview.Scale = *env.PreviewScale
	}
	if env.Workers > 0 {
		cfg.Preview.Workers = env.Workers
	}
}
