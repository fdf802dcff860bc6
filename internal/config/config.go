// Package config loads YAML defaults for image-to-PDF conversion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-img2pdf/internal/fileutil"
	"github.com/alnah/go-img2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory under the user config dir searched by name.
const AppDirName = "go-img2pdf"

// Field length limits.
const (
	MaxTitleLength       = 200
	MaxAuthorLength      = 100
	MaxSubjectLength     = 200
	MaxPageSizeLength    = 10 // "letter", "a4"
	MaxOrientationLength = 10 // "portrait", "landscape"
	MaxQualityLength     = 10 // "high", "medium", "low"
	MaxPathLength        = 4096
)

// Preview bounds.
const (
	MinPreviewScale = 0.25
	MaxPreviewScale = 8.0
	MaxWorkers      = 32
)

// Config holds all configuration for document generation.
type Config struct {
	Page     PageConfig     `yaml:"page"`
	Image    ImageConfig    `yaml:"image"`
	Document DocumentConfig `yaml:"document"`
	Output   OutputConfig   `yaml:"output"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "a3", "a4", "a5", "letter", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // mm (default: 10)
}

// ImageConfig defines how images are placed and encoded.
type ImageConfig struct {
	Quality   string `yaml:"quality"`   // "high", "medium", "low" (default: "high")
	FitToPage bool   `yaml:"fitToPage"` // default: true
}

// DocumentConfig defines document metadata and decorations.
type DocumentConfig struct {
	Title       string `yaml:"title"` // default: "Converted PDF"
	Author      string `yaml:"author"`
	Subject     string `yaml:"subject"`
	PageNumbers bool   `yaml:"pageNumbers"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = current directory
}

// PreviewConfig defines preview rendering options.
type PreviewConfig struct {
	Scale   float64 `yaml:"scale"`   // multiplier on 72 DPI (default: 1.5)
	Workers int     `yaml:"workers"` // 0 = auto
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Size:        "a4",
			Orientation: "portrait",
			Margin:      10,
		},
		Image: ImageConfig{
			Quality:   "high",
			FitToPage: true,
		},
		Document: DocumentConfig{
			Title: "Converted PDF",
		},
		Preview: PreviewConfig{
			Scale: 1.5,
		},
	}
}

// Validate checks field lengths and numeric ranges.
// Page size, orientation and quality names are checked by the library at
// conversion time; here only their length is bounded.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"image.quality", c.Image.Quality, MaxQualityLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.author", c.Document.Author, MaxAuthorLength},
		{"document.subject", c.Document.Subject, MaxSubjectLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative, got %.2f", ErrInvalidValue, c.Page.Margin)
	}
	if c.Preview.Scale != 0 && (c.Preview.Scale < MinPreviewScale || c.Preview.Scale > MaxPreviewScale) {
		return fmt.Errorf("%w: preview.scale must be between %.2f and %.2f, got %.2f",
			ErrInvalidValue, MinPreviewScale, MaxPreviewScale, c.Preview.Scale)
	}
	if c.Preview.Workers < 0 || c.Preview.Workers > MaxWorkers {
		return fmt.Errorf("%w: preview.workers must be between 0 and %d, got %d",
			ErrInvalidValue, MaxWorkers, c.Preview.Workers)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched as name.yaml/name.yml in the current directory,
// then in the user config directory.
// Keys absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the candidate files for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
