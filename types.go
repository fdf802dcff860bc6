package img2pdf

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/alnah/go-img2pdf/internal/fileutil"
)

// Page size constants.
const (
	PageSizeA3     = "a3"
	PageSizeA4     = "a4"
	PageSizeA5     = "a5"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in millimeters.
const (
	MinMargin     = 0.0
	MaxMargin     = 50.0
	DefaultMargin = 10.0
)

// pageSizes holds portrait dimensions in millimeters.
var pageSizes = map[string][2]float64{
	PageSizeA3:     {297, 420},
	PageSizeA4:     {210, 297},
	PageSizeA5:     {148, 210},
	PageSizeLetter: {215.9, 279.4},
	PageSizeLegal:  {215.9, 355.6},
}

// PageSizes returns the supported page size names.
func PageSizes() []string {
	return []string{PageSizeA3, PageSizeA4, PageSizeA5, PageSizeLetter, PageSizeLegal}
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "a3", "a4", "a5", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // millimeters, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := pageSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q (must be one of %s)", ErrInvalidPageSize, p.Size, strings.Join(PageSizes(), ", "))
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q (must be portrait or landscape)", ErrInvalidOrientation, p.Orientation)
	}

	if math.IsNaN(p.Margin) || p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.0f and %.0f mm)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	w, h := p.Dimensions()
	if 2*p.Margin >= math.Min(w, h) {
		return fmt.Errorf("%w: %.2f leaves no printable area on %s", ErrInvalidMargin, p.Margin, p.Size)
	}

	return nil
}

// Dimensions returns the page width and height in millimeters with the
// orientation applied. A nil receiver or unknown size yields A4.
func (p *PageSettings) Dimensions() (width, height float64) {
	ps := p.orDefault()
	dims, ok := pageSizes[strings.ToLower(ps.Size)]
	if !ok {
		dims = pageSizes[PageSizeA4]
	}
	if strings.EqualFold(ps.Orientation, OrientationLandscape) {
		return dims[1], dims[0]
	}
	return dims[0], dims[1]
}

// orDefault returns p, or the default settings when p is nil.
func (p *PageSettings) orDefault() *PageSettings {
	if p == nil {
		return DefaultPageSettings()
	}
	return p
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Quality selects how image data is embedded.
type Quality string

// Quality tiers.
const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// ParseQuality converts a tier name (case-insensitive) to a Quality.
// The empty string selects QualityHigh.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return QualityHigh, nil
	}
	if err := q.Validate(); err != nil {
		return "", err
	}
	return q, nil
}

// Validate checks that q names a known tier. The empty value is valid.
func (q Quality) Validate() error {
	switch q {
	case "", QualityHigh, QualityMedium, QualityLow:
		return nil
	}
	return fmt.Errorf("%w: %q (must be high, medium, or low)", ErrInvalidQuality, string(q))
}

// Factor returns the tier's quality factor: 1.0, 0.8 or 0.6.
func (q Quality) Factor() float64 {
	switch q {
	case QualityMedium:
		return 0.8
	case QualityLow:
		return 0.6
	default:
		return 1.0
	}
}

// JPEGQuality returns the JPEG encoder quality for the tier, or 0 for the
// lossless tier where images are embedded without re-compression.
func (q Quality) JPEGQuality() int {
	f := q.Factor()
	if f >= 1 {
		return 0
	}
	return int(math.Round(f * 100))
}

// Metadata defaults and limits.
const (
	DefaultTitle    = "Converted PDF"
	DefaultFilename = "converted.pdf"

	MaxTitleLength   = 200
	MaxAuthorLength  = 100
	MaxSubjectLength = 200
)

// Metadata holds the document information dictionary fields.
type Metadata struct {
	Title   string
	Author  string
	Subject string
}

// Validate checks field lengths.
// Returns nil if m is nil.
func (m *Metadata) Validate() error {
	if m == nil {
		return nil
	}
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"title", m.Title, MaxTitleLength},
		{"author", m.Author, MaxAuthorLength},
		{"subject", m.Subject, MaxSubjectLength},
	}
	for _, f := range fields {
		if len(f.value) > f.max {
			return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, f.name, len(f.value), f.max)
		}
	}
	return nil
}

// resolved returns a copy with the default title applied.
func (m *Metadata) resolved() Metadata {
	if m == nil {
		return Metadata{Title: DefaultTitle}
	}
	out := *m
	if strings.TrimSpace(out.Title) == "" {
		out.Title = DefaultTitle
	}
	return out
}

// Filename returns the download name for a document titled title:
// the sanitized title plus ".pdf", or DefaultFilename when nothing usable
// remains.
func Filename(title string) string {
	name := fileutil.SanitizeFilename(title)
	if name == "" {
		return DefaultFilename
	}
	return name + ".pdf"
}

// ConversionOptions configures one conversion.
type ConversionOptions struct {
	Page        *PageSettings // nil = defaults
	Quality     Quality       // empty = high
	FitToPage   bool
	PageNumbers bool
	Metadata    *Metadata // nil = default title, no author or subject
}

// DefaultConversionOptions returns A4 portrait, 10 mm margins, high quality,
// fit-to-page on and page numbers off.
func DefaultConversionOptions() ConversionOptions {
	return ConversionOptions{
		Page:      DefaultPageSettings(),
		Quality:   QualityHigh,
		FitToPage: true,
		Metadata:  &Metadata{Title: DefaultTitle},
	}
}

// Validate checks every option group.
func (o ConversionOptions) Validate() error {
	if err := o.Page.Validate(); err != nil {
		return err
	}
	if err := o.Quality.Validate(); err != nil {
		return err
	}
	return o.Metadata.Validate()
}

// Input contains conversion parameters.
type Input struct {
	Images  []*Image // pages, in order (required)
	Options ConversionOptions
}

// PageLayout records where one image was placed.
type PageLayout struct {
	Page       int    // 1-based
	Image      string // image name
	Encoding   string // "JPG" or "PNG" as embedded
	PageWidth  float64
	PageHeight float64
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Scale      float64
}

// ConvertResult is one produced document.
type ConvertResult struct {
	PDF       []byte
	Pages     []PageLayout
	Metadata  Metadata // as written, default title applied
	Filename  string   // suggested download name
	CreatedAt time.Time
}

// PageCount returns the number of pages in the document.
func (r *ConvertResult) PageCount() int {
	if r == nil {
		return 0
	}
	return len(r.Pages)
}

// SuccessMessage returns the user-facing confirmation for r.
func (r *ConvertResult) SuccessMessage() string {
	return fmt.Sprintf("PDF created successfully with %d pages!", r.PageCount())
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout time.Duration
	logger  *slog.Logger
	creator string
	now     func() time.Time
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// DefaultCreator is written to the document Creator field.
const DefaultCreator = "go-img2pdf"

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("img2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger for conversion diagnostics.
// A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithCreator overrides the document Creator field.
func WithCreator(creator string) Option {
	return func(c *Converter) {
		c.cfg.creator = creator
	}
}

// WithClock sets the time source for the document creation date.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.cfg.now = now
		}
	}
}
