package img2pdf

// Notes:
// - PageSettings: tests validation for size, orientation, and margin boundaries
// - Dimensions: tests orientation swap and the A4 fallback for nil/unknown sizes
// - Quality: tests tier parsing, factors, and the JPEG quality mapping
// - Metadata: tests field length limits, default title, and download filename
// - The 2*margin >= min side check cannot trigger inside the 0-50 mm range
//   on the supported sizes (smallest side is 148 mm); it guards future sizes.

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestPageSettings_Validate - PageSettings Validation
// ---------------------------------------------------------------------------

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ps      *PageSettings
		wantErr error
	}{
		{
			name:    "nil is valid (use defaults)",
			ps:      nil,
			wantErr: nil,
		},
		{
			name:    "valid a4 portrait",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: DefaultMargin},
			wantErr: nil,
		},
		{
			name:    "valid letter landscape",
			ps:      &PageSettings{Size: PageSizeLetter, Orientation: OrientationLandscape, Margin: 1},
			wantErr: nil,
		},
		{
			name:    "case insensitive size",
			ps:      &PageSettings{Size: "A3", Orientation: OrientationPortrait, Margin: DefaultMargin},
			wantErr: nil,
		},
		{
			name:    "case insensitive orientation",
			ps:      &PageSettings{Size: PageSizeLegal, Orientation: "LANDSCAPE", Margin: DefaultMargin},
			wantErr: nil,
		},
		{
			name:    "margin at minimum",
			ps:      &PageSettings{Size: PageSizeA5, Orientation: OrientationPortrait, Margin: MinMargin},
			wantErr: nil,
		},
		{
			name:    "margin at maximum on smallest page",
			ps:      &PageSettings{Size: PageSizeA5, Orientation: OrientationLandscape, Margin: MaxMargin},
			wantErr: nil,
		},
		{
			name:    "unknown page size",
			ps:      &PageSettings{Size: "tabloid", Orientation: OrientationPortrait, Margin: DefaultMargin},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "empty page size",
			ps:      &PageSettings{Size: "", Orientation: OrientationPortrait, Margin: DefaultMargin},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "unknown orientation",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: "diagonal", Margin: DefaultMargin},
			wantErr: ErrInvalidOrientation,
		},
		{
			name:    "negative margin",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: -0.5},
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "margin above maximum",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: MaxMargin + 0.01},
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "NaN margin",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: math.NaN()},
			wantErr: ErrInvalidMargin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ps.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPageSettings_Dimensions - Orientation and Fallback
// ---------------------------------------------------------------------------

func TestPageSettings_Dimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ps    *PageSettings
		wantW float64
		wantH float64
	}{
		{"nil yields a4 portrait", nil, 210, 297},
		{"a3 portrait", &PageSettings{Size: PageSizeA3, Orientation: OrientationPortrait}, 297, 420},
		{"a4 landscape", &PageSettings{Size: PageSizeA4, Orientation: OrientationLandscape}, 297, 210},
		{"a5 portrait", &PageSettings{Size: PageSizeA5, Orientation: OrientationPortrait}, 148, 210},
		{"letter portrait", &PageSettings{Size: PageSizeLetter, Orientation: OrientationPortrait}, 215.9, 279.4},
		{"legal landscape", &PageSettings{Size: PageSizeLegal, Orientation: OrientationLandscape}, 355.6, 215.9},
		{"uppercase size", &PageSettings{Size: "LETTER", Orientation: "Landscape"}, 279.4, 215.9},
		{"unknown size falls back to a4", &PageSettings{Size: "b5", Orientation: OrientationPortrait}, 210, 297},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h := tt.ps.Dimensions()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Dimensions() = (%v, %v), want (%v, %v)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDefaultPageSettings(t *testing.T) {
	t.Parallel()

	got := DefaultPageSettings()
	want := &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultPageSettings() mismatch (-want +got):\n%s", diff)
	}
}

func TestPageSizes(t *testing.T) {
	t.Parallel()

	got := PageSizes()
	want := []string{"a3", "a4", "a5", "letter", "legal"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PageSizes() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range got {
		if _, ok := pageSizes[name]; !ok {
			t.Errorf("PageSizes() lists %q without dimensions", name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestQuality - Tier Parsing and Mapping
// ---------------------------------------------------------------------------

func TestParseQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Quality
		wantErr bool
	}{
		{"high", QualityHigh, false},
		{"medium", QualityMedium, false},
		{"low", QualityLow, false},
		{"  LOW ", QualityLow, false},
		{"", QualityHigh, false},
		{"ultra", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseQuality(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuality) {
					t.Errorf("ParseQuality(%q) error = %v, want ErrInvalidQuality", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuality(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseQuality(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuality_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		q           Quality
		wantFactor  float64
		wantJPEGQty int
	}{
		{QualityHigh, 1.0, 0},
		{"", 1.0, 0},
		{QualityMedium, 0.8, 80},
		{QualityLow, 0.6, 60},
	}

	for _, tt := range tests {
		t.Run(string(tt.q), func(t *testing.T) {
			t.Parallel()

			if got := tt.q.Factor(); got != tt.wantFactor {
				t.Errorf("Factor() = %v, want %v", got, tt.wantFactor)
			}
			if got := tt.q.JPEGQuality(); got != tt.wantJPEGQty {
				t.Errorf("JPEGQuality() = %d, want %d", got, tt.wantJPEGQty)
			}
		})
	}
}

func TestQuality_Validate(t *testing.T) {
	t.Parallel()

	if err := Quality("").Validate(); err != nil {
		t.Errorf("empty quality should be valid, got %v", err)
	}
	if err := Quality("HIGH").Validate(); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("Validate() on non-normalized tier error = %v, want ErrInvalidQuality", err)
	}
}

// ---------------------------------------------------------------------------
// TestMetadata - Limits, Defaults and Filename
// ---------------------------------------------------------------------------

func TestMetadata_Validate(t *testing.T) {
	t.Parallel()

	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	tests := []struct {
		name    string
		m       *Metadata
		wantErr bool
	}{
		{"nil", nil, false},
		{"empty", &Metadata{}, false},
		{"title at limit", &Metadata{Title: long(MaxTitleLength)}, false},
		{"title too long", &Metadata{Title: long(MaxTitleLength + 1)}, true},
		{"author too long", &Metadata{Author: long(MaxAuthorLength + 1)}, true},
		{"subject too long", &Metadata{Subject: long(MaxSubjectLength + 1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.m.Validate()
			if tt.wantErr && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("Validate() error = %v, want ErrFieldTooLong", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestMetadata_Resolved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    *Metadata
		want Metadata
	}{
		{"nil gets default title", nil, Metadata{Title: DefaultTitle}},
		{"blank title gets default", &Metadata{Title: "   ", Author: "Ann"}, Metadata{Title: DefaultTitle, Author: "Ann"}},
		{"explicit title kept", &Metadata{Title: "Trip", Subject: "2024"}, Metadata{Title: "Trip", Subject: "2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, tt.m.resolved()); diff != "" {
				t.Errorf("resolved() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"", "converted.pdf"},
		{"   ", "converted.pdf"},
		{"...", "converted.pdf"},
		{"Converted PDF", "Converted PDF.pdf"},
		{"Trip/Photos", "Trip_Photos.pdf"},
		{"Q3: report?", "Q3_ report_.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()

			if got := Filename(tt.title); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConversionOptions - Defaults and Validation
// ---------------------------------------------------------------------------

func TestDefaultConversionOptions(t *testing.T) {
	t.Parallel()

	got := DefaultConversionOptions()
	want := ConversionOptions{
		Page:      &PageSettings{Size: "a4", Orientation: "portrait", Margin: 10},
		Quality:   QualityHigh,
		FitToPage: true,
		Metadata:  &Metadata{Title: "Converted PDF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultConversionOptions() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConversionOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ConversionOptions)
		wantErr error
	}{
		{"zero value", func(o *ConversionOptions) { *o = ConversionOptions{} }, nil},
		{"bad page", func(o *ConversionOptions) { o.Page.Size = "b4" }, ErrInvalidPageSize},
		{"bad quality", func(o *ConversionOptions) { o.Quality = "max" }, ErrInvalidQuality},
		{"bad metadata", func(o *ConversionOptions) { o.Metadata.Author = string(make([]byte, MaxAuthorLength+1)) }, ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := DefaultConversionOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvertResult - Accessors
// ---------------------------------------------------------------------------

func TestConvertResult_PageCount(t *testing.T) {
	t.Parallel()

	var nilResult *ConvertResult
	if got := nilResult.PageCount(); got != 0 {
		t.Errorf("nil PageCount() = %d, want 0", got)
	}

	r := &ConvertResult{Pages: make([]PageLayout, 3)}
	if got := r.PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}
	if got, want := r.SuccessMessage(), "PDF created successfully with 3 pages!"; got != want {
		t.Errorf("SuccessMessage() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestWithTimeoutPanic - Option Guards
// ---------------------------------------------------------------------------

func TestWithTimeoutPanic(t *testing.T) {
	t.Parallel()

	t.Run("zero duration panics", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for zero duration")
			}
		}()
		WithTimeout(0)
	})

	t.Run("negative duration panics", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for negative duration")
			}
		}()
		WithTimeout(-1 * time.Second)
	})
}

func TestConverterOptions(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewConverter(
		WithTimeout(5*time.Second),
		WithLogger(nil),
		WithCreator("tester"),
		WithClock(func() time.Time { return fixed }),
		WithClock(nil),
	)

	if c.cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.cfg.timeout)
	}
	if c.cfg.logger == nil {
		t.Error("nil logger should be ignored")
	}
	if c.cfg.creator != "tester" {
		t.Errorf("creator = %q, want tester", c.cfg.creator)
	}
	if got := c.cfg.now(); !got.Equal(fixed) {
		t.Errorf("clock = %v, want %v", got, fixed)
	}
}
