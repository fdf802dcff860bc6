package img2pdf

// Notes:
// - Fixtures are encoded in memory (see helpers_test.go)
// - MIME type comes from the extension when it names an image type, from
//   content sniffing otherwise; the decode check decides acceptance

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNewImage - Acceptance and Rejection
// ---------------------------------------------------------------------------

func TestNewImage_Accepts(t *testing.T) {
	t.Parallel()

	pngData := pngFixture(t, 40, 30)
	jpegData := jpegFixture(t, 64, 48)

	tests := []struct {
		name       string
		file       string
		data       []byte
		wantFormat string
		wantMIME   string
		wantW      int
		wantH      int
	}{
		{"png", "photo.png", pngData, "png", "image/png", 40, 30},
		{"jpeg", "photo.JPG", jpegData, "jpeg", "image/jpeg", 64, 48},
		{"content wins over text extension", "scan.txt", jpegData, "jpeg", "image/jpeg", 64, 48},
		{"no extension", "scan", pngData, "png", "image/png", 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := NewImage(tt.file, tt.data)
			if err != nil {
				t.Fatalf("NewImage() unexpected error: %v", err)
			}
			if img.Name != tt.file {
				t.Errorf("Name = %q, want %q", img.Name, tt.file)
			}
			if img.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", img.Format, tt.wantFormat)
			}
			if img.MIMEType != tt.wantMIME {
				t.Errorf("MIMEType = %q, want %q", img.MIMEType, tt.wantMIME)
			}
			if img.Width != tt.wantW || img.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", img.Width, img.Height, tt.wantW, tt.wantH)
			}
			if img.Size != int64(len(tt.data)) {
				t.Errorf("Size = %d, want %d", img.Size, len(tt.data))
			}
			if img.SizeLabel != FormatFileSize(img.Size) {
				t.Errorf("SizeLabel = %q, want %q", img.SizeLabel, FormatFileSize(img.Size))
			}
		})
	}
}

func TestNewImage_Rejects(t *testing.T) {
	t.Parallel()

	pngData := pngFixture(t, 10, 10)

	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr error
	}{
		{"empty data", "empty.png", nil, ErrEmptyImage},
		{"plain text", "notes.txt", []byte("hello, world\n"), ErrNotAnImage},
		{"html", "page.html", []byte("<!DOCTYPE html><html><body>x</body></html>"), ErrNotAnImage},
		{"garbage with image extension", "broken.png", []byte("definitely not pixels"), ErrUnsupportedImageFormat},
		{"truncated png", "cut.png", pngData[:20], ErrUnsupportedImageFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := NewImage(tt.file, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewImage() error = %v, want %v", err, tt.wantErr)
			}
			if img != nil {
				t.Error("NewImage() should return nil image on error")
			}
			if !strings.Contains(err.Error(), tt.file) {
				t.Errorf("error %q should name the file %q", err, tt.file)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadImage - File System Entry Point
// ---------------------------------------------------------------------------

func TestLoadImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "page.png", pngFixture(t, 12, 8))

	t.Run("reads and names by base", func(t *testing.T) {
		t.Parallel()

		img, err := LoadImage(path)
		if err != nil {
			t.Fatalf("LoadImage() unexpected error: %v", err)
		}
		if img.Name != "page.png" {
			t.Errorf("Name = %q, want page.png", img.Name)
		}
		if img.Width != 12 || img.Height != 8 {
			t.Errorf("size = %dx%d, want 12x8", img.Width, img.Height)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadImage(filepath.Join(dir, "missing.png"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if errors.Is(err, ErrNotAnImage) {
			t.Errorf("missing file should not be reported as ErrNotAnImage: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestImage_Accessors - DataURL and String
// ---------------------------------------------------------------------------

func TestImage_DataURL(t *testing.T) {
	t.Parallel()

	data := pngFixture(t, 4, 4)
	img := mustImage(t, "dot.png", data)

	got := img.DataURL()
	prefix := "data:image/png;base64,"
	if !strings.HasPrefix(got, prefix) {
		t.Fatalf("DataURL() = %q..., want prefix %q", got[:min(len(got), 30)], prefix)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, prefix))
	if err != nil {
		t.Fatalf("DataURL payload is not base64: %v", err)
	}
	if string(decoded) != string(data) {
		t.Error("DataURL payload does not round-trip to the original bytes")
	}
}

func TestImage_String(t *testing.T) {
	t.Parallel()

	img := &Image{Name: "a.png", SizeLabel: "1.5 KB"}
	if got, want := img.String(), "a.png (1.5 KB)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestSniffMIME - Extension and Content Detection
// ---------------------------------------------------------------------------

func TestSniffMIME(t *testing.T) {
	t.Parallel()

	pngData := pngFixture(t, 2, 2)

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"image extension wins", "x.gif", []byte("text"), "image/gif"},
		{"uppercase extension", "x.PNG", []byte("text"), "image/png"},
		{"text extension falls back to content", "x.txt", pngData, "image/png"},
		{"plain text content", "x", []byte("hello"), "text/plain"},
		{"binary content", "x.bin", []byte{0x00, 0x01, 0x02, 0x03}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sniffMIME(tt.file, tt.data); got != tt.want {
				t.Errorf("sniffMIME(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}
