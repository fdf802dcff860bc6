package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	img2pdf "github.com/alnah/go-img2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and fixtures
// ---------------------------------------------------------------------------

// fixedNow is the clock of every test environment.
var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// testEnv is an Environment writing to buffers.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment with stdin set to input and a renderer
// that draws blank pages, so no MuPDF is needed.
func newTestEnv(input string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		Environment: &Environment{
			Now:      func() time.Time { return fixedNow },
			Stdin:    strings.NewReader(input),
			Stdout:   stdout,
			Stderr:   stderr,
			Renderer: openBlank,
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// blankRenderer draws square white pages sized by dpi.
type blankRenderer struct {
	pages int
}

// openBlank counts the pages of pdf with the inspector and returns a
// renderer for that many pages.
func openBlank(pdf []byte) (img2pdf.PageRenderer, error) {
	info, err := img2pdf.Inspect(pdf)
	if err != nil {
		return nil, err
	}
	return &blankRenderer{pages: info.Pages}, nil
}

func (r *blankRenderer) NumPage() int { return r.pages }

func (r *blankRenderer) RenderPage(_ int, dpi float64) (image.Image, error) {
	side := int(dpi)
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

func (r *blankRenderer) Close() error { return nil }

// writeImage writes a w x h PNG named name into dir and returns its path.
func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// writeFile writes text content into dir/name and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// imageDir creates a directory holding n small PNGs named page1.png...
func imageDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= n; i++ {
		writeImage(t, dir, fmt.Sprintf("page%d.png", i), 40, 30)
	}
	return dir
}

// samplePDF converts n images and returns the document bytes.
func samplePDF(t *testing.T, n int, title string) []byte {
	t.Helper()
	dir := imageDir(t, n)
	s := img2pdf.NewSession(img2pdf.WithUploadWorkers(1))
	paths, err := expandImageInputs([]string{dir})
	if err != nil {
		t.Fatalf("expandImageInputs: %v", err)
	}
	if _, err := s.AddFiles(t.Context(), paths...); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	opts := img2pdf.DefaultConversionOptions()
	opts.Metadata = &img2pdf.Metadata{Title: title, Author: "Tester"}
	res, err := s.Convert(t.Context(), opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return res.PDF
}

// pngSize decodes the dimensions of the PNG at path.
func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig(%s): %v", path, err)
	}
	return cfg.Width, cfg.Height
}
