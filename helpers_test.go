package img2pdf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Image Fixtures
// ---------------------------------------------------------------------------

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(w, h, color.NRGBA{R: 40, G: 120, B: 200, A: 255})); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func jpegFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(w, h, color.NRGBA{R: 200, G: 80, B: 20, A: 255}), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

// exifOrientedJPEG returns a w x h JPEG whose EXIF header asks viewers to
// apply orientation o.
func exifOrientedJPEG(t *testing.T, w, h int, o uint16) []byte {
	t.Helper()
	data := jpegFixture(t, w, h)

	var app1 bytes.Buffer
	app1.WriteString("Exif\x00\x00MM")
	for _, v := range []any{uint16(0x2a), uint32(8), uint16(1), uint16(0x0112), uint16(3), uint32(1), o, uint16(0), uint32(0)} {
		_ = binary.Write(&app1, binary.BigEndian, v)
	}

	var out bytes.Buffer
	out.Write(data[:2])
	out.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&out, binary.BigEndian, uint16(app1.Len()+2))
	out.Write(app1.Bytes())
	out.Write(data[2:])
	return out.Bytes()
}

func mustImage(t *testing.T, name string, data []byte) *Image {
	t.Helper()
	img, err := NewImage(name, data)
	if err != nil {
		t.Fatalf("NewImage(%q): %v", name, err)
	}
	return img
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile(%q): %v", path, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Mock Renderer
// ---------------------------------------------------------------------------

// fakeRenderer draws blank pages sized by dpi and records its calls.
type fakeRenderer struct {
	mu       sync.Mutex
	pages    int
	renders  []int
	dpis     []float64
	closed   bool
	closeErr error

	// entered, when set, receives a value as each render starts.
	entered chan struct{}
	// block, when set, is received from before each render returns.
	block chan struct{}
}

func (f *fakeRenderer) NumPage() int { return f.pages }

func (f *fakeRenderer) RenderPage(index int, dpi float64) (image.Image, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.New("renderer closed")
	}
	if index < 0 || index >= f.pages {
		return nil, errors.New("page index out of range")
	}
	f.renders = append(f.renders, index)
	f.dpis = append(f.dpis, dpi)
	side := int(dpi)
	return image.NewRGBA(image.Rect(0, 0, side, side+index)), nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeRenderer) renderCalls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.renders...)
}

func (f *fakeRenderer) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeFactory returns a factory yielding fakeRenderers with pages pages and
// records every renderer it creates.
type fakeFactory struct {
	mu      sync.Mutex
	pages   int
	err     error
	created []*fakeRenderer
	opened  [][]byte
	entered chan struct{}
	block   chan struct{}
}

func (ff *fakeFactory) open(pdf []byte) (PageRenderer, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if ff.err != nil {
		return nil, ff.err
	}
	r := &fakeRenderer{pages: ff.pages, entered: ff.entered, block: ff.block}
	ff.created = append(ff.created, r)
	ff.opened = append(ff.opened, pdf)
	return r, nil
}

func (ff *fakeFactory) count() int {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return len(ff.created)
}

func (ff *fakeFactory) renderer(i int) *fakeRenderer {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.created[i]
}
