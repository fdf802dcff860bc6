package img2pdf

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-img2pdf/internal/imageproc"
)

// Image is one uploaded raster image. It is immutable once created.
type Image struct {
	Name      string // base file name
	Size      int64  // bytes
	SizeLabel string // e.g. "1.5 MB"
	Data      []byte // original file contents
	MIMEType  string // e.g. "image/jpeg"
	Format    string // decoder name: "jpeg", "png", "gif", "webp", "bmp", "tiff"
	Width     int    // pixels
	Height    int    // pixels
}

var formatMIME = map[string]string{
	imageproc.FormatJPEG: "image/jpeg",
	imageproc.FormatPNG:  "image/png",
	imageproc.FormatGIF:  "image/gif",
	imageproc.FormatWebP: "image/webp",
	imageproc.FormatBMP:  "image/bmp",
	imageproc.FormatTIFF: "image/tiff",
}

// NewImage validates data as an image called name.
//
// The file must look like an image, by extension or by content sniffing,
// and its header must decode with one of the registered decoders.
func NewImage(name string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrEmptyImage, name)
	}

	declared := sniffMIME(name, data)
	cfg, err := imageproc.DetectFormat(data)
	if err != nil {
		if !strings.HasPrefix(declared, "image/") {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotAnImage, name, declared)
		}
		if errors.Is(err, imageproc.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedImageFormat, name, declared)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImageFormat, name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrEmptyImage, name, cfg.Width, cfg.Height)
	}

	size := int64(len(data))
	return &Image{
		Name:      name,
		Size:      size,
		SizeLabel: FormatFileSize(size),
		Data:      data,
		MIMEType:  formatMIME[cfg.Format],
		Format:    cfg.Format,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}

// LoadImage reads path and validates it with NewImage.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("reading image %q: %w", path, err)
	}
	return NewImage(filepath.Base(path), data)
}

// DataURL returns the image as a base64 data URL.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// String returns "name (size label)".
func (img *Image) String() string {
	return fmt.Sprintf("%s (%s)", img.Name, img.SizeLabel)
}

// sniffMIME returns the MIME type implied by the extension when it is an
// image type, the sniffed content type otherwise.
func sniffMIME(name string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil && strings.HasPrefix(mt, "image/") {
			return mt
		}
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}
