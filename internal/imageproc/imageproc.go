// Package imageproc detects raster formats and prepares image bytes for
// embedding in a PDF page.
//
// gofpdf accepts only JPEG, 8-bit PNG and GIF streams. Everything else is
// decoded here and re-encoded into one of the first two.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Format names as reported by image.DecodeConfig.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// Embedded stream types understood by the PDF writer.
const (
	TypeJPEG = "JPG"
	TypePNG  = "PNG"
)

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("decoding image")
	ErrEncode            = errors.New("encoding image")
)

// Orientation values of the EXIF Orientation tag.
const (
	// OrientationNormal is also reported when the tag is absent.
	OrientationNormal = 1

	// Orientations from this value up turn the image a quarter turn, so
	// the displayed width is the stored height.
	orientationTransposed = 5

	orientationMax = 8
)

// uprightJPEGQuality re-encodes JPEGs that must be rotated on the lossless
// tier. The pixel data has to be decoded to apply the rotation.
const uprightJPEGQuality = 100

// Config describes an image without decoding its pixels. Width and Height
// are the displayed dimensions, after the EXIF orientation is applied.
type Config struct {
	Format      string
	Width       int
	Height      int
	Orientation int // EXIF orientation, 1-8
}

// Encoded is an image ready to be embedded.
type Encoded struct {
	Data   []byte
	Type   string // TypeJPEG or TypePNG
	Width  int
	Height int
}

// DetectFormat reads the image header and returns its format and size.
func DetectFormat(data []byte) (Config, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Config{}, ErrUnsupportedFormat
		}
		return Config{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !IsSupported(format) {
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	out := Config{Format: format, Width: cfg.Width, Height: cfg.Height, Orientation: OrientationNormal}
	if format == FormatJPEG {
		out.Orientation = Orientation(data)
		if out.Orientation >= orientationTransposed {
			out.Width, out.Height = out.Height, out.Width
		}
	}
	return out, nil
}

// Orientation returns the EXIF orientation stored in a JPEG stream, or
// OrientationNormal when there is none or it cannot be read.
func Orientation(data []byte) (o int) {
	defer func() {
		if recover() != nil {
			o = OrientationNormal
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return OrientationNormal
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationNormal
	}
	v, err := tag.Int(0)
	if err != nil || v < OrientationNormal || v > orientationMax {
		return OrientationNormal
	}
	return v
}

// IsSupported reports whether format has a registered decoder here.
func IsSupported(format string) bool {
	switch format {
	case FormatJPEG, FormatPNG, FormatGIF, FormatWebP, FormatBMP, FormatTIFF:
		return true
	}
	return false
}

// Prepare converts data into an embeddable stream.
//
// jpegQuality <= 0 selects the lossless path: JPEG input is returned
// unchanged and every other format becomes an 8-bit PNG with alpha kept.
// A JPEG with a non-normal EXIF orientation cannot pass through, since the
// PDF writer ignores EXIF, and is re-encoded upright at quality 100.
// A positive jpegQuality (1-100) decodes the image with EXIF orientation
// applied, flattens transparency onto white and re-encodes it as JPEG.
// All paths yield the same displayed geometry.
func Prepare(data []byte, format string, jpegQuality int) (*Encoded, error) {
	if jpegQuality <= 0 && format == FormatJPEG {
		cfg, err := DetectFormat(data)
		if err != nil {
			return nil, err
		}
		if cfg.Orientation == OrientationNormal {
			return &Encoded{Data: data, Type: TypeJPEG, Width: cfg.Width, Height: cfg.Height}, nil
		}
		jpegQuality = uprightJPEGQuality
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	bounds := img.Bounds()

	var buf bytes.Buffer
	var typ string
	if jpegQuality <= 0 {
		// Clone normalizes to NRGBA so 16-bit sources come out as 8-bit PNG.
		if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		typ = TypePNG
	} else {
		if jpegQuality > 100 {
			jpegQuality = 100
		}
		flat := Flatten(img, color.White)
		if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		typ = TypeJPEG
	}

	return &Encoded{
		Data:   buf.Bytes(),
		Type:   typ,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Flatten composites img over an opaque background of color bg.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// Thumbnail decodes data and scales it to fit within maxW x maxH,
// keeping the aspect ratio. Images already smaller are not enlarged.
func Thumbnail(data []byte, maxW, maxH int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if maxW <= 0 || maxH <= 0 {
		return img, nil
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos), nil
}
