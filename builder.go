package img2pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-img2pdf/internal/imageproc"
	"github.com/alnah/go-img2pdf/internal/layout"
)

// Page number stamp style.
const (
	pageNumberFont     = "Helvetica"
	pageNumberSize     = 10
	pageNumberGray     = 128
	pageNumberFromBase = 10 // mm above the bottom edge
)

// documentSpec is what a builder needs to start a document.
type documentSpec struct {
	Page      *PageSettings
	Metadata  Metadata
	Creator   string
	CreatedAt time.Time
}

// documentBuilder assembles pages one at a time. Implementations are not
// safe for concurrent use.
type documentBuilder interface {
	// AddImagePage starts a new page and draws enc at place.
	AddImagePage(name string, enc *imageproc.Encoded, place layout.Placement) error
	// StampPageNumber writes "Page n of total" on the current page.
	StampPageNumber(n, total int) error
	// Bytes serializes the document. The builder is unusable afterwards.
	Bytes() ([]byte, error)
}

// fpdfBuilder builds documents with gofpdf.
type fpdfBuilder struct {
	pdf    *gofpdf.Fpdf
	pageW  float64
	pageH  float64
	images int
}

func newFpdfBuilder(spec documentSpec) documentBuilder {
	page := spec.Page.orDefault()
	dims := pageSizes[strings.ToLower(page.Size)]
	if dims == [2]float64{} {
		dims = pageSizes[PageSizeA4]
	}

	orientation := "P"
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		orientation = "L"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: dims[0], Ht: dims[1]},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	pdf.SetTitle(spec.Metadata.Title, true)
	if spec.Metadata.Author != "" {
		pdf.SetAuthor(spec.Metadata.Author, true)
	}
	if spec.Metadata.Subject != "" {
		pdf.SetSubject(spec.Metadata.Subject, true)
	}
	if spec.Creator != "" {
		pdf.SetCreator(spec.Creator, true)
	}
	if !spec.CreatedAt.IsZero() {
		pdf.SetCreationDate(spec.CreatedAt)
	}

	w, h := pdf.GetPageSize()
	return &fpdfBuilder{pdf: pdf, pageW: w, pageH: h}
}

func (b *fpdfBuilder) AddImagePage(name string, enc *imageproc.Encoded, place layout.Placement) error {
	b.pdf.AddPage()
	if place.Width <= 0 || place.Height <= 0 {
		return b.pdf.Error()
	}

	id := fmt.Sprintf("img%d", b.images)
	b.images++

	opts := gofpdf.ImageOptions{ImageType: enc.Type, AllowNegativePosition: true}
	b.pdf.RegisterImageOptionsReader(id, opts, bytes.NewReader(enc.Data))
	if b.pdf.Err() {
		return fmt.Errorf("registering %s: %w", name, b.pdf.Error())
	}

	b.pdf.ImageOptions(id, place.X, place.Y, place.Width, place.Height, false, opts, 0, "")
	if b.pdf.Err() {
		return fmt.Errorf("placing %s: %w", name, b.pdf.Error())
	}
	return nil
}

func (b *fpdfBuilder) StampPageNumber(n, total int) error {
	text := PageNumberText(n, total)

	b.pdf.SetFont(pageNumberFont, "", pageNumberSize)
	b.pdf.SetTextColor(pageNumberGray, pageNumberGray, pageNumberGray)
	w := b.pdf.GetStringWidth(text)
	b.pdf.Text(b.pageW/2-w/2, b.pageH-pageNumberFromBase, text)
	return b.pdf.Error()
}

func (b *fpdfBuilder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PageNumberText returns the page stamp "Page n of total".
func PageNumberText(n, total int) string {
	return fmt.Sprintf("Page %d of %d", n, total)
}
