// Package img2pdf assembles raster images into a multi-page PDF.
//
// # Quick Start
//
// Load images, convert them, and write the result:
//
//	img, err := img2pdf.LoadImage("scan.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv := img2pdf.NewConverter()
//	result, err := conv.Convert(ctx, img2pdf.Input{
//	    Images:  []*img2pdf.Image{img},
//	    Options: img2pdf.DefaultConversionOptions(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.PDF, 0644)
//
// # Conversion Pipeline
//
// Each image becomes one page, in order:
//
//  1. The image is prepared for the quality tier. With QualityHigh, JPEG
//     bytes are embedded unchanged and other formats become PNG. Lower
//     tiers re-encode as JPEG.
//  2. The layout is computed: fit to the area inside the margins, or
//     placed at intrinsic size, centered on the page either way.
//  3. The image is drawn and, if enabled, "Page i of N" is stamped at
//     the bottom.
//
// Pages are built sequentially. Any failure aborts the whole conversion.
//
// # Configuration
//
// Per-conversion options are passed via Input:
//
//	result, err := conv.Convert(ctx, img2pdf.Input{
//	    Images: images,
//	    Options: img2pdf.ConversionOptions{
//	        Page:        &img2pdf.PageSettings{Size: "letter", Orientation: "landscape", Margin: 15},
//	        Quality:     img2pdf.QualityMedium,
//	        FitToPage:   true,
//	        PageNumbers: true,
//	        Metadata:    &img2pdf.Metadata{Title: "Receipts", Author: "Finance"},
//	    },
//	})
//
// Converter-level options are functional:
//
//	conv := img2pdf.NewConverter(
//	    img2pdf.WithTimeout(30 * time.Second),
//	    img2pdf.WithLogger(slog.Default()),
//	)
//
// # Preview
//
// OpenPreview renders pages through MuPDF (go-fitz). Navigation is clamped
// to the document; every Render call draws the current page again.
//
//	prev, err := img2pdf.OpenPreview(result.PDF)
//	if err != nil {
//	    log.Fatal(err) // wraps ErrPreviewLoad
//	}
//	defer prev.Close()
//	page, err := prev.Render()
//
// For many pages at once, RendererPool and RenderPages render in parallel
// with one parsed document per worker.
//
// # Sessions
//
// Session keeps the state of an interactive run: uploaded images, the
// latest document, and the preview position. It guards against
// overlapping conversions and discards renders of superseded documents.
//
// # Error Handling
//
// Errors wrap sentinel values and can be checked with errors.Is:
//
//	if errors.Is(err, img2pdf.ErrNotAnImage) {
//	    // skip the file
//	}
//
// Upload errors: ErrNotAnImage, ErrUnsupportedImageFormat, ErrEmptyImage.
// Assembly errors: ErrNoImages, ErrDocumentBuild and the option
// validation errors. Preview errors: ErrPreviewLoad, ErrPageOutOfRange,
// ErrNoDocument, ErrStalePreview.
package img2pdf
