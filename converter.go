package img2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-img2pdf/internal/imageproc"
	"github.com/alnah/go-img2pdf/internal/layout"
)

// Compile-time interface implementation checks.
var (
	_ documentBuilder = (*fpdfBuilder)(nil)
	_ PageRenderer    = (*fitzRenderer)(nil)
)

// Converter assembles images into a PDF, one page per image.
// A Converter holds no per-conversion state and is safe for concurrent use.
type Converter struct {
	cfg        converterConfig
	newBuilder func(documentSpec) documentBuilder
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithLogger).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			logger:  slog.New(slog.DiscardHandler),
			creator: DefaultCreator,
			now:     time.Now,
		},
		newBuilder: newFpdfBuilder,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert builds the document for input.Images in order.
//
// Pages are assembled strictly sequentially. Any failure aborts the whole
// conversion and no partial document is returned. The context is checked
// between pages and bounded by the converter timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: internal error: %v", ErrDocumentBuild, r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	opts := input.Options
	page := opts.Page.orDefault()
	pageW, pageH := page.Dimensions()
	pageSize := layout.Size{W: pageW, H: pageH}
	quality := opts.Quality
	if quality == "" {
		quality = QualityHigh
	}
	meta := opts.Metadata.resolved()
	createdAt := c.cfg.now()

	log := c.cfg.logger.With("pages", len(input.Images), "size", page.Size, "quality", string(quality))
	log.Debug("conversion started")

	builder := c.newBuilder(documentSpec{
		Page:      page,
		Metadata:  meta,
		Creator:   c.cfg.creator,
		CreatedAt: createdAt,
	})

	total := len(input.Images)
	layouts := make([]PageLayout, 0, total)
	for i, img := range input.Images {
		n := i + 1
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: stopped before page %d: %w", ErrDocumentBuild, n, err)
		}

		enc, err := imageproc.Prepare(img.Data, img.Format, quality.JPEGQuality())
		if err != nil {
			return nil, fmt.Errorf("%w: page %d (%s): %w", ErrDocumentBuild, n, img.Name, err)
		}

		place := layout.Compute(
			layout.Size{W: float64(enc.Width), H: float64(enc.Height)},
			pageSize, page.Margin, opts.FitToPage,
		)
		if err := builder.AddImagePage(img.Name, enc, place); err != nil {
			return nil, fmt.Errorf("%w: page %d (%s): %w", ErrDocumentBuild, n, img.Name, err)
		}
		if opts.PageNumbers {
			if err := builder.StampPageNumber(n, total); err != nil {
				return nil, fmt.Errorf("%w: page %d number: %w", ErrDocumentBuild, n, err)
			}
		}

		log.Debug("page placed", "page", n, "image", img.Name, "scale", place.Scale, "encoding", enc.Type)
		layouts = append(layouts, PageLayout{
			Page:       n,
			Image:      img.Name,
			Encoding:   enc.Type,
			PageWidth:  pageW,
			PageHeight: pageH,
			X:          place.X,
			Y:          place.Y,
			Width:      place.Width,
			Height:     place.Height,
			Scale:      place.Scale,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: stopped before output: %w", ErrDocumentBuild, err)
	}
	data, err := builder.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: writing output: %w", ErrDocumentBuild, err)
	}

	log.Info("document built", "bytes", len(data))

	var title string
	if opts.Metadata != nil {
		title = opts.Metadata.Title
	}
	return &ConvertResult{
		PDF:       data,
		Pages:     layouts,
		Metadata:  meta,
		Filename:  Filename(title),
		CreatedAt: createdAt,
	}, nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their config validated earlier by Config.Validate().
func (c *Converter) validateInput(input Input) error {
	if len(input.Images) == 0 {
		return ErrNoImages
	}
	for i, img := range input.Images {
		if img == nil || len(img.Data) == 0 {
			return fmt.Errorf("%w: image %d has no data", ErrEmptyImage, i+1)
		}
	}
	return input.Options.Validate()
}
