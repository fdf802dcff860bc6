package img2pdf

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// Preview rendering constants.
const (
	// BaseDPI is the PDF user-space resolution (1 pt = 1/72 in).
	BaseDPI = 72.0

	// DefaultPreviewScale renders pages at 1.5x, i.e. 108 DPI.
	DefaultPreviewScale = 1.5
)

// PageRenderer rasterizes pages of one parsed document.
// Page indexes are 0-based. Implementations need not be safe for
// concurrent use.
type PageRenderer interface {
	NumPage() int
	RenderPage(index int, dpi float64) (image.Image, error)
	Close() error
}

// RendererFactory parses PDF bytes into a PageRenderer.
type RendererFactory func(pdf []byte) (PageRenderer, error)

// fitzRenderer renders through MuPDF.
type fitzRenderer struct {
	doc *fitz.Document
}

// OpenFitz parses pdf with MuPDF. It is the default RendererFactory.
func OpenFitz(pdf []byte) (PageRenderer, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, err
	}
	return &fitzRenderer{doc: doc}, nil
}

func (r *fitzRenderer) NumPage() int {
	return r.doc.NumPage()
}

func (r *fitzRenderer) RenderPage(index int, dpi float64) (image.Image, error) {
	img, err := r.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *fitzRenderer) Close() error {
	return r.doc.Close()
}

// PreviewState is the navigation position of a Preview.
type PreviewState struct {
	Current int // 1-based
	Total   int
}

// HasPrev reports whether a previous page exists.
func (s PreviewState) HasPrev() bool { return s.Current > 1 }

// HasNext reports whether a next page exists.
func (s PreviewState) HasNext() bool { return s.Current < s.Total }

// String returns "Page c of t".
func (s PreviewState) String() string {
	return fmt.Sprintf("Page %d of %d", s.Current, s.Total)
}

// PreviewOption configures OpenPreview and NewRendererPool.
type PreviewOption func(*previewConfig)

type previewConfig struct {
	scale float64
	open  RendererFactory
}

func newPreviewConfig(opts []PreviewOption) previewConfig {
	cfg := previewConfig{scale: DefaultPreviewScale, open: OpenFitz}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithScale sets the render scale relative to BaseDPI.
// Non-positive values are ignored.
func WithScale(scale float64) PreviewOption {
	return func(c *previewConfig) {
		if scale > 0 {
			c.scale = scale
		}
	}
}

// WithRenderer replaces the MuPDF renderer, e.g. in tests.
func WithRenderer(open RendererFactory) PreviewOption {
	return func(c *previewConfig) {
		if open != nil {
			c.open = open
		}
	}
}

// Preview pages through one document. Each Render call rasterizes the
// current page again; nothing is cached. Safe for concurrent use.
type Preview struct {
	mu       sync.Mutex
	renderer PageRenderer
	scale    float64
	current  int
	total    int
	closed   bool
}

// OpenPreview parses pdf and positions the preview on page 1.
// Parse failures and empty documents return ErrPreviewLoad.
func OpenPreview(pdf []byte, opts ...PreviewOption) (*Preview, error) {
	cfg := newPreviewConfig(opts)

	r, err := openRenderer(cfg.open, pdf)
	if err != nil {
		return nil, err
	}
	total := r.NumPage()
	if total < 1 {
		_ = r.Close()
		return nil, fmt.Errorf("%w: document has no pages", ErrPreviewLoad)
	}

	return &Preview{
		renderer: r,
		scale:    cfg.scale,
		current:  1,
		total:    total,
	}, nil
}

// openRenderer calls open and converts errors and panics to ErrPreviewLoad.
func openRenderer(open RendererFactory, pdf []byte) (r PageRenderer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("%w: %v", ErrPreviewLoad, rec)
		}
	}()

	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrPreviewLoad)
	}
	r, err = open(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreviewLoad, err)
	}
	return r, nil
}

// State returns the current position.
func (p *Preview) State() PreviewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PreviewState{Current: p.current, Total: p.total}
}

// DPI returns the render resolution.
func (p *Preview) DPI() float64 {
	return BaseDPI * p.scale
}

// Next advances one page, staying on the last page.
func (p *Preview) Next() PreviewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < p.total {
		p.current++
	}
	return PreviewState{Current: p.current, Total: p.total}
}

// Prev goes back one page, staying on the first page.
func (p *Preview) Prev() PreviewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current > 1 {
		p.current--
	}
	return PreviewState{Current: p.current, Total: p.total}
}

// Goto jumps to page n (1-based).
func (p *Preview) Goto(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > p.total {
		return fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, n, p.total)
	}
	p.current = n
	return nil
}

// Render rasterizes the current page.
func (p *Preview) Render() (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderLocked(p.current)
}

// RenderPage rasterizes page n (1-based) without moving the position.
func (p *Preview) RenderPage(n int) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > p.total {
		return nil, fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, n, p.total)
	}
	return p.renderLocked(n)
}

func (p *Preview) renderLocked(n int) (image.Image, error) {
	if p.closed {
		return nil, ErrPreviewClosed
	}
	img, err := p.renderer.RenderPage(n-1, BaseDPI*p.scale)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", n, err)
	}
	return img, nil
}

// Close releases the parsed document. Further renders fail.
func (p *Preview) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.renderer.Close()
}
