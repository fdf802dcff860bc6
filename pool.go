package img2pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps parsed document copies to bound memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the MuPDF rasterizer threads.
	cpuDivisor = 2
)

// errPoolClosed is returned by Acquire after Close.
var errPoolClosed = errors.New("renderer pool is closed")

// RendererPool holds independent renderers over the same PDF so pages can
// be rasterized in parallel. A MuPDF document is not safe for concurrent
// use, so each worker gets its own parsed copy.
// Renderers are created lazily on first acquire to avoid startup delay.
type RendererPool struct {
	pdf       []byte
	open      RendererFactory
	size      int
	renderers []PageRenderer
	sem       chan PageRenderer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewRendererPool creates a pool with capacity for n renderers over pdf.
// Only the renderer factory option applies.
func NewRendererPool(pdf []byte, n int, opts ...PreviewOption) *RendererPool {
	if n < 1 {
		n = 1
	}
	cfg := newPreviewConfig(opts)

	return &RendererPool{
		pdf:       pdf,
		open:      cfg.open,
		size:      n,
		renderers: make([]PageRenderer, 0, n),
		sem:       make(chan PageRenderer, n),
	}
}

// Acquire gets a renderer from the pool, creating one if needed.
// Blocks until one is released or ctx is done.
func (p *RendererPool) Acquire(ctx context.Context) (PageRenderer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errPoolClosed
	}

	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, errPoolClosed
		}
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Parse outside the lock
		r, err := openRenderer(p.open, p.pdf)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()

		return r, nil
	}
	p.mu.Unlock()

	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, errPoolClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a renderer to the pool.
// The lock is held while sending so Close cannot close sem underneath;
// sem has room for every renderer so the send never blocks.
func (p *RendererPool) Release(r PageRenderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close releases every parsed document.
// Returns an aggregated error if multiple renderers fail to close.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// RenderedPage is one rasterized page.
type RenderedPage struct {
	Page  int // 1-based
	Image image.Image
}

// RenderPages rasterizes pages (1-based) at dpi using the pool's workers.
// Results keep the order of pages. The first failure cancels the rest.
func RenderPages(ctx context.Context, pool *RendererPool, pages []int, dpi float64) ([]RenderedPage, error) {
	out := make([]RenderedPage, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.Size())
	for i, n := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}
			defer pool.Release(r)

			if n < 1 || n > r.NumPage() {
				return fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, n, r.NumPage())
			}
			img, err := r.RenderPage(n-1, dpi)
			if err != nil {
				return fmt.Errorf("rendering page %d: %w", n, err)
			}
			out[i] = RenderedPage{Page: n, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
