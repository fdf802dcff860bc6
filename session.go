package img2pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-img2pdf/internal/fileutil"
	"github.com/alnah/go-img2pdf/internal/imageproc"
	"github.com/alnah/go-img2pdf/internal/imagestore"
)

// defaultUploadWorkers bounds concurrent file reads in AddFiles.
const defaultUploadWorkers = 4

// documentPerm is the mode of saved documents.
const documentPerm = 0o644

// FileError records one file rejected by AddFiles.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// AddResult reports the outcome of AddFiles.
type AddResult struct {
	Added   []*Image     // completion order
	Skipped []*FileError // input order
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger for session events.
// A nil logger is ignored.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConverter replaces the default Converter.
func WithConverter(c *Converter) SessionOption {
	return func(s *Session) {
		if c != nil {
			s.conv = c
		}
	}
}

// WithPreviewOptions sets the options used to open previews.
func WithPreviewOptions(opts ...PreviewOption) SessionOption {
	return func(s *Session) {
		s.previewOpts = append(s.previewOpts, opts...)
	}
}

// WithUploadWorkers bounds concurrent reads in AddFiles.
// Non-positive values are ignored.
func WithUploadWorkers(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Session holds the state of one interactive conversion: the uploaded
// images, the latest document, and its preview position.
// Image indexes are 0-based. Safe for concurrent use.
type Session struct {
	store       *imagestore.Store[*Image]
	conv        *Converter
	previewOpts []PreviewOption
	workers     int
	log         *slog.Logger

	busy atomic.Bool

	mu         sync.Mutex // guards doc, preview, generation
	doc        *ConvertResult
	preview    *Preview
	generation uint64
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		store:   imagestore.New[*Image](),
		workers: defaultUploadWorkers,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.conv == nil {
		s.conv = NewConverter(WithLogger(s.log))
	}
	return s
}

// AddFiles reads paths concurrently and appends every accepted image as
// soon as its read completes, so store order follows completion order.
// Rejected files are reported in the result and leave the store unchanged.
// The error is non-nil only when ctx ends before all files were handled.
func (s *Session) AddFiles(ctx context.Context, paths ...string) (*AddResult, error) {
	var (
		mu      sync.Mutex
		added   []*Image
		skipped = make([]*FileError, len(paths))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := LoadImage(path)
			if err != nil {
				s.log.Warn("file skipped", "path", path, "error", err)
				skipped[i] = &FileError{Path: path, Err: err}
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			s.store.Append(img)
			added = append(added, img)
			s.log.Debug("image added", "name", img.Name, "size", img.SizeLabel)
			return nil
		})
	}
	err := g.Wait()

	return &AddResult{
		Added:   added,
		Skipped: lo.Compact(skipped),
	}, err
}

// AddImage appends an already validated image and returns its index.
func (s *Session) AddImage(img *Image) (int, error) {
	if img == nil || len(img.Data) == 0 {
		return 0, ErrEmptyImage
	}
	return s.store.Append(img), nil
}

// Remove deletes image i. Later images shift down by one.
func (s *Session) Remove(i int) (*Image, error) {
	img, err := s.store.Remove(i)
	if err != nil {
		return nil, s.indexError(err)
	}
	s.log.Debug("image removed", "name", img.Name, "index", i)
	return img, nil
}

// Move reorders image from so it ends up at index to.
func (s *Session) Move(from, to int) error {
	return s.indexError(s.store.Move(from, to))
}

// Clear removes every image. The current document is kept.
func (s *Session) Clear() {
	s.store.Clear()
}

// Image returns image i.
func (s *Session) Image(i int) (*Image, error) {
	img, err := s.store.At(i)
	if err != nil {
		return nil, s.indexError(err)
	}
	return img, nil
}

// Thumbnail decodes image i scaled to fit within maxW x maxH.
func (s *Session) Thumbnail(i, maxW, maxH int) (image.Image, error) {
	img, err := s.Image(i)
	if err != nil {
		return nil, err
	}
	return imageproc.Thumbnail(img.Data, maxW, maxH)
}

// Images returns the images in store order.
func (s *Session) Images() []*Image {
	return s.store.All()
}

// Len returns the number of images.
func (s *Session) Len() int {
	return s.store.Len()
}

// TotalSize returns the summed byte size of all images.
func (s *Session) TotalSize() int64 {
	return lo.SumBy(s.store.All(), func(img *Image) int64 { return img.Size })
}

// CanConvert reports whether a conversion may start: at least one image
// and no conversion already running.
func (s *Session) CanConvert() bool {
	return s.store.Len() > 0 && !s.busy.Load()
}

// Converting reports whether a conversion is running.
func (s *Session) Converting() bool {
	return s.busy.Load()
}

// Convert builds a document from the current images.
//
// Only one conversion runs at a time; a concurrent call returns
// ErrConversionInProgress. On success the new document replaces the old
// one and the preview restarts at page 1. On failure the previous
// document stays current.
func (s *Session) Convert(ctx context.Context, opts ConversionOptions) (*ConvertResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrConversionInProgress
	}
	defer s.busy.Store(false)

	images := s.store.All()
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	res, err := s.conv.Convert(ctx, Input{Images: images, Options: opts})
	if err != nil {
		s.log.Error("conversion failed", "error", err)
		return nil, err
	}

	s.mu.Lock()
	old := s.preview
	s.doc = res
	s.preview = nil
	s.generation++
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.log.Warn("closing previous preview", "error", err)
		}
	}

	s.log.Info(res.SuccessMessage(), "filename", res.Filename)
	return res, nil
}

// Document returns the latest document.
func (s *Session) Document() (*ConvertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	return s.doc, nil
}

// Preview returns the preview of the latest document, opening it on
// first use.
func (s *Session) Preview() (*Preview, error) {
	p, _, err := s.currentPreview()
	return p, err
}

// currentPreview returns the preview and the generation it belongs to.
func (s *Session) currentPreview() (*Preview, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, 0, ErrNoDocument
	}
	if s.preview == nil {
		p, err := OpenPreview(s.doc.PDF, s.previewOpts...)
		if err != nil {
			return nil, 0, err
		}
		s.preview = p
	}
	return s.preview, s.generation, nil
}

// RenderPreview rasterizes the current preview page.
//
// If a newer document replaces the current one while the page is being
// rendered, the result is discarded and ErrStalePreview is returned.
func (s *Session) RenderPreview() (image.Image, PreviewState, error) {
	p, gen, err := s.currentPreview()
	if err != nil {
		return nil, PreviewState{}, err
	}

	state := p.State()
	img, err := p.Render()

	s.mu.Lock()
	stale := gen != s.generation
	s.mu.Unlock()
	if stale {
		return nil, PreviewState{}, ErrStalePreview
	}
	if err != nil {
		return nil, state, err
	}
	return img, state, nil
}

// NextPage advances the preview one page.
func (s *Session) NextPage() (PreviewState, error) {
	p, err := s.Preview()
	if err != nil {
		return PreviewState{}, err
	}
	return p.Next(), nil
}

// PrevPage moves the preview back one page.
func (s *Session) PrevPage() (PreviewState, error) {
	p, err := s.Preview()
	if err != nil {
		return PreviewState{}, err
	}
	return p.Prev(), nil
}

// GotoPage moves the preview to page n (1-based).
func (s *Session) GotoPage(n int) (PreviewState, error) {
	p, err := s.Preview()
	if err != nil {
		return PreviewState{}, err
	}
	if err := p.Goto(n); err != nil {
		return p.State(), err
	}
	return p.State(), nil
}

// Save writes the latest document into dir under its suggested filename
// and returns the written path. An empty dir means the working directory.
func (s *Session) Save(dir string) (string, error) {
	doc, err := s.Document()
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if !fileutil.IsDir(dir) {
		return "", fmt.Errorf("%w: %s", ErrOutputDirectory, dir)
	}

	path := filepath.Join(dir, doc.Filename)
	if err := fileutil.WriteFileAtomic(path, doc.PDF, documentPerm); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	s.log.Info("document saved", "path", path, "size", FormatFileSize(int64(len(doc.PDF))))
	return path, nil
}

// Close releases the preview. The session stays usable.
func (s *Session) Close() error {
	s.mu.Lock()
	p := s.preview
	s.preview = nil
	s.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Close()
}

// indexError maps store index errors to ErrIndexOutOfRange.
func (s *Session) indexError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, imagestore.ErrIndexOutOfRange) {
		return fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
	}
	return err
}
