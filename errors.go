package img2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// Upload errors. The file is skipped and the store is unchanged.
	ErrNotAnImage             = errors.New("file is not an image")
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	ErrEmptyImage             = errors.New("image has no pixels")

	// Assembly errors. No document is produced.
	ErrNoImages      = errors.New("at least one image is required")
	ErrDocumentBuild = errors.New("PDF assembly failed")

	// Option validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidQuality     = errors.New("invalid image quality")
	ErrFieldTooLong       = errors.New("field exceeds maximum length")

	// Preview errors.
	ErrPreviewLoad    = errors.New("error loading PDF preview")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoDocument     = errors.New("no document converted yet")
	ErrStalePreview   = errors.New("preview superseded by a newer document")
	ErrPreviewClosed  = errors.New("preview is closed")

	// Session errors.
	ErrConversionInProgress = errors.New("conversion already in progress")
	ErrIndexOutOfRange      = errors.New("image index out of range")
	ErrInspect              = errors.New("PDF inspection failed")
	ErrOutputDirectory      = errors.New("output directory does not exist")
)
