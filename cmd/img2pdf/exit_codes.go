package main

import (
	"errors"
	"os"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
	"github.com/alnah/go-img2pdf/internal/fileutil"
)

// Exit codes for the img2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitRender  = 4 // PDF assembly, rendering or parsing errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 4)
	if errors.Is(err, img2pdf.ErrDocumentBuild) ||
		errors.Is(err, img2pdf.ErrPreviewLoad) ||
		errors.Is(err, img2pdf.ErrInspect) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrNoInputs) ||
		errors.Is(err, img2pdf.ErrOutputDirectory) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidPageRange) ||
		errors.Is(err, img2pdf.ErrNoImages) ||
		errors.Is(err, img2pdf.ErrInvalidPageSize) ||
		errors.Is(err, img2pdf.ErrInvalidOrientation) ||
		errors.Is(err, img2pdf.ErrInvalidMargin) ||
		errors.Is(err, img2pdf.ErrInvalidQuality) ||
		errors.Is(err, img2pdf.ErrFieldTooLong) ||
		errors.Is(err, img2pdf.ErrPageOutOfRange) {
		return ExitUsage
	}

	return ExitGeneral
}
