// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"strings"
)

// userConfigMarker identifies the per-user config directory among search paths.
const userConfigMarker = "go-img2pdf"

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, userConfigMarker) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for many or very large images, use --timeout flag")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnsupportedImage lists the raster formats accepted as input.
func ForUnsupportedImage() string {
	return format("supported formats: JPEG, PNG, GIF, WebP, BMP, TIFF")
}

// ForMargin explains the margin unit and its upper bound.
func ForMargin() string {
	return format("margin is in millimeters and twice the margin must be smaller than the shortest page side")
}

// ForPreviewLoad returns hints for preview renderer failures.
func ForPreviewLoad() string {
	return formatHints([]string{
		"preview needs MuPDF: build with cgo or install the libmupdf shared library",
		"the PDF itself was still written",
	})
}

// ForPageRange returns the valid page range for a document of total pages.
func ForPageRange(total int) string {
	if total <= 0 {
		return format("convert images first")
	}
	return format(fmt.Sprintf("valid pages: 1-%d", total))
}

// ForEmptySession returns a hint for commands that need at least one image.
func ForEmptySession() string {
	return format("add images first, e.g. add ./scans")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
