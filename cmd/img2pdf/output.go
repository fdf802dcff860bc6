package main

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/alnah/go-img2pdf/internal/fileutil"
	"github.com/alnah/go-img2pdf/internal/hints"
)

// filePermissions is rw-r--r-- for rendered pages.
const filePermissions = 0o644

// writePNG encodes img as PNG at path.
func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrWriteOutput, path, err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// pagePNGPath returns dir/<base>-page-<n>.png.
func pagePNGPath(dir, base string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-page-%d.png", base, n))
}

// parsePageRange expands a list such as "1,3-5" into sorted, unique
// 1-based page numbers within [1, total]. An empty spec selects all pages.
func parsePageRange(spec string, total int) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var pages []int
	for part := range strings.SplitSeq(spec, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPageRange, part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPageRange, part)
			}
		}
		if first > last {
			return nil, fmt.Errorf("%w: %q is descending", ErrInvalidPageRange, part)
		}
		if first < 1 || last > total {
			return nil, fmt.Errorf("%w: %q%s", ErrInvalidPageRange, part, hints.ForPageRange(total))
		}
		for n := first; n <= last; n++ {
			pages = append(pages, n)
		}
	}
	slices.Sort(pages)
	return slices.Compact(pages), nil
}
