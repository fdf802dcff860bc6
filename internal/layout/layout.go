// Package layout maps image pixel dimensions onto page coordinates.
//
// All functions are pure. Page dimensions, margins and results share the
// same unit (millimeters in this module); image dimensions are pixels.
package layout

import "math"

// Size is a width/height pair.
type Size struct {
	W float64
	H float64
}

// Placement is where an image lands on a page.
type Placement struct {
	X      float64 // left offset from the page edge
	Y      float64 // top offset from the page edge
	Width  float64
	Height float64
	Scale  float64 // 1 when fit is disabled, 0 for degenerate input
}

// Available returns the page area left after reserving margin on all four sides.
// Negative results are clamped to zero.
func Available(page Size, margin float64) Size {
	return Size{
		W: math.Max(0, page.W-2*margin),
		H: math.Max(0, page.H-2*margin),
	}
}

// Compute places an image of intrinsic size img on a page.
//
// With fit enabled the image is scaled uniformly by
// min(available.W/img.W, available.H/img.H), which preserves its aspect
// ratio and makes it touch the margin-reduced area on at least one axis.
// With fit disabled the intrinsic dimensions are used as-is.
// Either way the result is centered on the page.
//
// A zero or negative image dimension yields a zero-size placement at the
// page center with Scale 0.
func Compute(img, page Size, margin float64, fit bool) Placement {
	if img.W <= 0 || img.H <= 0 {
		return Placement{X: page.W / 2, Y: page.H / 2}
	}

	scale := 1.0
	if fit {
		avail := Available(page, margin)
		scale = math.Min(avail.W/img.W, avail.H/img.H)
	}

	w := img.W * scale
	h := img.H * scale
	return Placement{
		X:      (page.W - w) / 2,
		Y:      (page.H - h) / 2,
		Width:  w,
		Height: h,
		Scale:  scale,
	}
}
