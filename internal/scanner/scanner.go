// Package scanner is the façade that assembles imageio, detector,
// extractor, and classifier into the three atomic operations exposed
// across the FFI boundary (spec.md §4.4, §6): detect a grid's bounding
// quadrilateral, extract a grid given a normalized quadrilateral, and
// extract a grid from a square region of interest without a prior
// detect call.
package scanner

import (
	"log"

	"gocv.io/x/gocv"

	"sudokuscanner/internal/classifier"
	"sudokuscanner/internal/detector"
	"sudokuscanner/internal/extractor"
	"sudokuscanner/internal/imageio"
	"sudokuscanner/internal/sudoku"
	"sudokuscanner/pkg/geometry"
)

// Detect loads the image at path and returns the bounding quadrilateral
// of its Sudoku grid, normalized to [0,1]^2 relative to the source
// image's dimensions. An unreadable or empty image yields the
// well-defined unit-square quadrilateral (spec.md §7) rather than an
// error, since this operation must never fail across the FFI boundary.
func Detect(path string) geometry.Quadrilateral {
	img, err := imageio.Load(path)
	if err != nil {
		return geometry.UnitSquare()
	}
	defer img.Close()

	pixelQuad := detector.Detect(img)
	return pixelQuad.Scale(1/float64(img.Cols()), 1/float64(img.Rows()))
}

// Extract loads the image at path, scales normalizedQuad back to pixel
// space, and extracts a Grid from it. A normalizedQuad that fails the
// quadrilateral invariants (spec.md §3) is a fatal precondition
// violation: callers are expected to only ever pass quadrilaterals
// obtained from Detect or by validated construction (spec.md §7).
func Extract(path string, normalizedQuad geometry.Quadrilateral) sudoku.Grid {
	img, err := imageio.Load(path)
	if err != nil {
		return sudoku.Zero()
	}
	defer img.Close()

	pixelQuad := normalizedQuad.Scale(float64(img.Cols()), float64(img.Rows()))
	if err := pixelQuad.Validate(); err != nil {
		log.Fatalf("scanner: malformed quadrilateral passed to Extract: %v", err)
	}

	return extractor.Extract(img, pixelQuad, classifier.Predict)
}

// ExtractFromROI loads the image at path, crops a roiSide x roiSide
// square centered horizontally and offset vertically by roiOffsetY from
// the image center, runs the detector on the crop, and extracts a Grid
// from the detected quadrilateral on that same crop. It needs no prior
// Detect call on the full image, for callers (e.g. a live camera
// viewfinder) that already know roughly where the grid sits in frame.
func ExtractFromROI(path string, roiSide, roiOffsetY int) sudoku.Grid {
	img, err := imageio.Load(path)
	if err != nil {
		return sudoku.Zero()
	}
	defer img.Close()

	crop := cropROI(img, roiSide, roiOffsetY)
	defer crop.Close()

	quad := detector.Detect(crop)
	return extractor.Extract(crop, quad, classifier.Predict)
}

// cropROI returns a roiSide x roiSide square region of img, centered
// horizontally and shifted vertically by roiOffsetY from the image's
// center, clamped to stay within img's bounds.
func cropROI(img gocv.Mat, roiSide, roiOffsetY int) gocv.Mat {
	cols, rows := img.Cols(), img.Rows()

	side := roiSide
	if side <= 0 || side > cols || side > rows {
		side = min(cols, rows)
	}

	cx := cols/2 - side/2
	cy := rows/2 + roiOffsetY - side/2
	cx = clamp(cx, 0, cols-side)
	cy = clamp(cy, 0, rows-side)

	rect := geometry.Rect{X: cx, Y: cy, Width: side, Height: side}
	region := img.Region(rect.ToImageRectangle())
	defer region.Close()
	return region.Clone()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
