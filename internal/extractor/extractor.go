// Package extractor rectifies a detected quadrilateral into a square
// Sudoku grid, removes the printed grid lines, isolates each cell's
// digit glyph, and classifies the survivors into an 81-byte Grid. It is
// the most intricate stage of the pipeline (spec.md §4.2), adapted from
// the morphological line-removal and bounding-box idioms used
// throughout internal/alignment/contact_bounds.go and the perspective
// warp in internal/alignment/transform.go, generalized from PCB contact
// pads to Sudoku digit glyphs.
package extractor

import (
	"image"

	"gocv.io/x/gocv"

	"sudokuscanner/internal/sudoku"
	"sudokuscanner/pkg/geometry"
)

const (
	// gridSize is the side of the rectified square grid in pixels
	// (spec §4.2 step 1, "G = 450").
	gridSize = 450
	// cellSize is gridSize/9: each cell is 50x50 pixels once rectified.
	cellSize = gridSize / sudoku.Size

	rectifyBlockSize = 53
	rectifyC         = 10

	minComponentPixels = 35
	scanWindowPad      = 2
)

// Classify maps a glyph tile to a recognized digit 1..9. It is supplied
// by internal/scanner, which wires it to internal/classifier so that
// this package stays free of any classifier-backend concerns.
type Classify func(glyph image.Image) byte

// Extract rectifies img using quad, isolates each cell's digit glyph,
// classifies the non-empty ones via classify, and packs the result into
// a Grid. quad must already satisfy geometry.Quadrilateral.Validate;
// callers are expected to obtain quadrilaterals only from the detector
// or validated construction (spec §7 — a malformed quadrilateral here is
// a fatal precondition violation, not a recoverable error).
func Extract(img gocv.Mat, quad geometry.Quadrilateral, classify Classify) sudoku.Grid {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	rectified := rectify(gray, quad)
	defer rectified.Close()

	thresh := gocv.NewMat()
	gocv.AdaptiveThreshold(rectified, &thresh, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, rectifyBlockSize, rectifyC)
	defer thresh.Close()

	removeGridLines(thresh)

	var grid sudoku.Grid
	for row := 0; row < sudoku.Size; row++ {
		for col := 0; col < sudoku.Size; col++ {
			cellRect := image.Rect(col*cellSize, row*cellSize, (col+1)*cellSize, (row+1)*cellSize)

			cellThresh := thresh.Region(cellRect)
			bbox, ok := isolateDigit(cellThresh)
			cellThresh.Close()

			if !ok {
				continue // cell stays 0: empty
			}

			cellGray := rectified.Region(cellRect)
			tileRect := squareAndPad(bbox, cellSize, scanWindowPad)
			tile := cellGray.Region(tileRect)

			glyph, err := tile.ToImage()
			tile.Close()
			cellGray.Close()
			if err != nil {
				continue
			}

			digit := classify(glyph)
			grid.Set(row, col, digit)
		}
	}

	return grid
}

// rectify computes the perspective transform mapping quad's four
// corners to the corners of a gridSize x gridSize square and warps gray
// into that square (spec §4.2 step 1).
func rectify(gray gocv.Mat, quad geometry.Quadrilateral) gocv.Mat {
	src := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: float32(quad.TL.X), Y: float32(quad.TL.Y)},
		{X: float32(quad.TR.X), Y: float32(quad.TR.Y)},
		{X: float32(quad.BL.X), Y: float32(quad.BL.Y)},
		{X: float32(quad.BR.X), Y: float32(quad.BR.Y)},
	})
	defer src.Close()

	dst := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: 0, Y: 0},
		{X: gridSize - 1, Y: 0},
		{X: 0, Y: gridSize - 1},
		{X: gridSize - 1, Y: gridSize - 1},
	})
	defer dst.Close()

	transform := gocv.GetPerspectiveTransform(src, dst)
	defer transform.Close()

	out := gocv.NewMat()
	gocv.WarpPerspective(gray, &out, transform, image.Point{X: gridSize, Y: gridSize})
	return out
}

// removeGridLines mutates thresh in place so that printed grid-line
// pixels become white (background), leaving only digit glyphs as dark
// regions (spec §4.2 step 3). Long horizontal and vertical structures
// are found by morphological opening, unioned, dilated to cover
// anti-aliased edges, and OR'd back into the non-inverted threshold.
func removeGridLines(thresh gocv.Mat) {
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(thresh, &inverted)

	horizKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: int(0.8 * cellSize), Y: 1})
	defer horizKernel.Close()
	horiz := gocv.NewMat()
	defer horiz.Close()
	gocv.MorphologyEx(inverted, &horiz, gocv.MorphOpen, horizKernel)

	vertKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 1, Y: int(0.9 * cellSize)})
	defer vertKernel.Close()
	vert := gocv.NewMat()
	defer vert.Close()
	gocv.MorphologyEx(inverted, &vert, gocv.MorphOpen, vertKernel)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.BitwiseOr(horiz, vert, &lines)

	dilateKernel := gocv.GetStructuringElement(gocv.MorphCross, image.Point{X: 5, Y: 5})
	defer dilateKernel.Close()
	gocv.Dilate(lines, &lines, dilateKernel)

	gocv.BitwiseOr(thresh, lines, &thresh)
}

// isolateDigit scans the centered sub-window of cellThresh for dark
// pixels, flood-fills each seed, discards small or implausibly-shaped
// components, and returns the bounding box of the largest survivor in
// cell-local coordinates (spec §4.2 step 4). The flood fill is
// destructive on cellThresh (dark -> white), which both traverses and
// deduplicates.
func isolateDigit(cellThresh gocv.Mat) (image.Rectangle, bool) {
	scanSize := cellSize / 3
	scanMin := (cellSize - scanSize) / 2
	scanMax := cellSize - scanMin

	var best image.Rectangle
	bestArea := 0
	found := false

	for y := scanMin; y < scanMax; y++ {
		for x := scanMin; x < scanMax; x++ {
			if cellThresh.GetUCharAt(y, x) >= 255 {
				continue
			}
			points := floodFillWhite(cellThresh, x, y)
			if len(points) < minComponentPixels {
				continue
			}

			bbox := boundingBox(points)
			h, w := bbox.Dy(), bbox.Dx()
			if h < int(0.2*cellSize) || h > int(0.9*cellSize) {
				continue
			}
			if w < int(0.1*cellSize) || w > int(0.8*cellSize) {
				continue
			}

			area := w * h
			if !found || area > bestArea {
				best, bestArea, found = bbox, area, true
			}
		}
	}

	return best, found
}

// floodFillWhite performs a 4-connected flood fill starting at (x, y),
// turning every visited dark pixel white and collecting its coordinates.
// It uses an explicit stack rather than recursion (spec.md §9's design
// note: a naive recursive flood fill on a 50x50 cell can recurse ~2,500
// deep).
func floodFillWhite(m gocv.Mat, x, y int) []image.Point {
	width, height := m.Cols(), m.Rows()

	points := make([]image.Point, 0, minComponentPixels)
	stack := make([]image.Point, 0, minComponentPixels)

	m.SetUCharAt(y, x, 255)
	points = append(points, image.Point{X: x, Y: y})
	stack = append(stack, image.Point{X: x, Y: y})

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbors := [4]image.Point{
			{X: p.X - 1, Y: p.Y},
			{X: p.X + 1, Y: p.Y},
			{X: p.X, Y: p.Y - 1},
			{X: p.X, Y: p.Y + 1},
		}
		for _, n := range neighbors {
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				continue
			}
			if m.GetUCharAt(n.Y, n.X) >= 255 {
				continue
			}
			m.SetUCharAt(n.Y, n.X, 255)
			points = append(points, n)
			stack = append(stack, n)
		}
	}

	return points
}

func boundingBox(points []image.Point) image.Rectangle {
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	r.Max.X++
	r.Max.Y++
	return r
}

// squareAndPad expands bbox to a square by centering the shorter
// dimension, pads by pad pixels on all sides, and clamps to
// [0, size)^2 (spec §4.2 step 5).
func squareAndPad(bbox image.Rectangle, size, pad int) image.Rectangle {
	w, h := bbox.Dx(), bbox.Dy()
	tl, br := bbox.Min, bbox.Max

	switch {
	case h > w:
		dx := (h - w) / 2
		tl.X = clamp(tl.X-dx, 0, size)
		br.X = clamp(br.X+dx, 0, size)
	case w > h:
		dy := (w - h) / 2
		tl.Y = clamp(tl.Y-dy, 0, size)
		br.Y = clamp(br.Y+dy, 0, size)
	}

	tl.X = clamp(tl.X-pad, 0, size)
	tl.Y = clamp(tl.Y-pad, 0, size)
	br.X = clamp(br.X+pad, 0, size)
	br.Y = clamp(br.Y+pad, 0, size)

	return image.Rectangle{Min: tl, Max: br}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
