// Package detector locates the quadrilateral that bounds a Sudoku grid
// in a color photograph. It is adapted from the contour-hierarchy corner
// finder in internal/alignment/corners.go (cm68-traces), generalized
// from "PCB board outline" to "any large square-like contour that
// encloses child contours" and driven by the multi-setting adaptive
// threshold sweep described in spec.md §4.1.
package detector

import (
	"image"

	"gocv.io/x/gocv"

	"sudokuscanner/pkg/geometry"
)

// workingResolution is the fixed shorter-side resolution the detector
// normalizes every input image to before searching for a grid (spec
// §4.1 step 1, "W = 480").
const workingResolution = 480

// thresholdSetting is one (blockSize, C) pair tried during the threshold
// sweep, biased toward large blocks first (spec §4.1 step 3).
type thresholdSetting struct {
	blockSize int
	c         float32
}

var thresholdSweep = []thresholdSetting{
	{69, 20},
	{45, 15},
	{23, 10},
	{13, 10},
	{9, 5},
}

// candidate is a polygon that survived the shape filters of step 4,
// carried alongside its contour area for the final largest-area select.
type candidate struct {
	points [4]image.Point
	area   float64
}

// Detect finds the largest prominent quadrilateral that plausibly
// bounds a Sudoku grid in img, and returns its four corners in
// source-image pixel coordinates, canonically ordered. It never fails:
// if no candidate passes every filter under every threshold setting, it
// returns the full-image rectangle (spec §4.1 step 6).
func Detect(img gocv.Mat) geometry.Quadrilateral {
	srcW, srcH := img.Cols(), img.Rows()
	if srcW == 0 || srcH == 0 {
		return geometry.UnitSquare()
	}

	working, tx, ty := normalizeScale(img)
	defer working.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(working, &gray, gocv.ColorBGRToGray)
	smoothed := preSmooth(gray)
	defer smoothed.Close()

	for _, setting := range thresholdSweep {
		binary := gocv.NewMat()
		gocv.AdaptiveThreshold(smoothed, &binary, 255, gocv.AdaptiveThresholdMean,
			gocv.ThresholdBinaryInv, setting.blockSize, setting.c)

		best, ok := bestCandidate(binary)
		binary.Close()
		if !ok {
			continue
		}

		quad := geometry.OrderCorners(toPoint2D(best.points))
		return reproject(quad, tx, ty)
	}

	return geometry.FullImageRect(srcW, srcH)
}

// normalizeScale downscales or upscales img so its shorter side equals
// workingResolution, using area interpolation to downscale and linear
// interpolation to upscale (spec §4.1 step 1 / §4.6). It returns the
// working-resolution copy and the (tx, ty) factors that map working
// coordinates back to source coordinates.
func normalizeScale(img gocv.Mat) (working gocv.Mat, tx, ty float64) {
	srcW, srcH := img.Cols(), img.Rows()
	dstSize, upscale := geometry.ResizeTarget(srcW, srcH, workingResolution)

	interp := gocv.InterpolationArea
	if upscale {
		interp = gocv.InterpolationLinear
	}

	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Point{X: dstSize.Width, Y: dstSize.Height}, 0, 0, interp)

	tx = float64(srcW) / float64(dstSize.Width)
	ty = float64(srcH) / float64(dstSize.Height)
	return dst, tx, ty
}

// preSmooth applies one level of pyramidal downsample then upsample,
// equivalent to a light Gaussian low-pass that suppresses texture noise
// while preserving straight lines (spec §4.1 step 2). It returns a new
// Mat rather than mutating gray in place, per the clone-before-mutate
// design note in spec.md §9.
func preSmooth(gray gocv.Mat) gocv.Mat {
	down := gocv.NewMat()
	defer down.Close()
	gocv.PyrDown(gray, &down, image.Point{}, gocv.BorderDefault)

	up := gocv.NewMat()
	gocv.PyrUp(down, &up, image.Point{}, gocv.BorderDefault)
	return up
}

// bestCandidate runs the contour hierarchy search (spec §4.1 step 4) and
// returns the largest-area passing candidate, if any.
func bestCandidate(binary gocv.Mat) (candidate, bool) {
	w, h := binary.Cols(), binary.Rows()
	minArea := float64(w*h) / 10

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(binary, &hierarchy, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()

	hdata, err := hierarchy.DataPtrInt32()
	if err != nil || contours.Size() == 0 {
		return candidate{}, false
	}

	var best candidate
	found := false

	for i := 0; i < contours.Size(); i++ {
		// hierarchy row i: [next, previous, firstChild, parent]
		firstChild := hdata[i*4+2]
		if firstChild < 0 {
			// A Sudoku grid always encloses cell contours; an empty
			// interior disqualifies this contour.
			continue
		}

		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area <= minArea {
			continue
		}

		perimeter := gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, 0.02*perimeter, true)
		pts := approxPoints(approx)
		approx.Close()

		if len(pts) != 4 {
			continue
		}
		if !geometry.IsConvex(pointsToSlice(pts)) {
			continue
		}
		if !isSquareLike(pts, area, perimeter) {
			continue
		}

		if !found || area > best.area {
			best = candidate{points: [4]image.Point{pts[0], pts[1], pts[2], pts[3]}, area: area}
			found = true
		}
	}

	return best, found
}

func approxPoints(approx gocv.PointVector) []image.Point {
	pts := make([]image.Point, approx.Size())
	for i := range pts {
		pts[i] = approx.At(i)
	}
	return pts
}

// isSquareLike implements the "square-like" test of spec §4.1 step 4:
// letting d1, d2 be the diagonals and d3, d4 two adjacent sides,
//
//	max(d3,d4) <= 4*min(d3,d4)   (aspect bound)
//	d3*d4 < 1.5*area             (near-convex quadrilateral, no extreme skew)
//	both diagonals >= 0.15*perimeter (non-degenerate)
func isSquareLike(pts []image.Point, area, perimeter float64) bool {
	p := func(i int) geometry.Point2D {
		return geometry.Point2D{X: float64(pts[i].X), Y: float64(pts[i].Y)}
	}

	d1 := p(0).Distance(p(2))
	d2 := p(1).Distance(p(3))
	d3 := p(0).Distance(p(1))
	d4 := p(1).Distance(p(2))

	maxSide, minSide := d3, d4
	if minSide > maxSide {
		maxSide, minSide = minSide, maxSide
	}
	if minSide <= 0 || maxSide > 4*minSide {
		return false
	}
	if d3*d4 >= 1.5*area {
		return false
	}
	minDiagonal := 0.15 * perimeter
	if d1 < minDiagonal || d2 < minDiagonal {
		return false
	}
	return true
}

// reproject maps a quadrilateral found in the (downscaled) working
// image back to source-image pixel coordinates using the inverse scale
// factors computed by normalizeScale.
func reproject(q geometry.Quadrilateral, tx, ty float64) geometry.Quadrilateral {
	return q.Scale(tx, ty)
}

func toPoint2D(pts [4]image.Point) [4]geometry.Point2D {
	var out [4]geometry.Point2D
	for i, p := range pts {
		out[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

func pointsToSlice(pts []image.Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}
