// Package geometry provides the point, rectangle, and quadrilateral types
// shared by the detector, extractor, and scanner facade.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(sx, sy float64) Point2D {
	return Point2D{X: p.X * sx, Y: p.Y * sy}
}

// Rect represents an axis-aligned rectangle with integer coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// ToImageRectangle converts r to the image/draw-compatible corner form
// gocv's Mat.Region and Resize calls expect.
func (r Rect) ToImageRectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Size represents a 2D pixel size.
type Size struct {
	Width, Height int
}

// Quadrilateral holds four corners in the canonical order used throughout
// this module: top-left, top-right, bottom-left, bottom-right.
//
// Invariants (validated by Validate): corners distinct; TL.X <= TR.X;
// TL.Y <= BL.Y; BL.X <= BR.X; TR.Y <= BR.Y; area (see Area) > 0.
type Quadrilateral struct {
	TL, TR, BL, BR Point2D
}

// Points returns the four corners in canonical order.
func (q Quadrilateral) Points() [4]Point2D {
	return [4]Point2D{q.TL, q.TR, q.BL, q.BR}
}

// Area returns the (unsigned) shoelace area of the quadrilateral, walked
// in the order TL, TR, BR, BL so that a normally-oriented rectangle
// yields a positive area.
func (q Quadrilateral) Area() float64 {
	pts := [4]Point2D{q.TL, q.TR, q.BR, q.BL}
	var sum float64
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// Validate checks the invariants documented on Quadrilateral.
func (q Quadrilateral) Validate() error {
	pts := q.Points()
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if pts[i] == pts[j] {
				return errQuad("corners must be distinct")
			}
		}
	}
	if q.TL.X > q.TR.X {
		return errQuad("top-left.x must be <= top-right.x")
	}
	if q.TL.Y > q.BL.Y {
		return errQuad("top-left.y must be <= bottom-left.y")
	}
	if q.BL.X > q.BR.X {
		return errQuad("bottom-left.x must be <= bottom-right.x")
	}
	if q.TR.Y > q.BR.Y {
		return errQuad("top-right.y must be <= bottom-right.y")
	}
	if q.Area() <= 0 {
		return errQuad("area must be positive")
	}
	return nil
}

type errQuad string

func (e errQuad) Error() string { return "invalid quadrilateral: " + string(e) }

// Scale returns a copy of the quadrilateral with every corner scaled by
// (sx, sy). Used to move between normalized [0,1]^2 coordinates and pixel
// coordinates in either direction.
func (q Quadrilateral) Scale(sx, sy float64) Quadrilateral {
	return Quadrilateral{
		TL: q.TL.Scale(sx, sy),
		TR: q.TR.Scale(sx, sy),
		BL: q.BL.Scale(sx, sy),
		BR: q.BR.Scale(sx, sy),
	}
}

// UnitSquare returns the degenerate-safe fallback quadrilateral used when
// an image cannot be read: TL=(0,0), TR=(1,0), BL=(0,1), BR=(1,1).
func UnitSquare() Quadrilateral {
	return Quadrilateral{
		TL: Point2D{0, 0},
		TR: Point2D{1, 0},
		BL: Point2D{0, 1},
		BR: Point2D{1, 1},
	}
}

// FullImageRect returns the quadrilateral bounding the entire image of
// the given pixel size, used as the detector's last-resort fallback.
func FullImageRect(width, height int) Quadrilateral {
	w, h := float64(width), float64(height)
	return Quadrilateral{
		TL: Point2D{0, 0},
		TR: Point2D{w, 0},
		BL: Point2D{0, h},
		BR: Point2D{w, h},
	}
}

// OrderCorners sorts four arbitrary corners of a convex quadrilateral
// into the canonical TL/TR/BL/BR order (spec §4.5):
//
//  1. Sort by ascending x+y: position 0 is TL, position 3 is BR.
//  2. Of the remaining middle two, sort by ascending y-x: the smaller is
//     TR, the larger is BL.
//
// This is invariant to the order the four input points are given in.
func OrderCorners(pts [4]Point2D) Quadrilateral {
	sorted := pts
	// Sort ascending by x+y (simple insertion sort over 4 elements).
	sumLess := func(a, b Point2D) bool { return a.X+a.Y < b.X+b.Y }
	insertionSort(sorted[:], sumLess)

	tl, br := sorted[0], sorted[3]
	mid := [2]Point2D{sorted[1], sorted[2]}
	if mid[0].Y-mid[0].X > mid[1].Y-mid[1].X {
		mid[0], mid[1] = mid[1], mid[0]
	}
	tr, bl := mid[0], mid[1]

	return Quadrilateral{TL: tl, TR: tr, BL: bl, BR: br}
}

func insertionSort(pts []Point2D, less func(a, b Point2D) bool) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && less(pts[j], pts[j-1]); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}

// BoundingBox is the C-ABI wire layout for a normalized quadrilateral:
// four little-endian float64 pairs, 64 bytes total. See spec.md §6.
type BoundingBox struct {
	TL, TR, BL, BR Offset
}

// Offset is one (x, y) pair in the BoundingBox wire layout.
type Offset struct {
	X, Y float64
}

// ToBoundingBox converts a normalized quadrilateral to its wire layout.
func (q Quadrilateral) ToBoundingBox() BoundingBox {
	return BoundingBox{
		TL: Offset{q.TL.X, q.TL.Y},
		TR: Offset{q.TR.X, q.TR.Y},
		BL: Offset{q.BL.X, q.BL.Y},
		BR: Offset{q.BR.X, q.BR.Y},
	}
}

// FromBoundingBox converts a wire-layout bounding box back to a
// Quadrilateral.
func FromBoundingBox(bb BoundingBox) Quadrilateral {
	return Quadrilateral{
		TL: Point2D{bb.TL.X, bb.TL.Y},
		TR: Point2D{bb.TR.X, bb.TR.Y},
		BL: Point2D{bb.BL.X, bb.BL.Y},
		BR: Point2D{bb.BR.X, bb.BR.Y},
	}
}

// ResizeTarget computes the aspect-preserving destination size for
// normalizing an image so its shorter side equals target, along with
// whether the resize is an upscale (spec §4.6).
func ResizeTarget(srcW, srcH, target int) (dst Size, upscale bool) {
	shortSide := srcW
	if srcH < shortSide {
		shortSide = srcH
	}
	if shortSide <= 0 {
		return Size{Width: srcW, Height: srcH}, false
	}
	scale := float64(target) / float64(shortSide)
	dst = Size{
		Width:  int(math.Round(float64(srcW) * scale)),
		Height: int(math.Round(float64(srcH) * scale)),
	}
	return dst, shortSide < target
}
