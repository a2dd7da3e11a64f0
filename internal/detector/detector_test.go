package detector

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"sudokuscanner/pkg/geometry"
)

// syntheticGridImage draws a white square with a 9x9 grid of thin black
// lines on a gray background, approximating a photographed Sudoku page
// closely enough to exercise the detector's contour hierarchy search.
func syntheticGridImage(t *testing.T, size, margin int) gocv.Mat {
	t.Helper()
	canvasSize := size + 2*margin
	mat := gocv.NewMatWithSize(canvasSize, canvasSize, gocv.MatTypeCV8UC3)

	gray := color.RGBA{R: 120, G: 120, B: 120, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{R: 0, G: 0, B: 0, A: 255}

	mat.SetTo(gocv.NewScalar(float64(gray.B), float64(gray.G), float64(gray.R), 0))

	gridRect := image.Rect(margin, margin, margin+size, margin+size)
	gocv.Rectangle(&mat, gridRect, white, -1)

	cell := size / 9
	for i := 0; i <= 9; i++ {
		x := margin + i*cell
		gocv.Line(&mat, image.Point{X: x, Y: margin}, image.Point{X: x, Y: margin + size}, black, 1)
		y := margin + i*cell
		gocv.Line(&mat, image.Point{X: margin, Y: y}, image.Point{X: margin + size, Y: y}, black, 1)
	}

	return mat
}

func TestDetectReturnsDistinctCanonicalCorners(t *testing.T) {
	img := syntheticGridImage(t, 600, 80)
	defer img.Close()

	quad := Detect(img)

	pts := quad.Points()
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if pts[i] == pts[j] {
				t.Fatalf("corners not distinct: %v", pts)
			}
		}
	}
	if err := quad.Validate(); err != nil {
		t.Fatalf("Detect returned an invalid quadrilateral: %v", err)
	}
}

func TestDetectNeverFailsOnBlankImage(t *testing.T) {
	img := gocv.NewMatWithSize(400, 400, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.SetTo(gocv.NewScalar(255, 255, 255, 0))

	quad := Detect(img)
	if err := quad.Validate(); err != nil {
		t.Fatalf("fallback quadrilateral should still validate: %v", err)
	}
}

func TestDetectOnEmptyMatReturnsUnitSquare(t *testing.T) {
	got := Detect(gocv.NewMat())
	want := geometry.UnitSquare()
	if got != want {
		t.Fatalf("Detect(empty) = %v, want unit square %v", got, want)
	}
}
