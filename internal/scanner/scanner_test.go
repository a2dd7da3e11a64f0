package scanner

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"sudokuscanner/internal/sudoku"
	"sudokuscanner/pkg/geometry"
)

// writeSyntheticGridPNG writes a canvasSize x canvasSize image with a
// centered gridSize x gridSize white square bearing a 9x9 line grid (but
// no digit glyphs) to a temp PNG file and returns its path.
func writeSyntheticGridPNG(t *testing.T, canvasSize, gridSize int) string {
	t.Helper()
	margin := (canvasSize - gridSize) / 2
	mat := gocv.NewMatWithSize(canvasSize, canvasSize, gocv.MatTypeCV8UC3)
	defer mat.Close()
	mat.SetTo(gocv.NewScalar(120, 120, 120, 0))

	gridRect := image.Rect(margin, margin, margin+gridSize, margin+gridSize)
	gocv.Rectangle(&mat, gridRect, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	cell := gridSize / 9
	black := color.RGBA{A: 255}
	for i := 0; i <= 9; i++ {
		x := margin + i*cell
		gocv.Line(&mat, image.Point{X: x, Y: margin}, image.Point{X: x, Y: margin + gridSize}, black, 1)
		y := margin + i*cell
		gocv.Line(&mat, image.Point{X: margin, Y: y}, image.Point{X: margin + gridSize, Y: y}, black, 1)
	}

	path := filepath.Join(t.TempDir(), "grid.png")
	if ok := gocv.IMWrite(path, mat); !ok {
		t.Fatalf("failed to write synthetic grid to %s", path)
	}
	return path
}

func TestDetectOnMissingFileReturnsUnitSquare(t *testing.T) {
	got := Detect(filepath.Join(t.TempDir(), "does-not-exist.png"))
	want := geometry.UnitSquare()
	if got != want {
		t.Fatalf("Detect(missing) = %v, want %v", got, want)
	}
}

func TestExtractOnMissingFileReturnsZeroGrid(t *testing.T) {
	got := Extract(filepath.Join(t.TempDir(), "does-not-exist.png"), geometry.UnitSquare())
	if got != sudoku.Zero() {
		t.Fatalf("Extract(missing) = %v, want a zeroed grid", got)
	}
}

func TestExtractFromROIOnBlankGridYieldsAllEmptyCells(t *testing.T) {
	path := writeSyntheticGridPNG(t, 600, 450)

	grid := ExtractFromROI(path, 500, 0)
	for row := 0; row < sudoku.Size; row++ {
		for col := 0; col < sudoku.Size; col++ {
			if got := grid.At(row, col); got != 0 {
				t.Errorf("cell (%d,%d) = %d, want 0 (no glyphs drawn)", row, col, got)
			}
		}
	}
}

func TestDetectThenExtractRoundTripsOnSameImage(t *testing.T) {
	path := writeSyntheticGridPNG(t, 600, 450)

	quad := Detect(path)
	if err := quad.Validate(); err != nil {
		t.Fatalf("Detect returned an invalid quadrilateral: %v", err)
	}

	_ = Extract(path, quad) // must not panic or terminate the process
}
