package extractor

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"gocv.io/x/gocv"

	"sudokuscanner/internal/sudoku"
	"sudokuscanner/pkg/geometry"
)

// syntheticRectifiedGrid builds a gridSize x gridSize BGR image that
// already sits flush with the image bounds (so FullImageRect is a valid
// quad), with thin grid lines and a filled rectangular "glyph" stamped
// into each cell named in digitCells.
func syntheticRectifiedGrid(t *testing.T, digitCells map[[2]int]bool) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(gridSize, gridSize, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(255, 255, 255, 0))

	black := color.RGBA{A: 255}
	for i := 0; i <= sudoku.Size; i++ {
		x := i * cellSize
		gocv.Line(&mat, image.Point{X: x, Y: 0}, image.Point{X: x, Y: gridSize}, black, 1)
		gocv.Line(&mat, image.Point{X: 0, Y: x}, image.Point{X: gridSize, Y: x}, black, 1)
	}

	for cell := range digitCells {
		row, col := cell[0], cell[1]
		cx, cy := col*cellSize+cellSize/2, row*cellSize+cellSize/2
		glyph := image.Rect(cx-7, cy-12, cx+7, cy+12)
		gocv.Rectangle(&mat, glyph, black, -1)
	}

	return mat
}

func TestExtractClassifiesOnlyDrawnCells(t *testing.T) {
	drawn := map[[2]int]bool{
		{0, 0}: true,
		{4, 4}: true,
		{8, 8}: true,
	}
	img := syntheticRectifiedGrid(t, drawn)
	defer img.Close()

	quad := geometry.FullImageRect(gridSize, gridSize)

	var mu sync.Mutex
	calls := 0
	classify := func(glyph image.Image) byte {
		mu.Lock()
		calls++
		mu.Unlock()
		if glyph.Bounds().Dx() == 0 || glyph.Bounds().Dy() == 0 {
			t.Fatalf("classify received an empty glyph")
		}
		return 7
	}

	grid := Extract(img, quad, classify)

	for row := 0; row < sudoku.Size; row++ {
		for col := 0; col < sudoku.Size; col++ {
			got := grid.At(row, col)
			if drawn[[2]int{row, col}] {
				if got != 7 {
					t.Errorf("cell (%d,%d): got digit %d, want 7", row, col, got)
				}
			} else if got != 0 {
				t.Errorf("cell (%d,%d): got digit %d, want empty (0)", row, col, got)
			}
		}
	}
	if calls != len(drawn) {
		t.Errorf("classify called %d times, want %d", calls, len(drawn))
	}
}

func TestExtractOnBlankGridIsAllEmpty(t *testing.T) {
	img := syntheticRectifiedGrid(t, nil)
	defer img.Close()

	quad := geometry.FullImageRect(gridSize, gridSize)
	classify := func(image.Image) byte {
		t.Fatal("classify should not be called for a grid with no glyphs")
		return 0
	}

	grid := Extract(img, quad, classify)
	for row := 0; row < sudoku.Size; row++ {
		for col := 0; col < sudoku.Size; col++ {
			if got := grid.At(row, col); got != 0 {
				t.Errorf("cell (%d,%d): got %d, want 0 on a blank grid", row, col, got)
			}
		}
	}
}

func TestSquareAndPadClampsToCellBounds(t *testing.T) {
	bbox := image.Rect(0, 20, 10, 30)
	got := squareAndPad(bbox, cellSize, scanWindowPad)
	if got.Min.X < 0 || got.Min.Y < 0 || got.Max.X > cellSize || got.Max.Y > cellSize {
		t.Fatalf("squareAndPad escaped cell bounds: %v", got)
	}
}

func TestFloodFillWhiteVisitsConnectedComponent(t *testing.T) {
	mat := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8U)
	defer mat.Close()
	mat.SetTo(gocv.NewScalar(255, 0, 0, 0))
	for y := 5; y < 15; y++ {
		for x := 5; x < 10; x++ {
			mat.SetUCharAt(y, x, 0)
		}
	}

	points := floodFillWhite(mat, 7, 10)
	if len(points) != 10*5 {
		t.Fatalf("got %d points, want %d", len(points), 10*5)
	}
	for y := 5; y < 15; y++ {
		for x := 5; x < 10; x++ {
			if mat.GetUCharAt(y, x) != 255 {
				t.Fatalf("pixel (%d,%d) was not filled white", x, y)
			}
		}
	}
}
