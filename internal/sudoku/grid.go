// Package sudoku holds the data model shared between the extractor and
// the classifier: per-cell glyph tiles and the packed 81-byte grid that
// is the sole product of the pipeline.
package sudoku

import "image"

// Size is the fixed board dimension. Non-9x9 variants are a spec
// Non-goal.
const Size = 9

// Grid is the packed row-major digit array returned by extraction.
// index = row*9 + col; each byte is in 0..9, where 0 denotes an empty
// cell.
type Grid [Size * Size]byte

// Zero returns an all-empty grid, used as the propagated result when an
// image cannot be read (spec §7).
func Zero() Grid {
	return Grid{}
}

// At returns the digit at (row, col).
func (g Grid) At(row, col int) byte {
	return g[row*Size+col]
}

// Set stores digit at (row, col).
func (g *Grid) Set(row, col int, digit byte) {
	g[row*Size+col] = digit
}

// Rows returns the grid as 9 rows of 9 bytes each, convenient for
// pretty-printing.
func (g Grid) Rows() [Size][Size]byte {
	var rows [Size][Size]byte
	for r := 0; r < Size; r++ {
		copy(rows[r][:], g[r*Size:r*Size+Size])
	}
	return rows
}

// Cell is one of the 81 positions of the board, built during extraction
// and discarded once its digit has been copied into a Grid.
type Cell struct {
	Row, Col int
	Glyph    image.Image // non-nil only when the cell is non-empty
	Digit    byte        // 0 until classified, 1..9 after
}

// Index returns the row-major index of the cell within a Grid.
func (c Cell) Index() int {
	return c.Row*Size + c.Col
}
