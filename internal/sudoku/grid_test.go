package sudoku

import "testing"

func TestZeroGridIsAllEmpty(t *testing.T) {
	g := Zero()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if v := g.At(r, c); v != 0 {
				t.Fatalf("At(%d,%d) = %d, want 0", r, c, v)
			}
		}
	}
}

func TestSetThenAtRoundTrips(t *testing.T) {
	cases := []struct {
		row, col int
		digit    byte
	}{
		{0, 0, 1},
		{0, 8, 9},
		{8, 0, 5},
		{8, 8, 9},
		{4, 4, 7},
	}

	var g Grid
	for _, tc := range cases {
		g.Set(tc.row, tc.col, tc.digit)
	}
	for _, tc := range cases {
		if got := g.At(tc.row, tc.col); got != tc.digit {
			t.Errorf("At(%d,%d) = %d, want %d", tc.row, tc.col, got, tc.digit)
		}
	}
}

func TestSetDoesNotLeakIntoAdjacentCells(t *testing.T) {
	var g Grid
	g.Set(3, 3, 8)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if r == 3 && c == 3 {
				continue
			}
			if v := g.At(r, c); v != 0 {
				t.Fatalf("At(%d,%d) = %d, want 0 (leaked from Set(3,3,8))", r, c, v)
			}
		}
	}
}

func TestRowsMatchesIndexLayout(t *testing.T) {
	var g Grid
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			g.Set(r, c, byte((r+c)%9)+1)
		}
	}

	rows := g.Rows()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if rows[r][c] != g.At(r, c) {
				t.Fatalf("Rows()[%d][%d] = %d, want %d", r, c, rows[r][c], g.At(r, c))
			}
		}
	}
}

func TestCellIndexIsRowMajor(t *testing.T) {
	cases := []struct {
		cell Cell
		want int
	}{
		{Cell{Row: 0, Col: 0}, 0},
		{Cell{Row: 0, Col: 8}, 8},
		{Cell{Row: 1, Col: 0}, 9},
		{Cell{Row: 8, Col: 8}, 80},
	}
	for _, tc := range cases {
		if got := tc.cell.Index(); got != tc.want {
			t.Errorf("Cell%+v.Index() = %d, want %d", tc.cell, got, tc.want)
		}
	}
}
