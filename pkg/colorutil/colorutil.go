// Package colorutil provides the overlay colors used by the
// development viewer.
package colorutil

import "image/color"

// Overlay colors used by cmd/sudokuview to mark the detected
// quadrilateral and recognized digits.
var (
	Red   = color.RGBA{R: 255, A: 255}
	Green = color.RGBA{G: 255, A: 255}
)
