// Command sudokuscannerffi builds the stable C ABI described in
// spec.md §6: set_model, detect_grid, extract_grid,
// extract_grid_from_roi, and free_pointer. This package is a thin
// marshaling shim over internal/scanner — it owns no algorithmic logic
// of its own, only the C struct layout and allocation/ownership rules
// at the foreign-function boundary.
package main

/*
#include <stdlib.h>

typedef struct { double x, y; } sudoku_offset;
typedef struct { sudoku_offset tl, tr, bl, br; } sudoku_bounding_box;
*/
import "C"

import (
	"unsafe"

	"sudokuscanner/internal/classifier"
	"sudokuscanner/internal/scanner"
	"sudokuscanner/pkg/geometry"
)

// set_model configures the process-wide classifier model path. Must be
// called before any extract_grid* call that should use the neural
// backend; if never called, the classifier falls back to OCR.
//
//export set_model
func set_model(path *C.char) {
	classifier.SetModelPath(C.GoString(path))
}

// detect_grid loads the image at path and returns a heap-allocated
// sudoku_bounding_box with normalized [0,1] coordinates. The caller
// must release it via free_pointer.
//
//export detect_grid
func detect_grid(path *C.char) *C.sudoku_bounding_box {
	quad := scanner.Detect(C.GoString(path))
	return newBoundingBox(quad.ToBoundingBox())
}

// extract_grid loads the image at path, scales bbox back to pixel
// space, and returns a heap-allocated 81-byte row-major Grid. The
// caller must release it via free_pointer. A malformed bbox terminates
// the process (spec.md §7) rather than returning an error code.
//
//export extract_grid
func extract_grid(path *C.char, bbox *C.sudoku_bounding_box) *C.uint8_t {
	quad := boundingBoxFromC(bbox)
	grid := scanner.Extract(C.GoString(path), quad)
	return newGridBuffer([81]byte(grid))
}

// extract_grid_from_roi loads the image at path, crops a side x side
// square centered horizontally and offset vertically by offset pixels
// from the image center, and returns a heap-allocated 81-byte Grid for
// the grid detected within that crop.
//
//export extract_grid_from_roi
func extract_grid_from_roi(path *C.char, side C.int, offset C.int) *C.uint8_t {
	grid := scanner.ExtractFromROI(C.GoString(path), int(side), int(offset))
	return newGridBuffer([81]byte(grid))
}

// free_pointer releases any pointer returned by this library, whether
// it points at a sudoku_bounding_box or a Grid byte buffer: both are
// plain C.malloc'd memory, so a single C.free suffices for either.
//
//export free_pointer
func free_pointer(ptr unsafe.Pointer) {
	C.free(ptr)
}

func newBoundingBox(bb geometry.BoundingBox) *C.sudoku_bounding_box {
	out := (*C.sudoku_bounding_box)(C.malloc(C.size_t(unsafe.Sizeof(C.sudoku_bounding_box{}))))
	out.tl = C.sudoku_offset{x: C.double(bb.TL.X), y: C.double(bb.TL.Y)}
	out.tr = C.sudoku_offset{x: C.double(bb.TR.X), y: C.double(bb.TR.Y)}
	out.bl = C.sudoku_offset{x: C.double(bb.BL.X), y: C.double(bb.BL.Y)}
	out.br = C.sudoku_offset{x: C.double(bb.BR.X), y: C.double(bb.BR.Y)}
	return out
}

func boundingBoxFromC(bbox *C.sudoku_bounding_box) geometry.Quadrilateral {
	return geometry.FromBoundingBox(geometry.BoundingBox{
		TL: geometry.Offset{X: float64(bbox.tl.x), Y: float64(bbox.tl.y)},
		TR: geometry.Offset{X: float64(bbox.tr.x), Y: float64(bbox.tr.y)},
		BL: geometry.Offset{X: float64(bbox.bl.x), Y: float64(bbox.bl.y)},
		BR: geometry.Offset{X: float64(bbox.br.x), Y: float64(bbox.br.y)},
	})
}

func newGridBuffer(grid [81]byte) *C.uint8_t {
	buf := C.malloc(C.size_t(len(grid)))
	copy(unsafe.Slice((*byte)(buf), len(grid)), grid[:])
	return (*C.uint8_t)(buf)
}

func main() {} // required by cgo c-shared build mode; unused.
