// Package imageio is the image I/O adapter: it decodes a file path or a
// byte buffer into a three-channel color raster (a gocv.Mat in BGR
// order) for the detector and extractor to consume. Format support is
// registered via blank imports exactly as internal/image/layer.go does
// in the teacher repository, extended with WebP since a photo shared
// from a phone gallery may arrive in that format.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gocv.io/x/gocv"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/tiff"
)

// Load decodes the image at path into a BGR gocv.Mat. A missing or
// undecodable file is reported as an error; callers at the facade layer
// (internal/scanner) are responsible for turning that into the
// well-defined empty-image fallback described in spec.md §7, rather than
// propagating a raw decode error across the FFI boundary.
func Load(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("imageio: read %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes an in-memory buffer into a BGR gocv.Mat.
func LoadBytes(data []byte) (gocv.Mat, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("imageio: decode: %w", err)
	}
	mat, err := ToMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	if mat.Empty() || mat.Cols() == 0 || mat.Rows() == 0 {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("imageio: decoded empty image")
	}
	return mat, nil
}

// ToMat converts a standard library image.Image to a BGR gocv.Mat,
// cloning pixel data into a fresh scratch buffer so the caller's
// image.Image is never mutated by downstream in-place OpenCV operations
// (spec.md §9's "clone before mutating" design note).
func ToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("imageio: convert to mat: %w", err)
	}
	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
	mat.Close()
	return bgr, nil
}
