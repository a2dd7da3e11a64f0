package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeSolidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestLoadBytesDecodesPNG(t *testing.T) {
	data := encodeSolidPNG(t, 32, 16, color.White)

	mat, err := LoadBytes(data)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	defer mat.Close()

	if mat.Cols() != 32 || mat.Rows() != 16 {
		t.Fatalf("got %dx%d, want 32x16", mat.Cols(), mat.Rows())
	}
	if mat.Channels() != 3 {
		t.Fatalf("got %d channels, want 3 (BGR)", mat.Channels())
	}
}

func TestLoadBytesRejectsGarbage(t *testing.T) {
	if _, err := LoadBytes([]byte("not an image")); err == nil {
		t.Fatal("expected an error decoding garbage bytes")
	}
}
