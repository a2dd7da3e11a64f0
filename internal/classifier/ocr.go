package classifier

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// digitWhitelist restricts Tesseract to the nine characters that can
// ever appear on a Sudoku glyph tile, since every other character class
// (letters, punctuation) is a misrecognition by construction here.
const digitWhitelist = "123456789"

// tesseractBackend is the fallback classifier backend used when no
// neural model is configured, grounded on internal/ocr.Engine's client
// lifecycle and whitelist configuration, narrowed from electronics part
// numbers to single digits and a single-character page segmentation
// mode.
type tesseractBackend struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func newTesseractBackend() (*tesseractBackend, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("classifier: set OCR language: %w", err)
	}
	if err := client.SetWhitelist(digitWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("classifier: set OCR whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		client.Close()
		return nil, fmt.Errorf("classifier: set OCR page segmentation mode: %w", err)
	}

	return &tesseractBackend{client: client}, nil
}

func (t *tesseractBackend) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// Predict encodes glyph as PNG and asks Tesseract to read the single
// digit it expects to find, since a digit whitelist combined with
// single-character segmentation can still legitimately return nothing
// on a faint or empty glyph.
func (t *tesseractBackend) Predict(glyph image.Image) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, glyph); err != nil {
		return 0, fmt.Errorf("classifier: encode glyph: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("classifier: set OCR image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return 0, fmt.Errorf("classifier: OCR read: %w", err)
	}
	text = strings.TrimSpace(text)
	if len(text) != 1 || text[0] < '1' || text[0] > '9' {
		return 0, nil
	}
	return text[0] - '0', nil
}
