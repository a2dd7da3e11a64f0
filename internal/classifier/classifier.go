// Package classifier recognizes a single digit glyph tile as one of
// 1..9, or 0 for an empty cell. It exposes a process-wide singleton
// configured by SetModelPath, mirroring the mutex-guarded package-level
// store in ui/prefs.Prefs: callers across goroutines share one
// configuration slot and one lazily-built backend instance (spec.md
// §4.3, §5 concurrency model).
package classifier

import (
	"image"
	"log"
	"sync"
)

// Backend classifies a single glyph tile.
type Backend interface {
	Predict(glyph image.Image) (byte, error)
}

var global struct {
	mu        sync.Mutex
	modelPath string
	backend   Backend
}

// SetModelPath configures the path to the neural backend's weight file
// for the remainder of the process's lifetime (spec.md §6's set_model
// FFI operation). It invalidates any already-built backend so the next
// Predict call rebuilds against the new path. An empty path clears the
// override and falls back to the Tesseract OCR backend.
func SetModelPath(path string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.modelPath = path
	if global.backend != nil {
		if closer, ok := global.backend.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	global.backend = nil
}

// Predict classifies a single glyph, returning 0 if the backend reports
// an error for it: an unrecognized glyph just yields a blank cell. A
// configured model that fails to load still terminates the process on
// the first call (see ensureBackend).
func Predict(glyph image.Image) byte {
	backend := ensureBackend()
	digit, err := backend.Predict(glyph)
	if err != nil {
		log.Printf("classifier: predict failed, treating cell as empty: %v", err)
		return 0
	}
	return digit
}

// PredictBatch classifies every glyph in order. Cells with a nil Glyph
// (already known to be empty from extraction) are skipped entirely.
func PredictBatch(glyphs []image.Image) []byte {
	out := make([]byte, len(glyphs))
	for i, g := range glyphs {
		if g == nil {
			continue
		}
		out[i] = Predict(g)
	}
	return out
}

// ensureBackend returns the process-wide backend, building it on first
// use or after SetModelPath invalidated the previous one. A configured
// model path that fails to load is a fatal precondition violation
// (spec.md §7: "model file missing/incompatible: fatal at first
// classify call"), not a reason to fall back to OCR. The OCR/empty
// fallback chain applies only when no model path was ever configured.
func ensureBackend() Backend {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.backend != nil {
		return global.backend
	}

	if global.modelPath != "" {
		nb, err := newNeuralBackend(global.modelPath)
		if err != nil {
			log.Fatalf("classifier: model %q missing or incompatible: %v", global.modelPath, err)
		}
		global.backend = nb
		return global.backend
	}

	if tb, err := newTesseractBackend(); err == nil {
		global.backend = tb
		return global.backend
	}

	global.backend = emptyBackend{}
	return global.backend
}

// emptyBackend is the last-resort backend when neither the neural
// weights nor a Tesseract installation are available: every glyph reads
// as an empty cell rather than the whole scan terminating (spec.md §7).
type emptyBackend struct{}

func (emptyBackend) Predict(image.Image) (byte, error) { return 0, nil }

// argMaxDigit implements the original's tie-break rule (spec.md §12):
// the running maximum starts at 0.0 and is only replaced by a strictly
// greater value, so a vector with no positive entry yields index -1,
// reported as digit 0 rather than 1.
func argMaxDigit(out []float64) byte {
	maxVal := 0.0
	maxIdx := -1
	for i, v := range out {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	if maxIdx < 0 {
		return 0
	}
	return byte(maxIdx + 1)
}
