package classifier

import (
	"encoding/gob"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// glyphSide is the fixed input resolution the neural backend resizes
// every glyph tile to before flattening into a feature vector.
const glyphSide = 28

// neuralWeights is the on-disk shape of a trained model: one hidden
// dense layer with a ReLU, followed by a 9-way linear output layer
// (spec.md §11.3 — there is no bundled ML runtime, so the forward pass
// itself is reimplemented directly on top of gonum/mat rather than
// calling out to an interpreter).
type neuralWeights struct {
	W1, B1 []float64 // hidden x (glyphSide*glyphSide), hidden
	W2, B2 []float64 // 9 x hidden, 9
	Hidden int
}

type neuralBackend struct {
	w1, w2 *mat.Dense
	b1, b2 *mat.VecDense
	hidden int
}

func newNeuralBackend(modelPath string) (*neuralBackend, error) {
	f, err := os.Open(modelPath)
	if err != nil {
		return nil, fmt.Errorf("classifier: open model: %w", err)
	}
	defer f.Close()

	var weights neuralWeights
	if err := gob.NewDecoder(f).Decode(&weights); err != nil {
		return nil, fmt.Errorf("classifier: decode model: %w", err)
	}

	inputs := glyphSide * glyphSide
	if weights.Hidden <= 0 || len(weights.W1) != weights.Hidden*inputs || len(weights.W2) != 9*weights.Hidden {
		return nil, fmt.Errorf("classifier: model weight shapes do not match a %dx%d input", glyphSide, glyphSide)
	}

	return &neuralBackend{
		w1:     mat.NewDense(weights.Hidden, inputs, weights.W1),
		b1:     mat.NewVecDense(weights.Hidden, weights.B1),
		w2:     mat.NewDense(9, weights.Hidden, weights.W2),
		b2:     mat.NewVecDense(9, weights.B2),
		hidden: weights.Hidden,
	}, nil
}

// Predict resizes glyph to glyphSide x glyphSide grayscale, normalizes
// to [0,1], and runs the two-layer forward pass: hidden = ReLU(W1*x +
// b1), output = W2*hidden + b2, digit = argmax(output)+1.
func (n *neuralBackend) Predict(glyph image.Image) (byte, error) {
	x, err := rasterize(glyph)
	if err != nil {
		return 0, err
	}

	var hidden mat.VecDense
	hidden.MulVec(n.w1, x)
	hidden.AddVec(&hidden, n.b1)
	applyReLU(&hidden)

	var output mat.VecDense
	output.MulVec(n.w2, &hidden)
	output.AddVec(&output, n.b2)

	out := make([]float64, output.Len())
	for i := range out {
		out[i] = output.AtVec(i)
	}
	return argMaxDigit(out), nil
}

// rasterize converts glyph to a (glyphSide*glyphSide)-length column
// vector of grayscale intensities normalized to [0,1].
func rasterize(glyph image.Image) (*mat.VecDense, error) {
	mat4, err := gocv.ImageToMatRGB(glyph)
	if err != nil {
		return nil, fmt.Errorf("classifier: convert glyph: %w", err)
	}
	defer mat4.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat4, &gray, gocv.ColorRGBToGray)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Point{X: glyphSide, Y: glyphSide}, 0, 0, gocv.InterpolationArea)

	data := make([]float64, glyphSide*glyphSide)
	for y := 0; y < glyphSide; y++ {
		for x := 0; x < glyphSide; x++ {
			data[y*glyphSide+x] = float64(resized.GetUCharAt(y, x)) / 255.0
		}
	}
	return mat.NewVecDense(len(data), data), nil
}

func applyReLU(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}
