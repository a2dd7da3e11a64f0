// Command sudokuview is a desktop viewer that runs the scanner facade
// on a photo and displays the detected quadrilateral, plus a marker on
// every cell with a recognized digit, overlaid on the source image. The
// digit values themselves are not drawn. It is a development aid, not
// part of the stable library surface.
//
// Grounded on the fyne.io/fyne/v2 canvas.Raster draw-callback idiom and
// the overlay compositing approach in ui/canvas/canvas.go, trimmed down
// from that package's full pan/zoom/layer machinery to a single static
// raster suitable for a one-shot viewer.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"sudokuscanner/internal/classifier"
	"sudokuscanner/internal/config"
	"sudokuscanner/internal/imageio"
	"sudokuscanner/internal/scanner"
	"sudokuscanner/internal/sudoku"
	"sudokuscanner/pkg/colorutil"
	"sudokuscanner/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to a Sudoku photo")
	modelPath := flag.String("model", "", "Path to the classifier model weights (remembered across runs)")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: sudokuview -image <path> [-model <path>]")
		os.Exit(1)
	}

	cfg := config.Load()
	if *modelPath != "" {
		classifier.SetModelPath(*modelPath)
		cfg.SetString(config.ModelPathKey, *modelPath)
		_ = cfg.Save()
	} else if remembered := cfg.String(config.ModelPathKey); remembered != "" {
		classifier.SetModelPath(remembered)
	}

	base, err := loadDisplayImage(*imagePath)
	if err != nil {
		log.Fatalf("sudokuview: %v", err)
	}

	quad := scanner.Detect(*imagePath)
	grid := scanner.Extract(*imagePath, quad)

	a := app.New()
	w := a.NewWindow("sudokuview: " + *imagePath)

	overlaid := renderOverlay(base, quad, grid)
	raster := fynecanvas.NewRaster(func(w, h int) image.Image { return overlaid })
	raster.ScaleMode = fynecanvas.ImageScaleSmooth
	raster.SetMinSize(fyne.NewSize(float32(overlaid.Bounds().Dx()), float32(overlaid.Bounds().Dy())))

	status := widget.NewLabel(fmt.Sprintf("detected quad (normalized): TL=%.3f,%.3f TR=%.3f,%.3f BL=%.3f,%.3f BR=%.3f,%.3f",
		quad.TL.X, quad.TL.Y, quad.TR.X, quad.TR.Y, quad.BL.X, quad.BL.Y, quad.BR.X, quad.BR.Y))

	w.SetContent(container.NewBorder(nil, status, nil, nil, container.NewScroll(raster)))
	w.Resize(fyne.NewSize(900, 700))
	w.ShowAndRun()
}

func loadDisplayImage(path string) (image.Image, error) {
	mat, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return mat.ToImage()
}

// renderOverlay copies base into a fresh RGBA buffer and draws the
// detected quadrilateral and a green dot at the center of each cell
// whose digit is non-zero (the digit value is not rendered) on top, the
// same "composite onto a scratch RGBA, never mutate the source" shape
// as ui/canvas.ImageCanvas.draw.
func renderOverlay(base image.Image, quad geometry.Quadrilateral, grid sudoku.Grid) *image.RGBA {
	bounds := base.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, base, image.Point{}, draw.Src)

	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	pixelQuad := quad.Scale(w, h)
	drawLine(out, pixelQuad.TL, pixelQuad.TR, colorutil.Red)
	drawLine(out, pixelQuad.TR, pixelQuad.BR, colorutil.Red)
	drawLine(out, pixelQuad.BR, pixelQuad.BL, colorutil.Red)
	drawLine(out, pixelQuad.BL, pixelQuad.TL, colorutil.Red)

	rows := grid.Rows()
	for r, row := range rows {
		for c, digit := range row {
			if digit == 0 {
				continue
			}
			u := (float64(c) + 0.5) / sudoku.Size
			v := (float64(r) + 0.5) / sudoku.Size
			center := bilinear(pixelQuad, u, v)
			markCell(out, center, colorutil.Green)
		}
	}

	return out
}

func drawLine(img *image.RGBA, a, b geometry.Point2D, c color.RGBA) {
	steps := int(a.Distance(b))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(a.X + (b.X-a.X)*t)
		y := int(a.Y + (b.Y-a.Y)*t)
		setThick(img, x, y, c)
	}
}

func markCell(img *image.RGBA, center geometry.Point2D, c color.RGBA) {
	x0, y0 := int(center.X), int(center.Y)
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			if dx*dx+dy*dy <= 9 {
				setThick(img, x0+dx, y0+dy, c)
			}
		}
	}
}

func setThick(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			p := image.Point{X: x + dx, Y: y + dy}
			if p.In(b) {
				img.Set(p.X, p.Y, c)
			}
		}
	}
}

// bilinear interpolates a point inside quad at normalized cell
// coordinates (u, v) in [0,1]^2, u across TL->TR, v across TL->BL.
func bilinear(quad geometry.Quadrilateral, u, v float64) geometry.Point2D {
	top := lerp(quad.TL, quad.TR, u)
	bottom := lerp(quad.BL, quad.BR, u)
	return lerp(top, bottom, v)
}

func lerp(a, b geometry.Point2D, t float64) geometry.Point2D {
	return geometry.Point2D{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
