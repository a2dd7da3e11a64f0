// Command sudokuscan runs grid detection and extraction on a Sudoku
// photo from the command line and prints the resulting grid.
package main

import (
	"flag"
	"fmt"
	"os"

	"sudokuscanner/internal/classifier"
	"sudokuscanner/internal/config"
	"sudokuscanner/internal/scanner"
	"sudokuscanner/internal/sudoku"
	"sudokuscanner/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to a Sudoku photo (JPEG, PNG, WebP, or TIFF)")
	modelPath := flag.String("model", "", "Path to the classifier model weights (falls back to OCR if empty; remembered across runs)")
	roiSide := flag.Int("roi-side", 0, "If >0, skip full-image detection and detect and extract within a centered square ROI of this side length instead")
	roiOffsetY := flag.Int("roi-offset-y", 0, "Vertical offset (pixels) of the ROI center from the image center")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sudokuscan %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: sudokuscan -image <path> [-model <path>] [-roi-side N] [-roi-offset-y N]")
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

	var grid sudoku.Grid
	if *roiSide > 0 {
		grid = scanner.ExtractFromROI(*imagePath, *roiSide, *roiOffsetY)
	} else {
		quad := scanner.Detect(*imagePath)
		fmt.Printf("detected quadrilateral (normalized): TL=%v TR=%v BL=%v BR=%v\n", quad.TL, quad.TR, quad.BL, quad.BR)
		grid = scanner.Extract(*imagePath, quad)
	}

	printGrid(grid)
}

func printGrid(g sudoku.Grid) {
	rows := g.Rows()
	for r, row := range rows {
		if r > 0 && r%3 == 0 {
			fmt.Println("------+-------+------")
		}
		for c, v := range row {
			if c > 0 && c%3 == 0 {
				fmt.Print("| ")
			}
			if v == 0 {
				fmt.Print(". ")
			} else {
				fmt.Printf("%d ", v)
			}
		}
		fmt.Println()
	}
}
