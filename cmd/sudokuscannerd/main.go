// Command sudokuscannerd serves the scanner façade over HTTP, for
// exercising the pipeline without building the FFI shim. Grounded on
// the gin route-group layout in mlnoga-nightlight's internal/rest/serve.go.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"sudokuscanner/internal/classifier"
	"sudokuscanner/internal/scanner"
	"sudokuscanner/pkg/geometry"
)

type detectResponse struct {
	BoundingBox geometry.BoundingBox `json:"bounding_box"`
}

type extractRequest struct {
	Path        string               `json:"path" binding:"required"`
	BoundingBox geometry.BoundingBox `json:"bounding_box" binding:"required"`
}

type roiRequest struct {
	Path       string `json:"path" binding:"required"`
	ROISide    int    `json:"roi_side" binding:"required"`
	ROIOffsetY int    `json:"roi_offset_y"`
}

type gridResponse struct {
	Grid [81]byte `json:"grid"`
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	modelPath := flag.String("model", "", "Path to the classifier model weights")
	flag.Parse()

	if *modelPath != "" {
		classifier.SetModelPath(*modelPath)
	}

	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/detect", getDetect)
			v1.POST("/extract", postExtract)
			v1.POST("/extract-roi", postExtractROI)
		}
	}

	if err := r.Run(*addr); err != nil {
		os.Stderr.WriteString("sudokuscannerd: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func getDetect(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	quad := scanner.Detect(path)
	c.JSON(http.StatusOK, detectResponse{BoundingBox: quad.ToBoundingBox()})
}

func postExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quad := geometry.FromBoundingBox(req.BoundingBox)
	grid := scanner.Extract(req.Path, quad)
	c.JSON(http.StatusOK, gridResponse{Grid: [81]byte(grid)})
}

func postExtractROI(c *gin.Context) {
	var req roiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grid := scanner.ExtractFromROI(req.Path, req.ROISide, req.ROIOffsetY)
	c.JSON(http.StatusOK, gridResponse{Grid: [81]byte(grid)})
}
