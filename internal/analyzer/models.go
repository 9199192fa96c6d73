package analyzer

import (
	"go-tone-inspector/pkg/models"
)

// AnalysisResult is an alias to the shared output contract
type AnalysisResult = models.ImageAnalysisResult

// HistogramBins is the number of intensity levels in every histogram
const HistogramBins = 256

// RawImage is a normalized image as a pair of raw pixel buffers.
// Gray holds one byte per pixel and RGB three interleaved bytes per pixel,
// both row-major. The buffers are treated as read-only.
type RawImage struct {
	Width  int
	Height int
	Gray   []byte
	RGB    []byte
}

// PixelCount returns width*height
func (r RawImage) PixelCount() int {
	return r.Width * r.Height
}

// Histogram maps an intensity value to the number of pixels holding it
type Histogram [HistogramBins]int

// Total returns the number of pixels counted in the histogram
func (h *Histogram) Total() int {
	total := 0
	for _, count := range h {
		total += count
	}
	return total
}

// RGBHistograms holds one histogram per color channel
type RGBHistograms struct {
	Red   Histogram
	Green Histogram
	Blue  Histogram
}

// BrightnessStats summarizes the grayscale channel; Min <= Average <= Max
type BrightnessStats struct {
	Average int
	Min     int
	Max     int
}

// BandRatios are the shares of pixels in the shadow, midtone and highlight bands
type BandRatios struct {
	Shadow    float64
	Midtone   float64
	Highlight float64
}

// BatchResult is the outcome of one image of a batch, at its input position
type BatchResult struct {
	Index  int
	Result *AnalysisResult
	Err    error
}
