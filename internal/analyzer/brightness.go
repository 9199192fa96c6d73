package analyzer

import (
	"fmt"
	"math"

	"go-tone-inspector/pkg/validation"

	"gonum.org/v1/gonum/stat"
)

// Band boundaries (inclusive upper bins) for shadow and midtone; highlights run to 255.
const (
	shadowBandMax  = 84
	midtoneBandMax = 169
)

// intensityLevels holds 0..255 as float64 for histogram-weighted statistics
var intensityLevels = func() []float64 {
	levels := make([]float64, HistogramBins)
	for i := range levels {
		levels[i] = float64(i)
	}
	return levels
}()

// brightnessCalculator implements BrightnessCalculator
type brightnessCalculator struct{}

// NewBrightnessCalculator creates a new brightness calculator
func NewBrightnessCalculator() BrightnessCalculator {
	return &brightnessCalculator{}
}

// SummarizeBrightness derives average, min and max from the grayscale histogram
func (bc *brightnessCalculator) SummarizeBrightness(hist Histogram) (BrightnessStats, error) {
	if hist.Total() == 0 {
		return BrightnessStats{}, fmt.Errorf("%w: histogram has no pixels", validation.ErrEmptyImage)
	}

	minLevel, maxLevel := -1, -1
	weights := make([]float64, HistogramBins)
	for level, count := range hist {
		if count == 0 {
			continue
		}
		if minLevel < 0 {
			minLevel = level
		}
		maxLevel = level
		weights[level] = float64(count)
	}

	mean := stat.Mean(intensityLevels, weights)
	return BrightnessStats{
		Average: int(math.Round(mean)),
		Min:     minLevel,
		Max:     maxLevel,
	}, nil
}

// ComputeBandRatios splits pixel mass into shadow (0-84), midtone (85-169) and highlight (170-255)
func (bc *brightnessCalculator) ComputeBandRatios(hist Histogram) BandRatios {
	total := hist.Total()
	if total == 0 {
		return BandRatios{}
	}

	var shadows, midtones, highlights int
	for level, count := range hist {
		switch {
		case level <= shadowBandMax:
			shadows += count
		case level <= midtoneBandMax:
			midtones += count
		default:
			highlights += count
		}
	}

	n := float64(total)
	return BandRatios{
		Shadow:    float64(shadows) / n,
		Midtone:   float64(midtones) / n,
		Highlight: float64(highlights) / n,
	}
}
