package analyzer

import (
	"math"

	"go-tone-inspector/pkg/models"
)

// AssembleResult merges the pipeline outputs into the response contract.
// Only rounding happens here: confidence and band ratios to two decimals.
func AssembleResult(width, height int, stats BrightnessStats, gray Histogram, rgb RGBHistograms, bands BandRatios, tone ToneClassification) *AnalysisResult {
	factors := make([]string, len(tone.Factors))
	copy(factors, tone.Factors)

	return &AnalysisResult{
		Dimensions: models.Dimensions{
			Width:  width,
			Height: height,
		},
		Brightness: models.Brightness{
			Average:   stats.Average,
			Min:       stats.Min,
			Max:       stats.Max,
			Histogram: [HistogramBins]int(gray),
			RGBHistograms: models.RGBHistograms{
				Red:   [HistogramBins]int(rgb.Red),
				Green: [HistogramBins]int(rgb.Green),
				Blue:  [HistogramBins]int(rgb.Blue),
			},
		},
		ToneAnalysis: models.ToneAnalysis{
			Type:           string(tone.Type),
			Confidence:     round2(tone.Confidence),
			ShadowRatio:    round2(bands.Shadow),
			MidtoneRatio:   round2(bands.Midtone),
			HighlightRatio: round2(bands.Highlight),
			Factors:        factors,
			Notation:       tone.Notation,
			Zones: models.Zones{
				Low:  tone.Zones.Low,
				Mid:  tone.Zones.Mid,
				High: tone.Zones.High,
			},
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
