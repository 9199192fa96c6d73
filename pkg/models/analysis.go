package models

import "time"

// ImageAnalysisResult is the complete output of the tone pipeline for one image
type ImageAnalysisResult struct {
	Dimensions   Dimensions   `json:"dimensions"`
	Brightness   Brightness   `json:"brightness"`
	ToneAnalysis ToneAnalysis `json:"toneAnalysis"`
}

// Dimensions of the normalized image the histograms were built from
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Brightness carries grayscale statistics and all histograms
type Brightness struct {
	Average       int           `json:"average"`
	Min           int           `json:"min"`
	Max           int           `json:"max"`
	Histogram     [256]int      `json:"histogram"`
	RGBHistograms RGBHistograms `json:"rgbHistograms"`
}

// RGBHistograms holds one 256-bin histogram per color channel
type RGBHistograms struct {
	Red   [256]int `json:"red"`
	Green [256]int `json:"green"`
	Blue  [256]int `json:"blue"`
}

// ToneAnalysis is the tonal classification together with the brightness band ratios
type ToneAnalysis struct {
	Type           string   `json:"type"`
	Confidence     float64  `json:"confidence"`
	ShadowRatio    float64  `json:"shadowRatio"`
	MidtoneRatio   float64  `json:"midtoneRatio"`
	HighlightRatio float64  `json:"highlightRatio"`
	Factors        []string `json:"factors"`
	Notation       string   `json:"notation"`
	Zones          Zones    `json:"zones"`
}

// Zones are integer percentages of pixel mass in the low, mid and high zone groups
type Zones struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

// SourceInfo describes where an analysed image came from
type SourceInfo struct {
	Reference      string `json:"reference"`
	Format         string `json:"format"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
}

// AnalysisRecord is a persisted analysis as returned by the API
type AnalysisRecord struct {
	ID                string               `json:"id"`
	Source            SourceInfo           `json:"source"`
	CreatedAt         time.Time            `json:"created_at"`
	ProcessingTimeSec float64              `json:"processing_time_sec"`
	Result            *ImageAnalysisResult `json:"result"`
}
