package analyzer

// ImageAnalyzer defines the main interface for tone analysis
type ImageAnalyzer interface {
	// Analyze runs the full pipeline on one normalized image
	Analyze(img RawImage) (*AnalysisResult, error)

	// AnalyzeBatch analyzes independent images concurrently; results keep input order
	AnalyzeBatch(images []RawImage) []BatchResult

	// Lifecycle management
	Close() error
}

// HistogramBuilder turns raw pixel buffers into intensity histograms
type HistogramBuilder interface {
	BuildGrayHistogram(buf []byte) (Histogram, error)
	BuildRGBHistograms(buf []byte) (RGBHistograms, error)
}

// BrightnessCalculator derives brightness statistics from a grayscale histogram
type BrightnessCalculator interface {
	SummarizeBrightness(hist Histogram) (BrightnessStats, error)
	ComputeBandRatios(hist Histogram) BandRatios
}

// ToneClassifier assigns one of the ten tone categories
type ToneClassifier interface {
	Classify(hist Histogram, minLevel, maxLevel int) ToneClassification
}
