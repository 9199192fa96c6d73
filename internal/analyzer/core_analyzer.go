package analyzer

import (
	"fmt"
	"sync"

	"go-tone-inspector/pkg/validation"
)

// coreAnalyzer implements ImageAnalyzer interface and orchestrates all components
type coreAnalyzer struct {
	workerPool *WorkerPool
	histograms HistogramBuilder
	brightness BrightnessCalculator
	classifier ToneClassifier
	validator  *validation.BufferValidator
	options    AnalysisOptions
}

// NewImageAnalyzer creates a new image analyzer with all components
func NewImageAnalyzer(options AnalysisOptions) (ImageAnalyzer, error) {
	if err := options.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis options: %w", err)
	}

	workerPool := NewWorkerPool(options.MaxWorkers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool: workerPool,
		histograms: NewHistogramBuilder(),
		brightness: NewBrightnessCalculator(),
		classifier: NewToneClassifier(options.Thresholds),
		validator:  validation.NewBufferValidatorWithLimits(validation.BufferLimits{MaxPixels: options.MaxPixels}),
		options:    options,
	}, nil
}

// Analyze runs validation, histogram construction, brightness summary,
// classification and assembly on one image
func (ca *coreAnalyzer) Analyze(img RawImage) (*AnalysisResult, error) {
	if err := ca.validator.ValidateBuffers(img.Gray, img.RGB, img.Width, img.Height); err != nil {
		return nil, err
	}

	gray, err := ca.histograms.BuildGrayHistogram(img.Gray)
	if err != nil {
		return nil, fmt.Errorf("grayscale histogram: %w", err)
	}

	rgb, err := ca.histograms.BuildRGBHistograms(img.RGB)
	if err != nil {
		return nil, fmt.Errorf("rgb histograms: %w", err)
	}

	stats, err := ca.brightness.SummarizeBrightness(gray)
	if err != nil {
		return nil, fmt.Errorf("brightness summary: %w", err)
	}

	bands := ca.brightness.ComputeBandRatios(gray)
	tone := ca.classifier.Classify(gray, stats.Min, stats.Max)

	return AssembleResult(img.Width, img.Height, stats, gray, rgb, bands, tone), nil
}

// AnalyzeBatch fans the images out over the worker pool
func (ca *coreAnalyzer) AnalyzeBatch(images []RawImage) []BatchResult {
	results := make([]BatchResult, len(images))
	var wg sync.WaitGroup

	for i := range images {
		i := i
		results[i].Index = i
		wg.Add(1)
		err := ca.workerPool.Submit(func() {
			defer wg.Done()
			results[i].Result, results[i].Err = ca.Analyze(images[i])
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}

	wg.Wait()
	return results
}

// Close shuts down the worker pool
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}
