package analyzer

import "go-tone-inspector/pkg/validation"

// AnalysisOptions provides configuration for the analyzer
type AnalysisOptions struct {
	// Classification cut-offs
	Thresholds ClassifierThresholds

	// MaxPixels bounds width*height of accepted buffers; zero disables the bound
	MaxPixels int

	// Performance options
	MaxWorkers int
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Thresholds: DefaultThresholds(),
		MaxPixels:  validation.DefaultBufferLimits().MaxPixels,
		MaxWorkers: 0, // Use default CPU count
	}
}

// WithThresholds returns options using custom classification thresholds
func (opts AnalysisOptions) WithThresholds(thresholds ClassifierThresholds) AnalysisOptions {
	opts.Thresholds = thresholds
	return opts
}

// WithMaxEdge bounds accepted images to edge x edge pixels
func (opts AnalysisOptions) WithMaxEdge(edge int) AnalysisOptions {
	if edge <= 0 {
		opts.MaxPixels = 0
		return opts
	}
	opts.MaxPixels = edge * edge
	return opts
}

// WithWorkers sets the batch worker count
func (opts AnalysisOptions) WithWorkers(workers int) AnalysisOptions {
	opts.MaxWorkers = workers
	return opts
}
