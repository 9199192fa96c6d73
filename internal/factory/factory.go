package factory

import (
	"fmt"

	"go-tone-inspector/internal/analyzer"
	"go-tone-inspector/internal/config"
	"go-tone-inspector/internal/logger"
	"go-tone-inspector/internal/storage"

	"github.com/sirupsen/logrus"
)

// StorageType represents different types of image sources
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = config.StorageHTTP
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = config.StorageAzure
	// LocalStorage for local file system
	LocalStorage StorageType = config.StorageLocal
)

// AnalyzerFactory creates tone analyzers
type AnalyzerFactory interface {
	CreateAnalyzer() (analyzer.ImageAnalyzer, error)
}

// StorageFactory creates image sources
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	rulesFile string
	maxEdge   int
	workers   int
}

// NewAnalyzerFactory creates an analyzer factory from a rules file path (optional),
// the normalizer's maximum edge and the batch worker count
func NewAnalyzerFactory(rulesFile string, maxEdge, workers int) AnalyzerFactory {
	return &analyzerFactory{rulesFile: rulesFile, maxEdge: maxEdge, workers: workers}
}

// CreateAnalyzer loads thresholds and builds an analyzer
func (f *analyzerFactory) CreateAnalyzer() (analyzer.ImageAnalyzer, error) {
	thresholds := analyzer.DefaultThresholds()
	if f.rulesFile != "" {
		loaded, err := analyzer.LoadThresholds(f.rulesFile)
		if err != nil {
			return nil, err
		}
		thresholds = loaded
		logger.WithFields(logrus.Fields{
			"rules_file":        f.rulesFile,
			"long_range_min":    thresholds.LongRangeMin,
			"short_range_max":   thresholds.ShortRangeMax,
			"dominant_zone_min": thresholds.DominantZoneMin,
		}).Info("Loaded tone classification rules")
	}

	opts := analyzer.DefaultOptions().
		WithThresholds(thresholds).
		WithMaxEdge(f.maxEdge).
		WithWorkers(f.workers)
	return analyzer.NewImageAnalyzer(opts)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates an image source based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(
			storage.WithMaxBytes(f.cfg.MaxRequestBodySize),
			storage.WithTimeout(f.cfg.ImageFetchTimeout),
		), nil
	case AzureStorage:
		return storage.NewAzureImageFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.MaxRequestBodySize)
	case LocalStorage:
		return storage.NewLocalImageFetcher(f.cfg.LocalStorageRoot, f.cfg.MaxRequestBodySize)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
