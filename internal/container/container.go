package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-tone-inspector/internal/analyzer"
	"go-tone-inspector/internal/config"
	"go-tone-inspector/internal/factory"
	"go-tone-inspector/internal/logger"
	"go-tone-inspector/internal/normalizer"
	"go-tone-inspector/internal/observer"
	"go-tone-inspector/internal/repository"
	"go-tone-inspector/internal/service"
	"go-tone-inspector/internal/transport"
	"go-tone-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config             *config.Config
	imageAnalyzer      analyzer.ImageAnalyzer
	imageRepository    repository.ImageRepository
	analysisRepository *repository.SQLAnalysisRepository
	metrics            *observer.MetricsObserver
	toneService        service.ToneAnalysisService
	handler            http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	// Build dependency graph
	fetcher, err := factory.NewStorageFactory(cfg).CreateStorage(factory.StorageType(cfg.StorageType))
	if err != nil {
		return nil, fmt.Errorf("failed to create image source: %w", err)
	}
	imageRepository := repository.NewImageRepository(fetcher, referenceValidator(cfg))

	analysisRepository, err := repository.NewSQLAnalysisRepository(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open analysis store: %w", err)
	}

	imageAnalyzer, err := factory.NewAnalyzerFactory(cfg.ToneRulesFile, cfg.MaxImageEdge, cfg.BatchConcurrency).CreateAnalyzer()
	if err != nil {
		_ = analysisRepository.Close()
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	toneService := service.NewToneAnalysisService(
		imageRepository,
		analysisRepository,
		normalizer.NewImageNormalizer(cfg.MaxImageEdge, normalizer.WithMaxSourcePixels(cfg.MaxSourcePixels)),
		imageAnalyzer,
		events,
		service.Options{
			AnalysisTimeout:  cfg.AnalysisTimeout,
			BatchConcurrency: cfg.BatchConcurrency,
			MaxBatchSize:     cfg.MaxBatchSize,
		},
	)

	logger.WithFields(logrus.Fields{
		"storage_type":   cfg.StorageType,
		"db_driver":      cfg.DBDriver,
		"max_image_edge": cfg.MaxImageEdge,
	}).Info("Container initialized")

	return &Container{
		config:             cfg,
		imageAnalyzer:      imageAnalyzer,
		imageRepository:    imageRepository,
		analysisRepository: analysisRepository,
		metrics:            metrics,
		toneService:        toneService,
		handler:            transport.NewHandler(toneService, metrics, cfg),
	}, nil
}

func referenceValidator(cfg *config.Config) repository.ReferenceValidator {
	switch cfg.StorageType {
	case config.StorageAzure:
		return repository.BlobReferences
	case config.StorageLocal:
		return repository.LocalReferences
	}

	var opts []validation.URLOption
	if len(cfg.AllowedImageHosts) > 0 {
		opts = append(opts, validation.WithHosts(cfg.AllowedImageHosts...))
	}
	if cfg.BlockPrivateHosts {
		opts = append(opts, validation.WithoutPrivateAddresses())
	}
	return repository.URLReferences(validation.NewURLValidator(opts...))
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the tone analysis service
func (c *Container) Service() service.ToneAnalysisService {
	return c.toneService
}

// Metrics returns the metrics collected from analysis events
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close releases the analyzer workers and the database handle
func (c *Container) Close() error {
	return errors.Join(c.imageAnalyzer.Close(), c.analysisRepository.Close())
}
