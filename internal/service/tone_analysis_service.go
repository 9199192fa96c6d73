package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-tone-inspector/internal/analyzer"
	apperrors "go-tone-inspector/internal/errors"
	"go-tone-inspector/internal/logger"
	"go-tone-inspector/internal/normalizer"
	"go-tone-inspector/internal/observer"
	"go-tone-inspector/internal/repository"
	"go-tone-inspector/internal/storage"
	"go-tone-inspector/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// uploadPrefix marks references of images received in the request body
const uploadPrefix = "upload:"

// ToneAnalysisService defines the operations exposed to transports
type ToneAnalysisService interface {
	// AnalyzeUpload analyzes image bytes received directly from a client
	AnalyzeUpload(ctx context.Context, data []byte, name string) (*models.AnalysisRecord, error)

	// AnalyzeURL fetches and analyzes one image reference
	AnalyzeURL(ctx context.Context, ref string) (*models.AnalysisRecord, error)

	// AnalyzeBatch analyzes several references concurrently; items keep request order
	AnalyzeBatch(ctx context.Context, refs []string) (*models.BatchResponse, error)

	// GetAnalysis loads a stored analysis
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)

	// ListAnalyses lists stored analyses, optionally of a single tone type
	ListAnalyses(ctx context.Context, toneType string, limit int) ([]*models.AnalysisRecord, error)

	// ValidateReference checks a reference without fetching it
	ValidateReference(ref string) error
}

// Options tunes the service
type Options struct {
	AnalysisTimeout  time.Duration
	BatchConcurrency int
	MaxBatchSize     int
}

// toneAnalysisService implements ToneAnalysisService
type toneAnalysisService struct {
	imageRepo    repository.ImageRepository
	analysisRepo repository.AnalysisRepository
	normalizer   normalizer.ImageNormalizer
	analyzer     analyzer.ImageAnalyzer
	events       observer.Subject
	options      Options
}

// NewToneAnalysisService creates a new tone analysis service.
// analysisRepo may be nil, in which case nothing is persisted.
func NewToneAnalysisService(
	imageRepository repository.ImageRepository,
	analysisRepository repository.AnalysisRepository,
	imageNormalizer normalizer.ImageNormalizer,
	imageAnalyzer analyzer.ImageAnalyzer,
	events observer.Subject,
	options Options,
) ToneAnalysisService {
	if options.BatchConcurrency <= 0 {
		options.BatchConcurrency = 1
	}
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &toneAnalysisService{
		imageRepo:    imageRepository,
		analysisRepo: analysisRepository,
		normalizer:   imageNormalizer,
		analyzer:     imageAnalyzer,
		events:       events,
		options:      options,
	}
}

// AnalyzeUpload analyzes image bytes received directly from a client
func (s *toneAnalysisService) AnalyzeUpload(ctx context.Context, data []byte, name string) (*models.AnalysisRecord, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("uploaded image is empty", nil)
	}
	return s.analyze(ctx, uploadPrefix+name, data)
}

// AnalyzeURL fetches and analyzes one image reference
func (s *toneAnalysisService) AnalyzeURL(ctx context.Context, ref string) (*models.AnalysisRecord, error) {
	if err := s.ValidateReference(ref); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := s.imageRepo.FetchImage(ctx, ref)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         ref,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, fetchError(err)
	}
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageFetched,
		Source:         ref,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(data)},
	})

	return s.analyze(ctx, ref, data)
}

// AnalyzeBatch analyzes several references concurrently
func (s *toneAnalysisService) AnalyzeBatch(ctx context.Context, refs []string) (*models.BatchResponse, error) {
	if len(refs) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one reference", nil)
	}
	if s.options.MaxBatchSize > 0 && len(refs) > s.options.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch of %d references exceeds the limit of %d", len(refs), s.options.MaxBatchSize), nil)
	}

	items := make([]models.BatchItem, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.BatchConcurrency)

	for i, ref := range refs {
		i, ref := i, ref
		items[i].Reference = ref
		g.Go(func() error {
			record, err := s.AnalyzeURL(gctx, ref)
			if err != nil {
				// Item failures are reported per item and never cancel the batch
				items[i].Error = err.Error()
				return nil
			}
			items[i].Analysis = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("batch analysis failed", err)
	}

	resp := &models.BatchResponse{Items: items}
	for _, item := range items {
		if item.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return resp, nil
}

// GetAnalysis loads a stored analysis
func (s *toneAnalysisService) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	if s.analysisRepo == nil {
		return nil, apperrors.NewNotFoundError("analysis storage is disabled", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidationError("invalid analysis id", err)
	}

	record, err := s.analysisRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return nil, apperrors.NewNotFoundError("analysis not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load analysis", err)
	}
	return record, nil
}

// ListAnalyses lists stored analyses, optionally of a single tone type
func (s *toneAnalysisService) ListAnalyses(ctx context.Context, toneType string, limit int) ([]*models.AnalysisRecord, error) {
	if s.analysisRepo == nil {
		return []*models.AnalysisRecord{}, nil
	}

	filter := ""
	if toneType != "" {
		parsed, err := analyzer.ParseToneType(toneType)
		if err != nil {
			appErr := apperrors.NewValidationError("unknown tone type", err)
			var unknown *analyzer.UnknownToneTypeError
			if errors.As(err, &unknown) && unknown.Suggestion != "" {
				appErr = appErr.WithDetails(string(unknown.Suggestion))
			}
			return nil, appErr
		}
		filter = string(parsed)
	}

	records, err := s.analysisRepo.ListByType(ctx, filter, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list analyses", err)
	}
	return records, nil
}

// ValidateReference checks a reference without fetching it
func (s *toneAnalysisService) ValidateReference(ref string) error {
	if err := s.imageRepo.ValidateReference(ref); err != nil {
		return apperrors.NewValidationError("invalid image reference", err)
	}
	return nil
}

type pipelineOutput struct {
	normalized *normalizer.NormalizedImage
	result     *analyzer.AnalysisResult
	err        error
}

// analyze runs normalization and tone analysis under the analysis timeout, then persists the record
func (s *toneAnalysisService) analyze(ctx context.Context, ref string, data []byte) (*models.AnalysisRecord, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: ref})

	actx := ctx
	if s.options.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.options.AnalysisTimeout)
		defer cancel()
	}

	done := make(chan pipelineOutput, 1)
	go func() {
		done <- s.runPipeline(data)
	}()

	var out pipelineOutput
	select {
	case out = <-done:
	case <-actx.Done():
		out.err = apperrors.NewTimeoutError("image analysis timed out", actx.Err())
	}

	elapsed := time.Since(start)
	if out.err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Source:         ref,
			ProcessingTime: elapsed,
			ErrorMessage:   out.err.Error(),
		})
		return nil, out.err
	}

	record := &models.AnalysisRecord{
		ID: uuid.NewString(),
		Source: models.SourceInfo{
			Reference:      ref,
			Format:         out.normalized.Format,
			OriginalWidth:  out.normalized.OriginalWidth,
			OriginalHeight: out.normalized.OriginalHeight,
		},
		CreatedAt:         start.UTC(),
		ProcessingTimeSec: elapsed.Seconds(),
		Result:            out.result,
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         ref,
		ProcessingTime: elapsed,
		Success:        true,
		ToneType:       out.result.ToneAnalysis.Type,
		Confidence:     out.result.ToneAnalysis.Confidence,
		Metadata: map[string]interface{}{
			"analysis_id": record.ID,
			"notation":    out.result.ToneAnalysis.Notation,
		},
	})

	s.persist(ctx, record)
	return record, nil
}

func (s *toneAnalysisService) runPipeline(data []byte) pipelineOutput {
	normalized, err := s.normalizer.Normalize(data)
	if err != nil {
		return pipelineOutput{err: decodeError(err)}
	}

	result, err := s.analyzer.Analyze(normalized.Image)
	if err != nil {
		return pipelineOutput{err: apperrors.FromAnalysisError(err)}
	}
	return pipelineOutput{normalized: normalized, result: result}
}

// persist stores the record; failures are reported but do not fail the analysis
func (s *toneAnalysisService) persist(ctx context.Context, record *models.AnalysisRecord) {
	if s.analysisRepo == nil {
		return
	}
	if err := s.analysisRepo.Save(ctx, record); err != nil {
		logger.WithFields(logrus.Fields{
			"analysis_id": record.ID,
			"source":      record.Source.Reference,
		}).WithError(err).Error("Failed to persist analysis")
		s.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.AnalysisPersistFailed,
			Source:       record.Source.Reference,
			ErrorMessage: err.Error(),
		})
	}
}

func (s *toneAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}

// fetchError classifies a source failure
func fetchError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, repository.ErrInvalidReference):
		return apperrors.NewValidationError("invalid image reference", err)
	case errors.Is(err, storage.ErrSourceNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("image is too large", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

// decodeError classifies a normalization failure
func decodeError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, normalizer.ErrUnsupportedFormat):
		return apperrors.NewValidationError("unsupported image format", err)
	case errors.Is(err, normalizer.ErrImageTooLarge):
		return apperrors.NewValidationError("image dimensions are too large", err)
	}
	return apperrors.NewProcessingError("failed to decode image", err)
}
