package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"go-tone-inspector/internal/analyzer"
	apperrors "go-tone-inspector/internal/errors"
	"go-tone-inspector/internal/normalizer"
	"go-tone-inspector/internal/observer"
	"go-tone-inspector/internal/repository"
	"go-tone-inspector/internal/storage"
	"go-tone-inspector/pkg/models"
	"go-tone-inspector/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitPNG encodes an image whose left half is black and right half white
func splitPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type mapFetcher struct {
	mu     sync.Mutex
	images map[string][]byte
	calls  int
}

func (m *mapFetcher) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	data, ok := m.images[ref]
	if !ok {
		return nil, storage.ErrSourceNotFound
	}
	return data, nil
}

type failingRepo struct {
	repository.AnalysisRepository
}

func (failingRepo) Save(ctx context.Context, record *models.AnalysisRecord) error {
	return errors.New("disk full")
}

type fixture struct {
	service ToneAnalysisService
	metrics *observer.MetricsObserver
	fetcher *mapFetcher
	repo    *repository.SQLAnalysisRepository
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	a, err := analyzer.NewImageAnalyzer(analyzer.DefaultOptions().WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	repo, err := repository.NewSQLAnalysisRepository(context.Background(), repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	fetcher := &mapFetcher{images: map[string][]byte{
		"https://example.com/bw.png":   splitPNG(t, 40, 20),
		"https://example.com/text.txt": []byte("plain text, not an image"),
	}}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(metrics)

	svc := NewToneAnalysisService(
		repository.NewImageRepository(fetcher, repository.URLReferences(validation.NewURLValidator())),
		repo,
		normalizer.NewImageNormalizer(600),
		a,
		events,
		opts,
	)
	return &fixture{service: svc, metrics: metrics, fetcher: fetcher, repo: repo}
}

func defaultOptions() Options {
	return Options{AnalysisTimeout: 5 * time.Second, BatchConcurrency: 2, MaxBatchSize: 5}
}

func TestAnalyzeUpload(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	record, err := f.service.AnalyzeUpload(ctx, splitPNG(t, 40, 20), "bw.png")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "upload:bw.png", record.Source.Reference)
	assert.Equal(t, "png", record.Source.Format)
	assert.Equal(t, 40, record.Source.OriginalWidth)
	assert.Equal(t, string(analyzer.ToneFullLong), record.Result.ToneAnalysis.Type)
	assert.Equal(t, "10", record.Result.ToneAnalysis.Notation)

	stored, err := f.service.GetAnalysis(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Result, stored.Result)

	metrics := f.metrics.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalAnalyses)
	assert.Equal(t, int64(1), metrics.ToneCounts[string(analyzer.ToneFullLong)])
}

func TestAnalyzeUpload_Errors(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	_, err := f.service.AnalyzeUpload(ctx, nil, "empty.png")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.service.AnalyzeUpload(ctx, []byte("GIF89a-but-broken"), "broken.gif")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeProcessing))
	assert.ErrorIs(t, err, normalizer.ErrDecodeFailed)

	_, err = f.service.AnalyzeUpload(ctx, []byte("hello"), "hello.txt")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.ErrorIs(t, err, normalizer.ErrUnsupportedFormat)

	assert.Equal(t, int64(2), f.metrics.GetMetrics().FailedAnalyses)
}

func TestAnalyzeUpload_OversizedHeader(t *testing.T) {
	f := newFixture(t, defaultOptions())

	// 24-bit BMP header declaring 10000x10000 with no pixel data
	header := make([]byte, 54)
	copy(header, "BM")
	binary.LittleEndian.PutUint32(header[10:14], 54)
	binary.LittleEndian.PutUint32(header[14:18], 40)
	binary.LittleEndian.PutUint32(header[18:22], 10000)
	binary.LittleEndian.PutUint32(header[22:26], 10000)
	binary.LittleEndian.PutUint16(header[26:28], 1)
	binary.LittleEndian.PutUint16(header[28:30], 24)

	_, err := f.service.AnalyzeUpload(context.Background(), header, "huge.bmp")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.ErrorIs(t, err, normalizer.ErrImageTooLarge)
	assert.Equal(t, 400, apperrors.GetStatusCode(err))
}

func TestAnalyzeURL(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	record, err := f.service.AnalyzeURL(ctx, "https://example.com/bw.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/bw.png", record.Source.Reference)

	_, err = f.service.AnalyzeURL(ctx, "ftp://example.com/bw.png")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.service.AnalyzeURL(ctx, "https://example.com/missing.png")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Equal(t, int64(1), f.metrics.GetMetrics().FetchFailures)
}

func TestAnalyzeBatch(t *testing.T) {
	f := newFixture(t, defaultOptions())

	refs := []string{
		"https://example.com/bw.png",
		"https://example.com/missing.png",
		"https://example.com/text.txt",
		"https://example.com/bw.png",
	}
	resp, err := f.service.AnalyzeBatch(context.Background(), refs)
	require.NoError(t, err)

	require.Len(t, resp.Items, len(refs))
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 2, resp.Failed)
	for i, item := range resp.Items {
		assert.Equal(t, refs[i], item.Reference)
	}
	assert.NotNil(t, resp.Items[0].Analysis)
	assert.NotEmpty(t, resp.Items[1].Error)
	assert.NotEmpty(t, resp.Items[2].Error)
	assert.NotEqual(t, resp.Items[0].Analysis.ID, resp.Items[3].Analysis.ID)
}

func TestAnalyzeBatch_Limits(t *testing.T) {
	f := newFixture(t, defaultOptions())

	_, err := f.service.AnalyzeBatch(context.Background(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	refs := strings.Split(strings.Repeat("https://example.com/bw.png,", 6), ",")[:6]
	_, err = f.service.AnalyzeBatch(context.Background(), refs)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, 0, f.fetcher.calls)
}

func TestGetAnalysis_Errors(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	_, err := f.service.GetAnalysis(ctx, "not-a-uuid")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.service.GetAnalysis(ctx, "5f0c7a8e-7f55-4c0f-9a43-4d1f3f0b2d11")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestListAnalyses(t *testing.T) {
	f := newFixture(t, defaultOptions())
	ctx := context.Background()

	_, err := f.service.AnalyzeUpload(ctx, splitPNG(t, 10, 10), "a.png")
	require.NoError(t, err)

	records, err := f.service.ListAnalyses(ctx, "Full Long", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = f.service.ListAnalyses(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = f.service.ListAnalyses(ctx, "ful long tone", 10)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, string(analyzer.ToneFullLong), appErr.Details)
}

func TestPersistFailureStillReturnsResult(t *testing.T) {
	a, err := analyzer.NewImageAnalyzer(analyzer.DefaultOptions())
	require.NoError(t, err)
	defer a.Close()

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(metrics)

	svc := NewToneAnalysisService(
		repository.NewImageRepository(&mapFetcher{}, nil),
		failingRepo{},
		normalizer.NewImageNormalizer(0),
		a,
		events,
		defaultOptions(),
	)

	record, err := svc.AnalyzeUpload(context.Background(), splitPNG(t, 4, 4), "x.png")
	require.NoError(t, err)
	assert.NotNil(t, record.Result)
	assert.Equal(t, int64(1), metrics.GetMetrics().PersistFailures)
}

func TestWithoutAnalysisRepository(t *testing.T) {
	a, err := analyzer.NewImageAnalyzer(analyzer.DefaultOptions())
	require.NoError(t, err)
	defer a.Close()

	svc := NewToneAnalysisService(repository.NewImageRepository(&mapFetcher{}, nil), nil,
		normalizer.NewImageNormalizer(0), a, nil, Options{})

	_, err = svc.AnalyzeUpload(context.Background(), splitPNG(t, 4, 4), "x.png")
	require.NoError(t, err)

	records, err := svc.ListAnalyses(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
