package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                          { return "panicking" }

func TestMetricsObserver(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)
	ctx := context.Background()

	events := []AnalysisEvent{
		{EventType: AnalysisStarted},
		{EventType: AnalysisCompleted, Success: true, ToneType: "full long tone", Confidence: 0.9, ProcessingTime: 10 * time.Millisecond},
		{EventType: ImageFetched, Success: true, Metadata: map[string]interface{}{"bytes": 2048}},
		{EventType: AnalysisStarted},
		{EventType: AnalysisCompleted, Success: true, ToneType: "full long tone", Confidence: 0.8, ProcessingTime: 30 * time.Millisecond},
		{EventType: AnalysisStarted},
		{EventType: AnalysisFailed},
		{EventType: ImageFetchFailed},
		{EventType: AnalysisPersistFailed},
	}
	for _, e := range events {
		publisher.NotifyObservers(ctx, e)
	}

	got := metrics.GetMetrics()
	assert.Equal(t, int64(3), got.TotalAnalyses)
	assert.Equal(t, int64(2), got.SuccessfulAnalyses)
	assert.Equal(t, int64(1), got.FailedAnalyses)
	assert.Equal(t, int64(1), got.FetchFailures)
	assert.Equal(t, int64(1), got.PersistFailures)
	assert.InDelta(t, 20.0, got.AvgProcessingTimeMs, 1e-9)
	assert.Equal(t, map[string]int64{"full long tone": 2}, got.ToneCounts)
	assert.InDelta(t, 0.85, got.AvgConfidence["full long tone"], 1e-9)
	assert.Equal(t, int64(1), got.ImagesFetched)
	assert.Equal(t, int64(2048), got.BytesFetched)

	// Snapshot must not alias internal state
	got.ToneCounts["full long tone"] = 99
	assert.Equal(t, int64(2), metrics.GetMetrics().ToneCounts["full long tone"])
}

func TestEventPublisher_PanickingObserver(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(panickingObserver{})
	publisher.Subscribe(metrics)

	require.NotPanics(t, func() {
		publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	})
	assert.Equal(t, int64(1), metrics.GetMetrics().TotalAnalyses)
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)
	publisher.Unsubscribe(metrics)

	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	assert.Equal(t, int64(0), metrics.GetMetrics().TotalAnalyses)
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	NewLoggingObserver(log).OnEvent(context.Background(), AnalysisEvent{
		EventType:      AnalysisCompleted,
		Source:         "upload:photo.png",
		ProcessingTime: 15 * time.Millisecond,
		Success:        true,
		ToneType:       "mid-key short tone",
		Confidence:     0.75,
		Metadata:       map[string]interface{}{"notation": "3,5"},
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "Tone analysis completed", entry["msg"])
	assert.Equal(t, "mid-key short tone", entry["tone_type"])
	assert.Equal(t, "3,5", entry["notation"])
	assert.Equal(t, float64(15), entry["processing_time_ms"])
}
