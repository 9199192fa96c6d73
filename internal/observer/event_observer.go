package observer

import (
	"context"
	"sync"
	"math"
	"time"

	"go-tone-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         string                 `json:"source"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ToneType       string                 `json:"tone_type,omitempty"`
	Confidence     float64                `json:"confidence,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when a tone classification was produced
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when decoding or analysis fails
	AnalysisFailed EventType = "analysis_failed"
	// ImageFetched when image bytes were retrieved from a source
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
	// AnalysisPersistFailed when a finished analysis could not be stored
	AnalysisPersistFailed EventType = "analysis_persist_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"source":             event.Source,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}

	if event.ToneType != "" {
		fields["tone_type"] = event.ToneType
		fields["confidence"] = event.Confidence
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Debug("Tone analysis started")
	case AnalysisCompleted:
		entry.Info("Tone analysis completed")
	case AnalysisFailed:
		entry.Error("Tone analysis failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case AnalysisPersistFailed:
		entry.Warn("Analysis result not persisted")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a point-in-time snapshot of the metrics observer
type Metrics struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	SuccessfulAnalyses  int64            `json:"successful_analyses"`
	FailedAnalyses      int64            `json:"failed_analyses"`
	ImagesFetched       int64            `json:"images_fetched"`
	BytesFetched        int64            `json:"bytes_fetched"`
	FetchFailures       int64            `json:"fetch_failures"`
	PersistFailures     int64            `json:"persist_failures"`
	TotalProcessingTime time.Duration    `json:"total_processing_time_ns"`
	AvgProcessingTimeMs float64          `json:"avg_processing_time_ms"`
	ToneCounts          map[string]int64 `json:"tone_counts"`

	// AvgConfidence is the mean classifier confidence per tone type
	AvgConfidence map[string]float64 `json:"avg_confidence"`
}

// MetricsObserver collects metrics from analysis events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	imagesFetched       int64
	bytesFetched        int64
	fetchFailures       int64
	persistFailures     int64
	totalProcessingTime time.Duration
	toneCounts          map[string]int64
	confidenceSums      map[string]float64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		toneCounts:     make(map[string]int64),
		confidenceSums: make(map[string]float64),
	}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
		if event.ToneType != "" {
			o.toneCounts[event.ToneType]++
			o.confidenceSums[event.ToneType] += event.Confidence
		}
	case AnalysisFailed:
		o.failedAnalyses++
	case ImageFetched:
		o.imagesFetched++
		if n, ok := event.Metadata["bytes"].(int); ok {
			o.bytesFetched += int64(n)
		}
	case ImageFetchFailed:
		o.fetchFailures++
	case AnalysisPersistFailed:
		o.persistFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var avg float64
	if o.successfulAnalyses > 0 {
		avg = float64(o.totalProcessingTime.Microseconds()) / 1000 / float64(o.successfulAnalyses)
	}

	counts := make(map[string]int64, len(o.toneCounts))
	confidence := make(map[string]float64, len(o.toneCounts))
	for tone, n := range o.toneCounts {
		counts[tone] = n
		confidence[tone] = math.Round(o.confidenceSums[tone]/float64(n)*100) / 100
	}

	return Metrics{
		TotalAnalyses:       o.totalAnalyses,
		SuccessfulAnalyses:  o.successfulAnalyses,
		FailedAnalyses:      o.failedAnalyses,
		ImagesFetched:       o.imagesFetched,
		BytesFetched:        o.bytesFetched,
		FetchFailures:       o.fetchFailures,
		PersistFailures:     o.persistFailures,
		TotalProcessingTime: o.totalProcessingTime,
		AvgProcessingTimeMs: avg,
		ToneCounts:          counts,
		AvgConfidence:       confidence,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer in subscription order.
// A panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, obs := range observers {
		notify(ctx, obs, event)
	}
}

func notify(ctx context.Context, obs Observer, event AnalysisEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
