package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-tone-inspector/internal/analyzer"
	"go-tone-inspector/internal/config"
	apperrors "go-tone-inspector/internal/errors"
	"go-tone-inspector/internal/logger"
	"go-tone-inspector/internal/observer"
	"go-tone-inspector/internal/service"
	"go-tone-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

const (
	version         = "1.0.0"
	uploadFieldName = "image"
)

// NewHandler wires every route onto a gin engine
func NewHandler(svc service.ToneAnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsHandler(metrics))
	r.GET("/tones", listTones)
	r.POST("/analyze", analyzeUpload(svc, cfg))
	r.POST("/analyze/url", analyzeURL(svc, cfg))
	r.POST("/analyze/batch", analyzeBatch(svc, cfg))
	r.GET("/analyses", listAnalyses(svc))
	r.GET("/analyses/:id", getAnalysis(svc))

	return r
}

func analyzeUpload(svc service.ToneAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing image upload")

		fileHeader, err := c.FormFile(uploadFieldName)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
				respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, fmt.Sprintf("multipart field %q is required", uploadFieldName), err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to open uploaded file", err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read uploaded file", err)
			return
		}

		record, err := svc.AnalyzeUpload(ctx, data, fileHeader.Filename)
		if err != nil {
			respondAppError(c, err)
			return
		}

		logCompleted(c, record, startTime)
		c.JSON(http.StatusOK, record)
	}
}

func analyzeURL(svc service.ToneAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing image URL analysis request")

		var req models.AnalyzeURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		record, err := svc.AnalyzeURL(ctx, req.URL)
		if err != nil {
			respondAppError(c, err)
			return
		}

		logCompleted(c, record, startTime)
		c.JSON(http.StatusOK, record)
	}
}

func analyzeBatch(svc service.ToneAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing batch analysis request")

		var req models.AnalyzeBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.AnalyzeBatch(ctx, req.URLs)
		if err != nil {
			respondAppError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"succeeded": resp.Succeeded,
			"failed":    resp.Failed,
		}).Info("Batch analysis completed")
		c.JSON(http.StatusOK, resp)
	}
}

func getAnalysis(svc service.ToneAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := svc.GetAnalysis(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func listAnalyses(svc service.ToneAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondError(c, http.StatusBadRequest, "limit must be a positive integer", fmt.Errorf("limit=%q", raw))
				return
			}
			limit = n
		}

		records, err := svc.ListAnalyses(c.Request.Context(), c.Query("type"), limit)
		if err != nil {
			respondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": records,
			"count": len(records),
		})
	}
}

func listTones(c *gin.Context) {
	types := analyzer.ToneTypes()
	tones := make([]models.ToneTypeInfo, 0, len(types))
	for _, t := range types {
		tones = append(tones, models.ToneTypeInfo{Name: string(t), Notation: t.Notation()})
	}
	c.JSON(http.StatusOK, tones)
}

func metricsHandler(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, observer.NewMetricsObserver().GetMetrics())
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	body := gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if vm, err := mem.VirtualMemoryWithContext(c.Request.Context()); err == nil {
		body["memory"] = gin.H{
			"total_bytes":     vm.Total,
			"available_bytes": vm.Available,
			"used_percent":    vm.UsedPercent,
		}
	} else {
		logger.WithError(err).Debug("Host memory stats unavailable")
	}

	c.JSON(http.StatusOK, body)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func logRequest(c *gin.Context, message string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(message)
}

func logCompleted(c *gin.Context, record *models.AnalysisRecord, startTime time.Time) {
	logger.WithFields(logrus.Fields{
		"analysis_id":        record.ID,
		"source":             record.Source.Reference,
		"tone_type":          record.Result.ToneAnalysis.Type,
		"confidence":         record.Result.ToneAnalysis.Confidence,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
		"ip":                 c.ClientIP(),
	}).Info("Tone analysis request completed")
}

// respondAppError renders an error from the service layer
func respondAppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondError(c, determineStatusCode(err), "request processing failed", err)
		return
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": appErr.StatusCode,
		"error_type":  appErr.Type,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(appErr.StatusCode),
		Message: appErr.Message,
	}
	if appErr.Cause != nil {
		resp.Message = fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
	}
	if appErr.Details != "" {
		resp.Suggestion = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.StatusCode, resp)
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
