package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-tone-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

const (
	maxFetchAttempts   = 3
	defaultBackoffBase = time.Second
)

// HTTPImageFetcher implements ImageFetcher over HTTP(S) with retries
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	backoff  time.Duration
}

// HTTPOption customizes an HTTPImageFetcher
type HTTPOption func(*HTTPImageFetcher)

// WithMaxBytes caps the response body size
func WithMaxBytes(n int64) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.maxBytes = n
	}
}

// WithBackoff sets the base retry delay; attempt n waits n*base
func WithBackoff(base time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.backoff = base
	}
}

// WithTimeout sets the overall client timeout per request
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.client.Timeout = timeout
	}
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts ...HTTPOption) *HTTPImageFetcher {
	transport := &http.Transport{
		// Connection pooling sized for single image downloads
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: DefaultMaxImageBytes,
		backoff:  defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchImage downloads the image at imageURL.
// Network errors and 5xx responses are retried; 4xx responses are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		data, retry, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		logger.WithFields(logrus.Fields{
			"url":     imageURL,
			"attempt": attempt + 1,
			"retry":   retry,
		}).WithError(err).Warn("Image fetch attempt failed")

		if !retry {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxFetchAttempts, lastErr)
}

// fetchOnce performs a single request and reports whether a failure is retryable
func (h *HTTPImageFetcher) fetchOnce(ctx context.Context, imageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/bmp, */*")
	req.Header.Set("User-Agent", "Go-Tone-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: client error: status code %d", ErrSourceNotFound, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.maxBytes && h.maxBytes > 0 {
		return nil, false, fmt.Errorf("%w: content length %d", ErrImageTooLarge, resp.ContentLength)
	}

	data, err := readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}
