package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxImageBytes caps how much of a single image source is read
const DefaultMaxImageBytes int64 = 10 << 20

var (
	// ErrImageTooLarge is returned when a source exceeds the configured byte cap
	ErrImageTooLarge = errors.New("image exceeds maximum size")

	// ErrSourceNotFound is returned when a reference resolves to nothing
	ErrSourceNotFound = errors.New("image source not found")
)

// ImageFetcher retrieves the encoded bytes of an image by reference
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

// readLimited reads r up to limit bytes and fails if more remain
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, limit)
	}
	return data, nil
}
