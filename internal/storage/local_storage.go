package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalImageFetcher implements ImageFetcher over files beneath a root directory
type LocalImageFetcher struct {
	root     string
	maxBytes int64
}

// NewLocalImageFetcher creates a fetcher confined to root
func NewLocalImageFetcher(root string, maxBytes int64) (*LocalImageFetcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid storage root: %s is not a directory", abs)
	}
	return &LocalImageFetcher{root: abs, maxBytes: maxBytes}, nil
}

// FetchImage reads the file at ref, a slash-separated path relative to the root
func (l *LocalImageFetcher) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(filepath.ToSlash(ref), "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid local path %q", ref)
	}

	root, err := os.OpenRoot(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrImageTooLarge, name, info.Size())
	}

	return readLimited(f, l.maxBytes)
}
