package repository

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"go-tone-inspector/internal/storage"
	"go-tone-inspector/pkg/validation"
)

// ReferenceValidator checks an image reference for a particular source
type ReferenceValidator func(ref string) error

// SourceImageRepository implements ImageRepository on top of an image fetcher
type SourceImageRepository struct {
	fetcher  storage.ImageFetcher
	validate ReferenceValidator
}

// NewImageRepository creates a repository over fetcher that validates references with validate
func NewImageRepository(fetcher storage.ImageFetcher, validate ReferenceValidator) ImageRepository {
	return &SourceImageRepository{
		fetcher:  fetcher,
		validate: validate,
	}
}

// FetchImage validates ref and retrieves the image bytes
func (r *SourceImageRepository) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	if err := r.ValidateReference(ref); err != nil {
		return nil, err
	}
	return r.fetcher.FetchImage(ctx, ref)
}

// ValidateReference validates if the provided reference is acceptable
func (r *SourceImageRepository) ValidateReference(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: reference cannot be empty", ErrInvalidReference)
	}
	if r.validate == nil {
		return nil
	}
	return r.validate(ref)
}

// URLReferences accepts http(s) URLs allowed by the URL validator
func URLReferences(v *validation.URLValidator) ReferenceValidator {
	return func(ref string) error {
		if err := v.ValidateImageURL(ref); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		return nil
	}
}

// BlobReferences accepts "container/blob" references and blob URLs
func BlobReferences(ref string) error {
	if _, _, err := storage.ParseBlobReference(ref); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return nil
}

// LocalReferences accepts slash-separated paths that stay within the storage root
func LocalReferences(ref string) error {
	if !fs.ValidPath(strings.TrimPrefix(ref, "/")) {
		return fmt.Errorf("%w: path %q escapes the storage root", ErrInvalidReference, ref)
	}
	return nil
}
