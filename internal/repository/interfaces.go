package repository

import (
	"context"

	"go-tone-inspector/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves the encoded bytes of an image
	FetchImage(ctx context.Context, ref string) ([]byte, error)

	// ValidateReference checks a reference before any I/O happens
	ValidateReference(ref string) error
}

// AnalysisRepository defines the interface for analysis result operations
type AnalysisRepository interface {
	// Save stores an analysis record; the record must carry an ID
	Save(ctx context.Context, record *models.AnalysisRecord) error

	// Get retrieves a stored analysis record
	Get(ctx context.Context, id string) (*models.AnalysisRecord, error)

	// ListByType returns the newest records, optionally filtered by tone type
	ListByType(ctx context.Context, toneType string, limit int) ([]*models.AnalysisRecord, error)

	// Close releases the underlying connection pool
	Close() error
}
