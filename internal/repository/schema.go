package repository

import (
	"context"
	"fmt"

	"go-tone-inspector/internal/logger"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tone_analyses (
		id TEXT PRIMARY KEY,
		source_ref TEXT NOT NULL,
		source_format TEXT NOT NULL DEFAULT '',
		original_width INTEGER NOT NULL DEFAULT 0,
		original_height INTEGER NOT NULL DEFAULT 0,
		tone_type TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		notation TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		processing_time_sec DOUBLE PRECISION NOT NULL DEFAULT 0,
		result TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);`,

	`CREATE INDEX IF NOT EXISTS idx_tone_analyses_type ON tone_analyses (tone_type, created_at);`,
}

// CreateSchema creates the analysis tables when missing
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			logger.WithError(err).WithField("query", q).Error("Schema migration failed")
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
