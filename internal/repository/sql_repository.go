package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-tone-inspector/pkg/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultListLimit bounds ListByType when no positive limit is given
const DefaultListLimit = 50

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type analysisRow struct {
	ID                string  `db:"id"`
	SourceRef         string  `db:"source_ref"`
	SourceFormat      string  `db:"source_format"`
	OriginalWidth     int     `db:"original_width"`
	OriginalHeight    int     `db:"original_height"`
	ToneType          string  `db:"tone_type"`
	Confidence        float64 `db:"confidence"`
	Notation          string  `db:"notation"`
	Width             int     `db:"width"`
	Height            int     `db:"height"`
	ProcessingTimeSec float64 `db:"processing_time_sec"`
	Result            string  `db:"result"`
	CreatedAt         int64   `db:"created_at"`
}

const selectColumns = `id, source_ref, source_format, original_width, original_height, tone_type,
	confidence, notation, width, height, processing_time_sec, result, created_at`

// SQLAnalysisRepository implements AnalysisRepository over sqlx
type SQLAnalysisRepository struct {
	db *sqlx.DB
}

// NewSQLAnalysisRepository connects to the database and creates the schema
func NewSQLAnalysisRepository(ctx context.Context, driver, dsn string) (*SQLAnalysisRepository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer; in-memory databases are also per-connection
		db.SetMaxOpenConns(1)
	}

	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLAnalysisRepository{db: db}, nil
}

// Save stores an analysis record
func (r *SQLAnalysisRepository) Save(ctx context.Context, record *models.AnalysisRecord) error {
	if record == nil || record.Result == nil {
		return fmt.Errorf("analysis record has no result")
	}
	if record.ID == "" {
		return fmt.Errorf("analysis record has no id")
	}

	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}

	row := analysisRow{
		ID:                record.ID,
		SourceRef:         record.Source.Reference,
		SourceFormat:      record.Source.Format,
		OriginalWidth:     record.Source.OriginalWidth,
		OriginalHeight:    record.Source.OriginalHeight,
		ToneType:          record.Result.ToneAnalysis.Type,
		Confidence:        record.Result.ToneAnalysis.Confidence,
		Notation:          record.Result.ToneAnalysis.Notation,
		Width:             record.Result.Dimensions.Width,
		Height:            record.Result.Dimensions.Height,
		ProcessingTimeSec: record.ProcessingTimeSec,
		Result:            string(payload),
		CreatedAt:         record.CreatedAt.UnixNano(),
	}

	_, err = r.db.NamedExecContext(ctx, `INSERT INTO tone_analyses (`+selectColumns+`) VALUES (
		:id, :source_ref, :source_format, :original_width, :original_height, :tone_type,
		:confidence, :notation, :width, :height, :processing_time_sec, :result, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a stored analysis record
func (r *SQLAnalysisRepository) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	var row analysisRow
	query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM tone_analyses WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
		}
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	return row.toRecord()
}

// ListByType returns the newest records first; an empty toneType lists every type
func (r *SQLAnalysisRepository) ListByType(ctx context.Context, toneType string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []analysisRow
	var err error
	if toneType == "" {
		query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM tone_analyses ORDER BY created_at DESC, id LIMIT ?`)
		err = r.db.SelectContext(ctx, &rows, query, limit)
	} else {
		query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM tone_analyses WHERE tone_type = ? ORDER BY created_at DESC, id LIMIT ?`)
		err = r.db.SelectContext(ctx, &rows, query, toneType, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	records := make([]*models.AnalysisRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Close releases the underlying connection pool
func (r *SQLAnalysisRepository) Close() error {
	return r.db.Close()
}

func (row analysisRow) toRecord() (*models.AnalysisRecord, error) {
	var result models.ImageAnalysisResult
	if err := json.Unmarshal([]byte(row.Result), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", row.ID, err)
	}

	return &models.AnalysisRecord{
		ID: row.ID,
		Source: models.SourceInfo{
			Reference:      row.SourceRef,
			Format:         row.SourceFormat,
			OriginalWidth:  row.OriginalWidth,
			OriginalHeight: row.OriginalHeight,
		},
		CreatedAt:         time.Unix(0, row.CreatedAt).UTC(),
		ProcessingTimeSec: row.ProcessingTimeSec,
		Result:            &result,
	}, nil
}
