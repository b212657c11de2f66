package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bulk-manager/core/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no log has the requested id.
var ErrNotFound = errors.New("migration log not found")

var expectedColumns = []string{
	"id", "run_id", "source_field_id", "target_field_id",
	"processed", "updated", "skipped", "failed",
	"status", "started_at", "completed_at", "details",
}

// Repository stores migration logs.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the migration_logs table and verifies its columns.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&Log{}); err != nil {
		return fmt.Errorf("failed to migrate migration_logs: %w", err)
	}
	missing, err := database.MissingColumns(r.db, Log{}.TableName(), expectedColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("migration_logs is missing columns %v", missing)
	}
	return nil
}

// Create inserts a new running log for a source to target migration.
func (r *Repository) Create(ctx context.Context, runID, sourceFieldID, targetFieldID string) (*Log, error) {
	log := &Log{
		ID:            uuid.NewString(),
		RunID:         runID,
		SourceFieldID: sourceFieldID,
		TargetFieldID: targetFieldID,
		Status:        StatusRunning,
		StartedAt:     time.Now().UTC(),
		Details:       []string{},
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, fmt.Errorf("failed to create migration log: %w", err)
	}
	return log, nil
}

// Update saves the counts, status and details of log.
func (r *Repository) Update(ctx context.Context, log *Log) error {
	err := r.db.WithContext(ctx).Model(log).
		Select("processed", "updated", "skipped", "failed", "status", "completed_at", "details").
		Updates(log).Error
	if err != nil {
		return fmt.Errorf("failed to update migration log %s: %w", log.ID, err)
	}
	return nil
}

// Get returns the log with id.
func (r *Repository) Get(ctx context.Context, id string) (*Log, error) {
	var log Log
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration log %s: %w", id, err)
	}
	return &log, nil
}

// List returns up to limit logs, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Log, error) {
	if limit <= 0 {
		limit = 50
	}
	logs := []Log{}
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list migration logs: %w", err)
	}
	return logs, nil
}
