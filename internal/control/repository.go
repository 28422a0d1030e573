package control

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository writes and reads the control log. Stages only ever append and
// close entries here; business data never flows through the control log.
type Repository interface {
	// Start opens a running entry for a stage invocation.
	Start(ctx context.Context, batchID, stepName string) error

	// Finish closes the entry with its final status and counts.
	Finish(ctx context.Context, batchID string, status Status, processed, success, failed int, errorMessage string) error

	// Get returns one entry by batch id.
	Get(ctx context.Context, batchID string) (*LogEntry, error)

	// ListRecent returns the most recently started entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]LogEntry, error)
}

// GormRepository implements Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM control log repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Start opens a running entry for a stage invocation
func (r *GormRepository) Start(ctx context.Context, batchID, stepName string) error {
	model := ProcessingLogModel{
		BatchID:   batchID,
		StepName:  stepName,
		Status:    string(StatusRunning),
		StartTime: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// Finish closes the entry with its final status and counts
func (r *GormRepository) Finish(ctx context.Context, batchID string, status Status, processed, success, failed int, errorMessage string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":            string(status),
		"records_processed": processed,
		"records_success":   success,
		"records_failed":    failed,
		"end_time":          now,
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	return r.db.WithContext(ctx).
		Model(&ProcessingLogModel{}).
		Where("batch_id = ? AND end_time IS NULL", batchID).
		Updates(updates).Error
}

// Get returns one entry by batch id
func (r *GormRepository) Get(ctx context.Context, batchID string) (*LogEntry, error) {
	var model ProcessingLogModel
	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&model).Error; err != nil {
		return nil, err
	}
	entry := model.ToDomain()
	return &entry, nil
}

// ListRecent returns the most recently started entries, newest first
func (r *GormRepository) ListRecent(ctx context.Context, limit int) ([]LogEntry, error) {
	var models []ProcessingLogModel
	if err := r.db.WithContext(ctx).
		Order("start_time DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]LogEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToDomain()
	}
	return entries, nil
}

// GenerateBatchID produces a unique batch id for one stage invocation.
func GenerateBatchID(prefix string) string {
	ts := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s_%s_%s", prefix, ts, uuid.NewString()[:8])
}
