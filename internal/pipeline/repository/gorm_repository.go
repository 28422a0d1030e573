package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
)

// GormRawRepository implements RawRepository
type GormRawRepository struct {
	db *gorm.DB
}

// NewGormRawRepository creates a new GORM raw repository
func NewGormRawRepository(db *gorm.DB) *GormRawRepository {
	return &GormRawRepository{db: db}
}

// Append adds a batch of scraped documents with processed=false
func (r *GormRawRepository) Append(ctx context.Context, source string, docs []json.RawMessage, crawledAt time.Time) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	models := make([]RawMovieModel, len(docs))
	for i, doc := range docs {
		models[i] = RawMovieModel{
			Source:    source,
			RawData:   string(doc),
			CrawledAt: crawledAt,
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 200).Error; err != nil {
		return 0, err
	}
	return len(models), nil
}

// ListUnprocessed returns every record not yet consumed by deduplication
func (r *GormRawRepository) ListUnprocessed(ctx context.Context) ([]domain.RawRecord, error) {
	var models []RawMovieModel
	result := r.db.WithContext(ctx).Where("processed = ?", false).Order("id").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	records := make([]domain.RawRecord, len(models))
	for i := range models {
		records[i] = models[i].ToDomain()
	}
	return records, nil
}

// MarkProcessed flips the processed flag for the given records
func (r *GormRawRepository) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&RawMovieModel{}).
		Where("id IN ?", ids).
		Update("processed", true).Error
}

// Count returns the total number of raw records ever ingested
func (r *GormRawRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RawMovieModel{}).Count(&count).Error
	return count, err
}

// GormStagingRepository implements StagingRepository
type GormStagingRepository struct {
	db *gorm.DB
}

// NewGormStagingRepository creates a new GORM staging repository
func NewGormStagingRepository(db *gorm.DB) *GormStagingRepository {
	return &GormStagingRepository{db: db}
}

// Insert creates staging rows for newly ingested raw records
func (r *GormStagingRepository) Insert(ctx context.Context, records []domain.StagingRecord) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]StagingMovieModel, len(records))
	for i := range records {
		models[i].FromDomain(&records[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 200).Error
}

// MarkDuplicates recomputes duplicate groups over the whole staging table.
// The keeper of a group is the row with the minimum id; records without an
// external id are never grouped. Re-running yields the same assignments.
func (r *GormStagingRepository) MarkDuplicates(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reset so a previously marked row whose group shrank heals itself.
		if err := tx.Model(&StagingMovieModel{}).
			Where("is_duplicate = ? OR duplicate_of IS NOT NULL", true).
			Updates(map[string]interface{}{"is_duplicate": false, "duplicate_of": nil}).Error; err != nil {
			return err
		}

		return tx.Exec(`
			UPDATE staging_movies
			SET is_duplicate = ?,
			    duplicate_of = (
			        SELECT MIN(s2.id) FROM staging_movies s2
			        WHERE s2.external_id = staging_movies.external_id
			    )
			WHERE external_id IS NOT NULL
			  AND id > (
			        SELECT MIN(s3.id) FROM staging_movies s3
			        WHERE s3.external_id = staging_movies.external_id
			  )`, true).Error
	})
}

// CountDuplicates returns the number of rows currently flagged duplicate
func (r *GormStagingRepository) CountDuplicates(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&StagingMovieModel{}).
		Where("is_duplicate = ?", true).
		Count(&count).Error
	return count, err
}

// ListNonDuplicates returns every staging record with is_duplicate=false
func (r *GormStagingRepository) ListNonDuplicates(ctx context.Context) ([]domain.StagingRecord, error) {
	var models []StagingMovieModel
	result := r.db.WithContext(ctx).Where("is_duplicate = ?", false).Order("id").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toDomainRecords(models), nil
}

// ListByExternalID returns all staging rows sharing an external id
func (r *GormStagingRepository) ListByExternalID(ctx context.Context, externalID string) ([]domain.StagingRecord, error) {
	var models []StagingMovieModel
	result := r.db.WithContext(ctx).Where("external_id = ?", externalID).Order("id").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toDomainRecords(models), nil
}

// Update persists the mutable columns of one staging record
func (r *GormStagingRepository) Update(ctx context.Context, record *domain.StagingRecord) error {
	return r.db.WithContext(ctx).
		Model(&StagingMovieModel{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"title":           record.Title,
			"release_year":    record.ReleaseYear,
			"genre":           record.Genre,
			"actors":          record.Actors,
			"director":        record.Director,
			"origin_country":  record.OriginCountry,
			"quality":         record.Quality,
			"processing_step": string(record.ProcessingStep),
		}).Error
}

// SetStepForIDs sets processing_step on the given rows
func (r *GormStagingRepository) SetStepForIDs(ctx context.Context, ids []int64, step domain.ProcessingStep) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&StagingMovieModel{}).
		Where("id IN ?", ids).
		Update("processing_step", string(step)).Error
}

// SetStepForNonDuplicates sets processing_step on every non-duplicate row
func (r *GormStagingRepository) SetStepForNonDuplicates(ctx context.Context, step domain.ProcessingStep) error {
	return r.db.WithContext(ctx).
		Model(&StagingMovieModel{}).
		Where("is_duplicate = ?", false).
		Update("processing_step", string(step)).Error
}

// ClearValidationErrors removes previously derived errors for the rows
func (r *GormStagingRepository) ClearValidationErrors(ctx context.Context, stagingIDs []int64) error {
	if len(stagingIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("staging_id IN ?", stagingIDs).
		Delete(&ValidationErrorModel{}).Error
}

// AddValidationErrors persists rule violations, ignoring duplicates of an
// existing (staging_id, type, field) tuple
func (r *GormStagingRepository) AddValidationErrors(ctx context.Context, errs []domain.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	models := make([]ValidationErrorModel, len(errs))
	for i, e := range errs {
		models[i] = ValidationErrorModel{
			StagingID:    e.StagingID,
			ErrorType:    string(e.Type),
			FieldName:    e.Field,
			ErrorMessage: e.Message,
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(models, 200).Error
}

// ListValidationErrors returns the persisted violations for one row
func (r *GormStagingRepository) ListValidationErrors(ctx context.Context, stagingID int64) ([]domain.ValidationError, error) {
	var models []ValidationErrorModel
	result := r.db.WithContext(ctx).Where("staging_id = ?", stagingID).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	errs := make([]domain.ValidationError, len(models))
	for i := range models {
		errs[i] = models[i].ToDomain()
	}
	return errs, nil
}

// ListEligibleForLoad returns non-duplicate records with zero validation errors
func (r *GormStagingRepository) ListEligibleForLoad(ctx context.Context) ([]domain.StagingRecord, error) {
	var models []StagingMovieModel
	result := r.db.WithContext(ctx).
		Select("staging_movies.*").
		Joins("LEFT JOIN validation_errors v ON v.staging_id = staging_movies.id").
		Where("staging_movies.is_duplicate = ? AND v.id IS NULL", false).
		Order("staging_movies.id").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toDomainRecords(models), nil
}

func toDomainRecords(models []StagingMovieModel) []domain.StagingRecord {
	records := make([]domain.StagingRecord, len(models))
	for i := range models {
		records[i] = models[i].ToDomain()
	}
	return records
}
