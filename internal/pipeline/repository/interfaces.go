package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
)

// RawRepository is the append-only raw store. Records are never deleted;
// the processed flag is the only mutation.
type RawRepository interface {
	// Append adds a batch of scraped documents with processed=false.
	Append(ctx context.Context, source string, docs []json.RawMessage, crawledAt time.Time) (int, error)

	// ListUnprocessed returns every record not yet consumed by deduplication.
	ListUnprocessed(ctx context.Context) ([]domain.RawRecord, error)

	// MarkProcessed flips the processed flag for the given records.
	MarkProcessed(ctx context.Context, ids []int64) error

	// Count returns the total number of raw records ever ingested.
	Count(ctx context.Context) (int64, error)
}

// StagingRepository owns the staging store and its validation errors.
type StagingRepository interface {
	// Insert creates staging rows for newly ingested raw records.
	Insert(ctx context.Context, records []domain.StagingRecord) error

	// MarkDuplicates recomputes duplicate groups over the whole staging
	// table, keyed by non-null external id with the lowest id as keeper.
	// The recomputation is idempotent.
	MarkDuplicates(ctx context.Context) error

	// CountDuplicates returns the number of rows currently flagged duplicate.
	CountDuplicates(ctx context.Context) (int64, error)

	// ListNonDuplicates returns every staging record with is_duplicate=false.
	ListNonDuplicates(ctx context.Context) ([]domain.StagingRecord, error)

	// ListByExternalID returns all staging rows sharing an external id.
	ListByExternalID(ctx context.Context, externalID string) ([]domain.StagingRecord, error)

	// Update persists the mutable columns of one staging record.
	Update(ctx context.Context, record *domain.StagingRecord) error

	// SetStepForIDs sets processing_step on the given rows.
	SetStepForIDs(ctx context.Context, ids []int64, step domain.ProcessingStep) error

	// SetStepForNonDuplicates sets processing_step on every non-duplicate row.
	SetStepForNonDuplicates(ctx context.Context, step domain.ProcessingStep) error

	// ClearValidationErrors removes previously derived errors for the rows.
	ClearValidationErrors(ctx context.Context, stagingIDs []int64) error

	// AddValidationErrors persists rule violations; duplicates of an
	// existing (staging_id, type, field) tuple are ignored.
	AddValidationErrors(ctx context.Context, errs []domain.ValidationError) error

	// ListValidationErrors returns the persisted violations for one row.
	ListValidationErrors(ctx context.Context, stagingID int64) ([]domain.ValidationError, error)

	// ListEligibleForLoad returns non-duplicate records with zero
	// validation errors, the load stage's input set.
	ListEligibleForLoad(ctx context.Context) ([]domain.StagingRecord, error)
}
