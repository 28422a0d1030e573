package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
	"github.com/cinelake/cinelake/internal/pipeline/repository"
)

func TestRawRepository(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRawRepository(db)
	ctx := context.Background()

	docs := []json.RawMessage{
		json.RawMessage(`{"title": "Foo"}`),
		json.RawMessage(`{"title": "Bar"}`),
	}
	count, err := repo.Append(ctx, "kkphim", docs, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unprocessed, err := repo.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, unprocessed, 2)
	assert.Equal(t, "kkphim", unprocessed[0].Source)
	assert.False(t, unprocessed[0].Processed)

	err = repo.MarkProcessed(ctx, []int64{unprocessed[0].ID, unprocessed[1].ID})
	require.NoError(t, err)

	unprocessed, err = repo.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	// The raw store is append-only; consumed records stay counted.
	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestMarkDuplicatesKeeperInvariant(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormStagingRepository(db)
	ctx := context.Background()

	ext := "tt001"
	other := "tt002"
	require.NoError(t, repo.Insert(ctx, []domain.StagingRecord{
		{RawID: 1, Title: "Foo", ExternalID: &ext, ProcessingStep: domain.StepDeduplicate},
		{RawID: 2, Title: "Foo again", ExternalID: &ext, ProcessingStep: domain.StepDeduplicate},
		{RawID: 3, Title: "Foo once more", ExternalID: &ext, ProcessingStep: domain.StepDeduplicate},
		{RawID: 4, Title: "Bar", ExternalID: &other, ProcessingStep: domain.StepDeduplicate},
		{RawID: 5, Title: "No external id", ProcessingStep: domain.StepDeduplicate},
		{RawID: 6, Title: "Also none", ProcessingStep: domain.StepDeduplicate},
	}))

	require.NoError(t, repo.MarkDuplicates(ctx))

	group, err := repo.ListByExternalID(ctx, ext)
	require.NoError(t, err)
	require.Len(t, group, 3)

	keeper := group[0]
	assert.False(t, keeper.IsDuplicate)
	assert.Nil(t, keeper.DuplicateOf)
	for _, rec := range group[1:] {
		assert.True(t, rec.IsDuplicate)
		require.NotNil(t, rec.DuplicateOf)
		assert.Equal(t, keeper.ID, *rec.DuplicateOf)
	}

	// Singleton groups and null external ids are never flagged.
	nonDup, err := repo.ListNonDuplicates(ctx)
	require.NoError(t, err)
	assert.Len(t, nonDup, 4)

	dups, err := repo.CountDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dups)
}

func TestMarkDuplicatesIdempotent(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormStagingRepository(db)
	ctx := context.Background()

	ext := "tt001"
	require.NoError(t, repo.Insert(ctx, []domain.StagingRecord{
		{RawID: 1, Title: "Foo", ExternalID: &ext, ProcessingStep: domain.StepDeduplicate},
		{RawID: 2, Title: "Foo again", ExternalID: &ext, ProcessingStep: domain.StepDeduplicate},
	}))

	require.NoError(t, repo.MarkDuplicates(ctx))
	first, err := repo.ListByExternalID(ctx, ext)
	require.NoError(t, err)

	require.NoError(t, repo.MarkDuplicates(ctx))
	second, err := repo.ListByExternalID(ctx, ext)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidationErrorsNoDuplicateRows(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormStagingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, []domain.StagingRecord{
		{RawID: 1, Title: "", Category: "single", ProcessingStep: domain.StepValidate},
	}))
	records, err := repo.ListNonDuplicates(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	id := records[0].ID

	violation := domain.ValidationError{
		StagingID: id,
		Type:      domain.ErrorRequired,
		Field:     "title",
		Message:   "Title is required",
	}
	require.NoError(t, repo.AddValidationErrors(ctx, []domain.ValidationError{violation}))
	require.NoError(t, repo.AddValidationErrors(ctx, []domain.ValidationError{violation}))

	errs, err := repo.ListValidationErrors(ctx, id)
	require.NoError(t, err)
	assert.Len(t, errs, 1)

	require.NoError(t, repo.ClearValidationErrors(ctx, []int64{id}))
	errs, err = repo.ListValidationErrors(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestListEligibleForLoadExcludesInvalidAndDuplicates(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormStagingRepository(db)
	ctx := context.Background()

	ext := "tt001"
	require.NoError(t, repo.Insert(ctx, []domain.StagingRecord{
		{RawID: 1, Title: "Keeper", ExternalID: &ext, Category: "single", ProcessingStep: domain.StepValidate},
		{RawID: 2, Title: "Duplicate", ExternalID: &ext, Category: "single", ProcessingStep: domain.StepValidate},
		{RawID: 3, Title: "", Category: "single", ProcessingStep: domain.StepValidate},
	}))
	require.NoError(t, repo.MarkDuplicates(ctx))

	records, err := repo.ListNonDuplicates(ctx)
	require.NoError(t, err)
	var invalidID int64
	for _, rec := range records {
		if rec.Title == "" {
			invalidID = rec.ID
		}
	}
	require.NotZero(t, invalidID)
	require.NoError(t, repo.AddValidationErrors(ctx, []domain.ValidationError{{
		StagingID: invalidID,
		Type:      domain.ErrorRequired,
		Field:     "title",
		Message:   "Title is required",
	}}))

	eligible, err := repo.ListEligibleForLoad(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "Keeper", eligible[0].Title)
}

func TestSetStep(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormStagingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, []domain.StagingRecord{
		{RawID: 1, Title: "Foo", ProcessingStep: domain.StepDeduplicate},
		{RawID: 2, Title: "Bar", ProcessingStep: domain.StepDeduplicate},
	}))

	require.NoError(t, repo.SetStepForNonDuplicates(ctx, domain.StepStandardize))

	records, err := repo.ListNonDuplicates(ctx)
	require.NoError(t, err)
	for _, rec := range records {
		assert.Equal(t, domain.StepStandardize, rec.ProcessingStep)
	}

	require.NoError(t, repo.SetStepForIDs(ctx, []int64{records[0].ID}, domain.StepLoaded))
	records, err = repo.ListNonDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepLoaded, records[0].ProcessingStep)
	assert.Equal(t, domain.StepStandardize, records[1].ProcessingStep)
}
