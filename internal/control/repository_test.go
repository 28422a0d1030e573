package control

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory DB.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ProcessingLogModel{}))
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func TestStartFinishLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	batchID := GenerateBatchID("dedup")
	require.NoError(t, repo.Start(ctx, batchID, "deduplicate_data"))

	entry, err := repo.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, entry.Status)
	assert.Nil(t, entry.EndTime)
	assert.Nil(t, entry.ErrorMessage)

	require.NoError(t, repo.Finish(ctx, batchID, StatusSuccess, 10, 8, 2, ""))

	entry, err = repo.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, entry.Status)
	assert.Equal(t, 10, entry.RecordsProcessed)
	assert.Equal(t, 8, entry.RecordsSuccess)
	assert.Equal(t, 2, entry.RecordsFailed)
	require.NotNil(t, entry.EndTime)
	assert.False(t, entry.EndTime.Before(entry.StartTime))
	assert.Nil(t, entry.ErrorMessage)
}

func TestFinishRecordsFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	batchID := GenerateBatchID("load")
	require.NoError(t, repo.Start(ctx, batchID, "load_to_dw"))
	require.NoError(t, repo.Finish(ctx, batchID, StatusFailed, 5, 3, 2, "warehouse unavailable"))

	entry, err := repo.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, entry.Status)
	require.NotNil(t, entry.ErrorMessage)
	assert.Equal(t, "warehouse unavailable", *entry.ErrorMessage)
}

func TestFinishClosesEntryOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	batchID := GenerateBatchID("validate")
	require.NoError(t, repo.Start(ctx, batchID, "validate_data"))
	require.NoError(t, repo.Finish(ctx, batchID, StatusSuccess, 4, 4, 0, ""))

	// A second close must not overwrite the recorded outcome.
	require.NoError(t, repo.Finish(ctx, batchID, StatusFailed, 0, 0, 0, "late failure"))

	entry, err := repo.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, entry.Status)
	assert.Equal(t, 4, entry.RecordsProcessed)
	assert.Nil(t, entry.ErrorMessage)
}

func TestListRecent(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	steps := []string{"deduplicate_data", "standardize_data", "validate_data", "load_to_dw"}
	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = GenerateBatchID(step)
		require.NoError(t, repo.Start(ctx, ids[i], step))
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[3], entries[0].BatchID)
	assert.Equal(t, ids[2], entries[1].BatchID)
}

func TestGenerateBatchID(t *testing.T) {
	a := GenerateBatchID("dedup")
	b := GenerateBatchID("dedup")

	assert.True(t, strings.HasPrefix(a, "dedup_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, strings.Split(a, "_"), 3)
}
