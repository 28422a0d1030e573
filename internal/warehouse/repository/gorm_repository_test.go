package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cinelake/cinelake/internal/warehouse/domain"
	"github.com/cinelake/cinelake/internal/warehouse/repository"
)

func TestUpsertDimensionsIdempotent(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	first, err := repo.UpsertGenres(ctx, []string{"Action", "Drama", "Action", ""})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := repo.UpsertGenres(ctx, []string{"Drama", "Action", "Comedy"})
	require.NoError(t, err)
	require.Len(t, second, 3)

	// Existing names keep their keys across upserts.
	assert.Equal(t, first["Action"], second["Action"])
	assert.Equal(t, first["Drama"], second["Drama"])
	assert.NotZero(t, second["Comedy"])
}

func TestUpsertPersonsSharedAcrossRoles(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	// The same person appearing as director and actor is one dimension row.
	asDirector, err := repo.UpsertPersons(ctx, []string{"Bong Joon-ho"})
	require.NoError(t, err)
	asActor, err := repo.UpsertPersons(ctx, []string{"Bong Joon-ho", "Song Kang-ho"})
	require.NoError(t, err)

	assert.Equal(t, asDirector["Bong Joon-ho"], asActor["Bong Joon-ho"])

	key := asActor["Bong Joon-ho"]
	require.NoError(t, repo.LinkPersons(ctx, 1, []int64{key}, domain.RoleDirector))
	require.NoError(t, repo.LinkPersons(ctx, 1, []int64{key}, domain.RoleActor))
	// Re-linking the same role is a no-op, not an error.
	require.NoError(t, repo.LinkPersons(ctx, 1, []int64{key}, domain.RoleActor))
}

func TestApplyVersionFirstInsert(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	version := movieVersion("tt001", "First Title")
	key, created, err := repo.ApplyVersion(ctx, &version)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, key)

	current, err := repo.CurrentVersion(ctx, "tt001", "kkphim")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, key, current.Key)
	assert.Equal(t, "First Title", current.Title)
	assert.True(t, current.IsCurrent)
	assert.Nil(t, current.ValidTo)
}

func TestApplyVersionChangedAttributesRetireAndInsert(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	v1 := movieVersion("tt001", "First Title")
	firstKey, created, err := repo.ApplyVersion(ctx, &v1)
	require.NoError(t, err)
	require.True(t, created)

	v2 := movieVersion("tt001", "Renamed Title")
	secondKey, created, err := repo.ApplyVersion(ctx, &v2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, firstKey, secondKey)

	current, err := repo.CurrentVersion(ctx, "tt001", "kkphim")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, secondKey, current.Key)
	assert.Equal(t, "Renamed Title", current.Title)

	// The retired row keeps its history with a closed validity window.
	versions, err := allVersions(db, "tt001")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	for _, v := range versions {
		if v.Key == firstKey {
			assert.False(t, v.IsCurrent)
			require.NotNil(t, v.ValidTo)
			assert.False(t, v.ValidTo.Before(v.ValidFrom))
		}
	}
}

func TestApplyVersionUnchangedAttributesNoOp(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	v1 := movieVersion("tt001", "Stable Title")
	firstKey, _, err := repo.ApplyVersion(ctx, &v1)
	require.NoError(t, err)

	v2 := movieVersion("tt001", "Stable Title")
	secondKey, created, err := repo.ApplyVersion(ctx, &v2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstKey, secondKey)

	versions, err := allVersions(db, "tt001")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestApplyVersionNilExternalIDAlwaysInserts(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	version := domain.MovieVersion{Source: "kkphim", Title: "No external id"}
	_, created, err := repo.ApplyVersion(ctx, &version)
	require.NoError(t, err)
	assert.True(t, created)

	again := domain.MovieVersion{Source: "kkphim", Title: "No external id"}
	_, created, err = repo.ApplyVersion(ctx, &again)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestLinkBridgesIdempotent(t *testing.T) {
	db := repository.NewTestDB(t)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	genres, err := repo.UpsertGenres(ctx, []string{"Action"})
	require.NoError(t, err)
	countries, err := repo.UpsertCountries(ctx, []string{"Korea"})
	require.NoError(t, err)

	version := movieVersion("tt001", "Bridged")
	key, _, err := repo.ApplyVersion(ctx, &version)
	require.NoError(t, err)

	require.NoError(t, repo.LinkGenres(ctx, key, []int64{genres["Action"]}))
	require.NoError(t, repo.LinkGenres(ctx, key, []int64{genres["Action"]}))
	require.NoError(t, repo.LinkCountries(ctx, key, []int64{countries["Korea"]}))
	require.NoError(t, repo.LinkCountries(ctx, key, []int64{countries["Korea"]}))

	var genreLinks, countryLinks int64
	require.NoError(t, db.Table("bridge_movie_genre").Where("movie_key = ?", key).Count(&genreLinks).Error)
	require.NoError(t, db.Table("bridge_movie_country").Where("movie_key = ?", key).Count(&countryLinks).Error)
	assert.Equal(t, int64(1), genreLinks)
	assert.Equal(t, int64(1), countryLinks)
}

func movieVersion(externalID, title string) domain.MovieVersion {
	ext := externalID
	episodes := 16
	year := 2021
	return domain.MovieVersion{
		ExternalID:    &ext,
		Source:        "kkphim",
		Title:         title,
		Status:        "completed",
		Category:      "series",
		TotalEpisodes: &episodes,
		ReleaseYear:   &year,
		Quality:       "HD",
		Language:      "Vietsub",
		CrawledAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func allVersions(db *gorm.DB, externalID string) ([]domain.MovieVersion, error) {
	var models []repository.FactMovieModel
	if err := db.Where("external_id = ?", externalID).Order("movie_key").Find(&models).Error; err != nil {
		return nil, err
	}
	versions := make([]domain.MovieVersion, len(models))
	for i := range models {
		versions[i] = models[i].ToDomain()
	}
	return versions, nil
}
