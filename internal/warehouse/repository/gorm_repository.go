package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cinelake/cinelake/internal/warehouse/domain"
)

// GormRepository implements Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM warehouse repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// UpsertGenres inserts missing genre names and returns name -> key
func (r *GormRepository) UpsertGenres(ctx context.Context, names []string) (map[string]int64, error) {
	names = dedupeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	models := make([]DimGenreModel, len(names))
	for i, n := range names {
		models[i] = DimGenreModel{GenreName: n}
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "genre_name"}}, DoNothing: true}).
		Create(&models).Error; err != nil {
		return nil, err
	}

	var rows []DimGenreModel
	if err := r.db.WithContext(ctx).Where("genre_name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	keys := make(map[string]int64, len(rows))
	for _, row := range rows {
		keys[row.GenreName] = row.GenreKey
	}
	return keys, nil
}

// UpsertCountries inserts missing country names and returns name -> key
func (r *GormRepository) UpsertCountries(ctx context.Context, names []string) (map[string]int64, error) {
	names = dedupeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	models := make([]DimCountryModel, len(names))
	for i, n := range names {
		models[i] = DimCountryModel{CountryName: n}
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "country_name"}}, DoNothing: true}).
		Create(&models).Error; err != nil {
		return nil, err
	}

	var rows []DimCountryModel
	if err := r.db.WithContext(ctx).Where("country_name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	keys := make(map[string]int64, len(rows))
	for _, row := range rows {
		keys[row.CountryName] = row.CountryKey
	}
	return keys, nil
}

// UpsertPersons inserts missing person names and returns name -> key
func (r *GormRepository) UpsertPersons(ctx context.Context, names []string) (map[string]int64, error) {
	names = dedupeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	models := make([]DimPersonModel, len(names))
	for i, n := range names {
		models[i] = DimPersonModel{PersonName: n}
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "person_name"}}, DoNothing: true}).
		Create(&models).Error; err != nil {
		return nil, err
	}

	var rows []DimPersonModel
	if err := r.db.WithContext(ctx).Where("person_name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	keys := make(map[string]int64, len(rows))
	for _, row := range rows {
		keys[row.PersonName] = row.PersonKey
	}
	return keys, nil
}

// CurrentVersion returns the current fact row for a business key
func (r *GormRepository) CurrentVersion(ctx context.Context, externalID, source string) (*domain.MovieVersion, error) {
	var model FactMovieModel
	result := r.db.WithContext(ctx).
		Where("external_id = ? AND source = ? AND is_current = ?", externalID, source, true).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	version := model.ToDomain()
	return &version, nil
}

// ApplyVersion atomically applies a new version for the version's business
// key. Runs retire-then-insert in one transaction so concurrent loads for
// different keys stay independent while a single key never holds two
// current rows.
func (r *GormRepository) ApplyVersion(ctx context.Context, version *domain.MovieVersion) (int64, bool, error) {
	var key int64
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		if version.ExternalID != nil {
			var current FactMovieModel
			result := tx.
				Where("external_id = ? AND source = ? AND is_current = ?", *version.ExternalID, version.Source, true).
				First(&current)
			if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}

			if result.Error == nil {
				existing := current.ToDomain()
				if existing.AttributesEqual(version) {
					// Unchanged data must not open a new version.
					key = current.MovieKey
					return nil
				}
				if err := tx.Model(&FactMovieModel{}).
					Where("external_id = ? AND source = ? AND is_current = ?", *version.ExternalID, version.Source, true).
					Updates(map[string]interface{}{"valid_to": now, "is_current": false}).Error; err != nil {
					return err
				}
			}
		}

		model := FactMovieModel{}
		model.FromDomain(version)
		model.MovieKey = 0
		model.ValidFrom = now
		model.ValidTo = nil
		model.IsCurrent = true
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		key = model.MovieKey
		created = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return key, created, nil
}

// LinkGenres attaches genre keys to a fact version
func (r *GormRepository) LinkGenres(ctx context.Context, movieKey int64, genreKeys []int64) error {
	if len(genreKeys) == 0 {
		return nil
	}
	models := make([]BridgeMovieGenreModel, len(genreKeys))
	for i, k := range genreKeys {
		models[i] = BridgeMovieGenreModel{MovieKey: movieKey, GenreKey: k}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models).Error
}

// LinkCountries attaches country keys to a fact version
func (r *GormRepository) LinkCountries(ctx context.Context, movieKey int64, countryKeys []int64) error {
	if len(countryKeys) == 0 {
		return nil
	}
	models := make([]BridgeMovieCountryModel, len(countryKeys))
	for i, k := range countryKeys {
		models[i] = BridgeMovieCountryModel{MovieKey: movieKey, CountryKey: k}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models).Error
}

// LinkPersons attaches person keys to a fact version in a role
func (r *GormRepository) LinkPersons(ctx context.Context, movieKey int64, personKeys []int64, role domain.PersonRole) error {
	if len(personKeys) == 0 {
		return nil
	}
	models := make([]BridgeMoviePersonModel, len(personKeys))
	for i, k := range personKeys {
		models[i] = BridgeMoviePersonModel{MovieKey: movieKey, PersonKey: k, RoleType: string(role)}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models).Error
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
