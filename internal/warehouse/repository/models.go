package repository

import (
	"time"

	"github.com/cinelake/cinelake/internal/warehouse/domain"
)

// DimGenreModel is the genre dimension, unique on name, append-only.
type DimGenreModel struct {
	GenreKey  int64  `gorm:"column:genre_key;primaryKey;autoIncrement"`
	GenreName string `gorm:"column:genre_name;not null;uniqueIndex"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (DimGenreModel) TableName() string { return "dim_genre" }

// DimCountryModel is the country dimension, unique on name, append-only.
type DimCountryModel struct {
	CountryKey  int64  `gorm:"column:country_key;primaryKey;autoIncrement"`
	CountryName string `gorm:"column:country_name;not null;uniqueIndex"`
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (DimCountryModel) TableName() string { return "dim_country" }

// DimPersonModel is the person dimension shared by directors and actors;
// the role lives on the bridge, not here.
type DimPersonModel struct {
	PersonKey  int64  `gorm:"column:person_key;primaryKey;autoIncrement"`
	PersonName string `gorm:"column:person_name;not null;uniqueIndex"`
	CreatedAt  time.Time
}

// TableName specifies the table name for GORM
func (DimPersonModel) TableName() string { return "dim_person" }

// FactMovieModel is one SCD2 version of a movie.
type FactMovieModel struct {
	MovieKey      int64   `gorm:"column:movie_key;primaryKey;autoIncrement"`
	ExternalID    *string `gorm:"index:idx_fact_business_key"`
	Source        string  `gorm:"not null;index:idx_fact_business_key"`
	Title         string  `gorm:"type:text"`
	Description   string  `gorm:"type:text"`
	PosterURL     string  `gorm:"column:poster_url;type:text"`
	DetailURL     string  `gorm:"column:detail_url;type:text"`
	TotalEpisodes *int
	Quality       string
	Language      string
	Status        string
	Category      string
	ReleaseYear   *int
	CrawledAt     time.Time
	UpdatedAt     string
	Episodes      string     `gorm:"type:text"`
	ValidFrom     time.Time  `gorm:"not null"`
	ValidTo       *time.Time `gorm:""`
	IsCurrent     bool       `gorm:"not null;default:true;index"`
}

// TableName specifies the table name for GORM
func (FactMovieModel) TableName() string { return "fact_movie" }

// BridgeMovieGenreModel associates a fact version with a genre.
type BridgeMovieGenreModel struct {
	MovieKey int64 `gorm:"column:movie_key;primaryKey;autoIncrement:false"`
	GenreKey int64 `gorm:"column:genre_key;primaryKey;autoIncrement:false"`
}

// TableName specifies the table name for GORM
func (BridgeMovieGenreModel) TableName() string { return "bridge_movie_genre" }

// BridgeMovieCountryModel associates a fact version with a country.
type BridgeMovieCountryModel struct {
	MovieKey   int64 `gorm:"column:movie_key;primaryKey;autoIncrement:false"`
	CountryKey int64 `gorm:"column:country_key;primaryKey;autoIncrement:false"`
}

// TableName specifies the table name for GORM
func (BridgeMovieCountryModel) TableName() string { return "bridge_movie_country" }

// BridgeMoviePersonModel associates a fact version with a person in a role.
type BridgeMoviePersonModel struct {
	MovieKey  int64  `gorm:"column:movie_key;primaryKey;autoIncrement:false"`
	PersonKey int64  `gorm:"column:person_key;primaryKey;autoIncrement:false"`
	RoleType  string `gorm:"column:role_type;primaryKey"`
}

// TableName specifies the table name for GORM
func (BridgeMoviePersonModel) TableName() string { return "bridge_movie_person" }

// ToDomain converts a FactMovieModel to a domain MovieVersion
func (m *FactMovieModel) ToDomain() domain.MovieVersion {
	return domain.MovieVersion{
		Key:           m.MovieKey,
		ExternalID:    m.ExternalID,
		Source:        m.Source,
		Title:         m.Title,
		Description:   m.Description,
		PosterURL:     m.PosterURL,
		DetailURL:     m.DetailURL,
		TotalEpisodes: m.TotalEpisodes,
		Quality:       m.Quality,
		Language:      m.Language,
		Status:        m.Status,
		Category:      m.Category,
		ReleaseYear:   m.ReleaseYear,
		CrawledAt:     m.CrawledAt,
		UpdatedAt:     m.UpdatedAt,
		Episodes:      m.Episodes,
		ValidFrom:     m.ValidFrom,
		ValidTo:       m.ValidTo,
		IsCurrent:     m.IsCurrent,
	}
}

// FromDomain fills a FactMovieModel from a domain MovieVersion
func (m *FactMovieModel) FromDomain(v *domain.MovieVersion) {
	m.MovieKey = v.Key
	m.ExternalID = v.ExternalID
	m.Source = v.Source
	m.Title = v.Title
	m.Description = v.Description
	m.PosterURL = v.PosterURL
	m.DetailURL = v.DetailURL
	m.TotalEpisodes = v.TotalEpisodes
	m.Quality = v.Quality
	m.Language = v.Language
	m.Status = v.Status
	m.Category = v.Category
	m.ReleaseYear = v.ReleaseYear
	m.CrawledAt = v.CrawledAt
	m.UpdatedAt = v.UpdatedAt
	m.Episodes = v.Episodes
	m.ValidFrom = v.ValidFrom
	m.ValidTo = v.ValidTo
	m.IsCurrent = v.IsCurrent
}
