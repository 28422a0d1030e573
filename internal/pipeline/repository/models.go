package repository

import (
	"encoding/json"
	"time"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
)

// RawMovieModel represents one scraped document in the append-only raw store.
type RawMovieModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Source    string    `gorm:"not null;index"`
	RawData   string    `gorm:"column:raw_data;type:text;not null"`
	CrawledAt time.Time `gorm:"not null"`
	Processed bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (RawMovieModel) TableName() string { return "raw_movies" }

// StagingMovieModel represents a movie row in the staging store.
type StagingMovieModel struct {
	ID             int64   `gorm:"primaryKey;autoIncrement"`
	RawID          int64   `gorm:"not null;index"`
	Title          string  `gorm:"type:text"`
	ExternalID     *string `gorm:"index"`
	DetailURL      string  `gorm:"column:detail_url;type:text"`
	Status         string
	Category       string
	TotalEpisodes  *int
	Duration       string
	ReleaseYear    *int
	Quality        string
	Language       string
	Director       domain.StringList `gorm:"type:text"`
	Actors         domain.StringList `gorm:"type:text"`
	Genre          domain.StringList `gorm:"type:text"`
	OriginCountry  domain.StringList `gorm:"type:text"`
	Poster         string            `gorm:"type:text"`
	Description    string            `gorm:"type:text"`
	Episodes       string            `gorm:"type:text"`
	UpdatedAt      string
	CrawledAt      time.Time
	IsDuplicate    bool   `gorm:"not null;default:false;index"`
	DuplicateOf    *int64 `gorm:"index"`
	ProcessingStep string `gorm:"not null;default:'deduplicate'"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (StagingMovieModel) TableName() string { return "staging_movies" }

// ValidationErrorModel represents one persisted rule violation.
type ValidationErrorModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	StagingID    int64  `gorm:"not null;uniqueIndex:idx_validation_rule"`
	ErrorType    string `gorm:"not null;uniqueIndex:idx_validation_rule"`
	FieldName    string `gorm:"not null;uniqueIndex:idx_validation_rule"`
	ErrorMessage string
	CreatedAt    time.Time
}

// TableName specifies the table name for GORM
func (ValidationErrorModel) TableName() string { return "validation_errors" }

// ToDomain converts a RawMovieModel to a domain RawRecord
func (m *RawMovieModel) ToDomain() domain.RawRecord {
	return domain.RawRecord{
		ID:        m.ID,
		Source:    m.Source,
		Payload:   json.RawMessage(m.RawData),
		CrawledAt: m.CrawledAt,
		Processed: m.Processed,
	}
}

// ToDomain converts a StagingMovieModel to a domain StagingRecord
func (m *StagingMovieModel) ToDomain() domain.StagingRecord {
	return domain.StagingRecord{
		ID:             m.ID,
		RawID:          m.RawID,
		Title:          m.Title,
		ExternalID:     m.ExternalID,
		DetailURL:      m.DetailURL,
		Status:         m.Status,
		Category:       m.Category,
		TotalEpisodes:  m.TotalEpisodes,
		Duration:       m.Duration,
		ReleaseYear:    m.ReleaseYear,
		Quality:        m.Quality,
		Language:       m.Language,
		Director:       m.Director,
		Actors:         m.Actors,
		Genre:          m.Genre,
		OriginCountry:  m.OriginCountry,
		Poster:         m.Poster,
		Description:    m.Description,
		Episodes:       m.Episodes,
		UpdatedAt:      m.UpdatedAt,
		CrawledAt:      m.CrawledAt,
		IsDuplicate:    m.IsDuplicate,
		DuplicateOf:    m.DuplicateOf,
		ProcessingStep: domain.ProcessingStep(m.ProcessingStep),
	}
}

// FromDomain fills a StagingMovieModel from a domain StagingRecord
func (m *StagingMovieModel) FromDomain(r *domain.StagingRecord) {
	m.ID = r.ID
	m.RawID = r.RawID
	m.Title = r.Title
	m.ExternalID = r.ExternalID
	m.DetailURL = r.DetailURL
	m.Status = r.Status
	m.Category = r.Category
	m.TotalEpisodes = r.TotalEpisodes
	m.Duration = r.Duration
	m.ReleaseYear = r.ReleaseYear
	m.Quality = r.Quality
	m.Language = r.Language
	m.Director = r.Director
	m.Actors = r.Actors
	m.Genre = r.Genre
	m.OriginCountry = r.OriginCountry
	m.Poster = r.Poster
	m.Description = r.Description
	m.Episodes = r.Episodes
	m.UpdatedAt = r.UpdatedAt
	m.CrawledAt = r.CrawledAt
	m.IsDuplicate = r.IsDuplicate
	m.DuplicateOf = r.DuplicateOf
	m.ProcessingStep = string(r.ProcessingStep)
}

// ToDomain converts a ValidationErrorModel to a domain ValidationError
func (m *ValidationErrorModel) ToDomain() domain.ValidationError {
	return domain.ValidationError{
		StagingID: m.StagingID,
		Type:      domain.ErrorType(m.ErrorType),
		Field:     m.FieldName,
		Message:   m.ErrorMessage,
	}
}
