package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// RawBatch is the file format the scraper produces: a metadata envelope
// plus one opaque document per movie.
type RawBatch struct {
	Metadata BatchMetadata     `json:"metadata"`
	Data     []json.RawMessage `json:"data"`
}

// BatchMetadata describes the producing crawl.
type BatchMetadata struct {
	Source       string `json:"source"`
	CrawledAt    string `json:"crawledAt"`
	TotalRecords int    `json:"totalRecords"`
	Version      string `json:"version"`
}

// RawDocument is the scraped movie document inside a raw payload.
type RawDocument struct {
	Title         string          `json:"title"`
	ExternalID    string          `json:"externalId"`
	DetailURL     string          `json:"detailUrl"`
	Status        string          `json:"status"`
	Category      string          `json:"category"`
	TotalEpisodes FlexInt         `json:"totalEpisodes"`
	Duration      string          `json:"duration"`
	ReleaseYear   FlexInt         `json:"releaseYear"`
	Quality       string          `json:"quality"`
	Language      string          `json:"language"`
	Director      string          `json:"director"`
	Actors        string          `json:"actors"`
	Genre         string          `json:"genre"`
	OriginCountry string          `json:"originCountry"`
	Poster        string          `json:"poster"`
	Description   string          `json:"description"`
	Episodes      json.RawMessage `json:"episodes"`
	UpdatedAt     string          `json:"updatedAt"`
	CrawledAt     string          `json:"crawledAt"`
}

// ParseDocument coerces a raw payload into a document. A payload that is
// not a JSON object is the fatal-malformed case from the error taxonomy.
func ParseDocument(payload json.RawMessage) (*RawDocument, error) {
	var doc RawDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ToStagingRecord projects a raw document onto staging columns.
func (d *RawDocument) ToStagingRecord(rawID int64, crawledAt time.Time) StagingRecord {
	rec := StagingRecord{
		RawID:          rawID,
		Title:          d.Title,
		DetailURL:      d.DetailURL,
		Status:         d.Status,
		Category:       d.Category,
		TotalEpisodes:  d.TotalEpisodes.Val,
		Duration:       d.Duration,
		ReleaseYear:    d.ReleaseYear.Val,
		Quality:        d.Quality,
		Language:       d.Language,
		Director:       SplitList(d.Director),
		Actors:         SplitList(d.Actors),
		Genre:          SplitList(d.Genre),
		OriginCountry:  SplitList(d.OriginCountry),
		Poster:         d.Poster,
		Description:    d.Description,
		UpdatedAt:      d.UpdatedAt,
		CrawledAt:      crawledAt,
		ProcessingStep: StepDeduplicate,
	}
	if ext := strings.TrimSpace(d.ExternalID); ext != "" {
		rec.ExternalID = &ext
	}
	if len(d.Episodes) > 0 && string(d.Episodes) != "null" {
		rec.Episodes = string(d.Episodes)
	}
	return rec
}
