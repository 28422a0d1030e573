package domain

import (
	"encoding/json"
	"time"
)

// ProcessingStep marks how far a staging record has moved through the pipeline.
type ProcessingStep string

const (
	StepDeduplicate ProcessingStep = "deduplicate"
	StepStandardize ProcessingStep = "standardize"
	StepValidate    ProcessingStep = "validate"
	StepLoaded      ProcessingStep = "loaded"
)

// RawRecord is one scraped document in the append-only raw store.
// The payload stays opaque until the deduplication stage coerces it.
type RawRecord struct {
	ID        int64
	Source    string
	Payload   json.RawMessage
	CrawledAt time.Time
	Processed bool
}

// StagingRecord is a normalized-but-unvalidated movie row.
type StagingRecord struct {
	ID            int64
	RawID         int64
	Title         string
	ExternalID    *string
	DetailURL     string
	Status        string
	Category      string
	TotalEpisodes *int
	Duration      string
	ReleaseYear   *int
	Quality       string
	Language      string
	Director      StringList
	Actors        StringList
	Genre         StringList
	OriginCountry StringList
	Poster        string
	Description   string
	Episodes      string
	UpdatedAt     string
	CrawledAt     time.Time

	IsDuplicate    bool
	DuplicateOf    *int64
	ProcessingStep ProcessingStep
}

// ErrorType classifies a validation rule violation.
type ErrorType string

const (
	ErrorRequired ErrorType = "REQUIRED"
	ErrorLength   ErrorType = "LENGTH"
	ErrorRange    ErrorType = "RANGE"
)

// ValidationError is one persisted rule violation for a staging record.
type ValidationError struct {
	StagingID int64
	Type      ErrorType
	Field     string
	Message   string
}

// DedupResult reports the outcome of the deduplication stage.
type DedupResult struct {
	Total      int
	Duplicates int
	Unique     int
}

// StandardizeResult reports the outcome of the standardization stage.
type StandardizeResult struct {
	Standardized int
}

// ValidationResult reports the outcome of the validation stage.
type ValidationResult struct {
	Valid   int
	Invalid int
	Total   int
}

// LoadResult reports the outcome of the warehouse load stage.
type LoadResult struct {
	Loaded int
}

// PipelineResult aggregates the per-stage results of one full run.
type PipelineResult struct {
	Dedup       DedupResult
	Standardize StandardizeResult
	Validation  ValidationResult
	Load        LoadResult
	Duration    time.Duration
}
