package domain

import "unicode/utf8"

const (
	// TitleMaxLength is the longest title the warehouse accepts.
	TitleMaxLength = 500

	// MinReleaseYear and MaxReleaseYear bound acceptable release years.
	MinReleaseYear = 1900
	MaxReleaseYear = 2030
)

// Validate evaluates every field-level rule independently and returns one
// error per violation. A record with no violations is eligible for load.
func (r *StagingRecord) Validate() []ValidationError {
	var errs []ValidationError

	if len(r.Title) == 0 {
		errs = append(errs, ValidationError{
			StagingID: r.ID,
			Type:      ErrorRequired,
			Field:     "title",
			Message:   "Title is required",
		})
	}
	// Length is measured in characters, not bytes; accented titles are
	// multi-byte in UTF-8.
	if utf8.RuneCountInString(r.Title) > TitleMaxLength {
		errs = append(errs, ValidationError{
			StagingID: r.ID,
			Type:      ErrorLength,
			Field:     "title",
			Message:   "Title too long",
		})
	}
	if r.ReleaseYear != nil && (*r.ReleaseYear < MinReleaseYear || *r.ReleaseYear > MaxReleaseYear) {
		errs = append(errs, ValidationError{
			StagingID: r.ID,
			Type:      ErrorRange,
			Field:     "release_year",
			Message:   "Invalid release year",
		})
	}
	if r.Category == "" {
		errs = append(errs, ValidationError{
			StagingID: r.ID,
			Type:      ErrorRequired,
			Field:     "category",
			Message:   "Category is required",
		})
	}

	return errs
}
