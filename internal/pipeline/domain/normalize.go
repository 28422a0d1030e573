package domain

import (
	"regexp"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeTitle collapses internal whitespace runs to a single space
// and trims the result.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(title, " "))
}

// ReleaseYearInRange reports whether a year is plausible at standardization
// time: [1900, current year + 2] to allow announced titles.
func ReleaseYearInRange(year int, now time.Time) bool {
	return year >= 1900 && year <= now.Year()+2
}

// Standardize applies the fixed standardization transforms in order and
// reports whether anything changed. The transforms are idempotent.
func (r *StagingRecord) Standardize(now time.Time) bool {
	changed := false

	if title := NormalizeTitle(r.Title); title != r.Title {
		r.Title = title
		changed = true
	}

	if r.ReleaseYear != nil && !ReleaseYearInRange(*r.ReleaseYear, now) {
		r.ReleaseYear = nil
		changed = true
	}

	for _, list := range []*StringList{&r.Genre, &r.Actors, &r.Director, &r.OriginCountry} {
		norm := list.Normalized()
		if norm.Join() != list.Join() {
			*list = norm
			changed = true
		}
	}

	if quality := strings.ToUpper(strings.TrimSpace(r.Quality)); quality != r.Quality {
		r.Quality = quality
		changed = true
	}

	return changed
}
