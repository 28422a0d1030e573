package domain

import (
	"time"
)

// PersonRole distinguishes how a person relates to a movie on the bridge.
type PersonRole string

const (
	RoleDirector PersonRole = "director"
	RoleActor    PersonRole = "actor"
)

// Dimension is an append-only reference entity (genre, country, person).
type Dimension struct {
	Key  int64
	Name string
}

// MovieVersion is one SCD2 version of a movie in the fact table. Exactly
// one version per (external id, source) pair is current at any moment.
type MovieVersion struct {
	Key           int64
	ExternalID    *string
	Source        string
	Title         string
	Description   string
	PosterURL     string
	DetailURL     string
	TotalEpisodes *int
	Quality       string
	Language      string
	Status        string
	Category      string
	ReleaseYear   *int
	CrawledAt     time.Time
	UpdatedAt     string
	Episodes      string
	ValidFrom     time.Time
	ValidTo       *time.Time
	IsCurrent     bool
}

// AttributesEqual reports whether two versions carry the same business
// attributes, ignoring keys and validity bookkeeping. Re-loading unchanged
// staging data must not open a new version.
func (v *MovieVersion) AttributesEqual(other *MovieVersion) bool {
	return v.Title == other.Title &&
		v.Description == other.Description &&
		v.PosterURL == other.PosterURL &&
		v.DetailURL == other.DetailURL &&
		intPtrEqual(v.TotalEpisodes, other.TotalEpisodes) &&
		v.Quality == other.Quality &&
		v.Language == other.Language &&
		v.Status == other.Status &&
		v.Category == other.Category &&
		intPtrEqual(v.ReleaseYear, other.ReleaseYear) &&
		v.CrawledAt.Equal(other.CrawledAt) &&
		v.UpdatedAt == other.UpdatedAt &&
		v.Episodes == other.Episodes
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
