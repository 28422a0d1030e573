package repository

import (
	"context"

	"github.com/cinelake/cinelake/internal/warehouse/domain"
)

// Repository is the warehouse store. Dimensions and facts are append-only;
// superseded fact versions are retired in place, never rewritten.
type Repository interface {
	// UpsertGenres inserts missing genre names and returns name -> key.
	// Insertion is insert-if-absent, safe under concurrent duplicates.
	UpsertGenres(ctx context.Context, names []string) (map[string]int64, error)

	// UpsertCountries inserts missing country names and returns name -> key.
	UpsertCountries(ctx context.Context, names []string) (map[string]int64, error)

	// UpsertPersons inserts missing person names and returns name -> key.
	UpsertPersons(ctx context.Context, names []string) (map[string]int64, error)

	// CurrentVersion returns the current fact row for a business key, or
	// nil when the pair has never been loaded.
	CurrentVersion(ctx context.Context, externalID, source string) (*domain.MovieVersion, error)

	// ApplyVersion atomically applies a new version for the version's
	// business key: retires the current row if the attributes changed and
	// inserts the new one. When nothing changed it is a no-op returning
	// the existing key. Returns the resulting key and whether a new
	// version was created.
	ApplyVersion(ctx context.Context, version *domain.MovieVersion) (int64, bool, error)

	// LinkGenres attaches genre keys to a fact version; idempotent.
	LinkGenres(ctx context.Context, movieKey int64, genreKeys []int64) error

	// LinkCountries attaches country keys to a fact version; idempotent.
	LinkCountries(ctx context.Context, movieKey int64, countryKeys []int64) error

	// LinkPersons attaches person keys to a fact version in a role; idempotent.
	LinkPersons(ctx context.Context, movieKey int64, personKeys []int64, role domain.PersonRole) error
}
