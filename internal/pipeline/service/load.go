package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
	whdomain "github.com/cinelake/cinelake/internal/warehouse/domain"
	"github.com/cinelake/cinelake/pkg/errors"
	"github.com/cinelake/cinelake/pkg/interfaces"
)

// Load projects every eligible staging record (non-duplicate, zero
// validation errors) into the dimensional model. Dimension rows are
// insert-if-absent, fact versions follow the SCD2 pattern, and bridge
// links are idempotent. Per-record work fans out over a bounded worker
// pool; records with distinct external ids are independent.
func (p *Pipeline) Load(ctx context.Context) (domain.LoadResult, error) {
	var result domain.LoadResult

	stageCtx, cancel, batchID, err := p.startStage(ctx, StepNameLoad)
	if err != nil {
		return result, err
	}
	defer cancel()

	result, err = p.load(stageCtx)
	p.finishStage(batchID, StepNameLoad, stageCounts{
		processed: result.Loaded,
		success:   result.Loaded,
	}, err)
	return result, err
}

func (p *Pipeline) load(ctx context.Context) (domain.LoadResult, error) {
	var result domain.LoadResult

	records, err := p.staging.ListEligibleForLoad(ctx)
	if err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to list records eligible for load", err)
	}
	p.logger.Info("Loading valid movies to warehouse",
		interfaces.Int("count", len(records)))

	// A non-positive worker count would make SetLimit block every Go call.
	workers := p.cfg.LoadWorkers
	if workers < 1 {
		workers = 1
	}

	var loaded int64
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		record := &records[i]
		g.Go(func() error {
			if err := p.loadRecord(groupCtx, record); err != nil {
				return err
			}
			atomic.AddInt64(&loaded, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "warehouse load failed", err)
	}

	ids := make([]int64, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	if err := p.staging.SetStepForIDs(ctx, ids, domain.StepLoaded); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to update processing step", err)
	}

	result.Loaded = int(loaded)
	p.logger.Info("Warehouse load finished",
		interfaces.Int("loaded", result.Loaded))
	return result, nil
}

// loadRecord moves one staging record into the warehouse: dimensions
// first, then the fact version, then the bridges for the resolved keys.
// A movie legitimately lacking genre, country or cast metadata still loads.
func (p *Pipeline) loadRecord(ctx context.Context, record *domain.StagingRecord) error {
	genreKeys, err := p.warehouse.UpsertGenres(ctx, record.Genre)
	if err != nil {
		return err
	}
	countryKeys, err := p.warehouse.UpsertCountries(ctx, record.OriginCountry)
	if err != nil {
		return err
	}
	personKeys, err := p.warehouse.UpsertPersons(ctx, append(append(domain.StringList{}, record.Director...), record.Actors...))
	if err != nil {
		return err
	}

	version := movieVersionFromStaging(record, p.cfg.Source)
	movieKey, _, err := p.warehouse.ApplyVersion(ctx, &version)
	if err != nil {
		return err
	}

	if err := p.warehouse.LinkGenres(ctx, movieKey, resolveKeys(record.Genre, genreKeys)); err != nil {
		return err
	}
	if err := p.warehouse.LinkCountries(ctx, movieKey, resolveKeys(record.OriginCountry, countryKeys)); err != nil {
		return err
	}
	if err := p.warehouse.LinkPersons(ctx, movieKey, resolveKeys(record.Director, personKeys), whdomain.RoleDirector); err != nil {
		return err
	}
	return p.warehouse.LinkPersons(ctx, movieKey, resolveKeys(record.Actors, personKeys), whdomain.RoleActor)
}

func movieVersionFromStaging(record *domain.StagingRecord, source string) whdomain.MovieVersion {
	return whdomain.MovieVersion{
		ExternalID:    record.ExternalID,
		Source:        source,
		Title:         record.Title,
		Description:   record.Description,
		PosterURL:     record.Poster,
		DetailURL:     record.DetailURL,
		TotalEpisodes: record.TotalEpisodes,
		Quality:       record.Quality,
		Language:      record.Language,
		Status:        record.Status,
		Category:      record.Category,
		ReleaseYear:   record.ReleaseYear,
		CrawledAt:     record.CrawledAt,
		UpdatedAt:     record.UpdatedAt,
		Episodes:      record.Episodes,
	}
}

func resolveKeys(names domain.StringList, keys map[string]int64) []int64 {
	out := make([]int64, 0, len(names))
	for _, name := range names {
		if key, ok := keys[name]; ok {
			out = append(out, key)
		}
	}
	return out
}
