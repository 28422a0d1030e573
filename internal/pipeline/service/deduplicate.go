package service

import (
	"context"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
	"github.com/cinelake/cinelake/pkg/errors"
	"github.com/cinelake/cinelake/pkg/interfaces"
)

// Deduplicate ingests the pending raw batch into staging and recomputes
// duplicate groups over the entire staging table. Within a group sharing a
// non-null external id the lowest staging id is the keeper; every other row
// is flagged and points duplicate_of at it.
func (p *Pipeline) Deduplicate(ctx context.Context) (domain.DedupResult, error) {
	var result domain.DedupResult

	stageCtx, cancel, batchID, err := p.startStage(ctx, StepNameDeduplicate)
	if err != nil {
		return result, err
	}
	defer cancel()

	result, err = p.deduplicate(stageCtx)
	p.finishStage(batchID, StepNameDeduplicate, stageCounts{
		processed: result.Total,
		success:   result.Total,
	}, err)
	return result, err
}

func (p *Pipeline) deduplicate(ctx context.Context) (domain.DedupResult, error) {
	var result domain.DedupResult

	raws, err := p.raw.ListUnprocessed(ctx)
	if err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to list unprocessed raw records", err)
	}

	if len(raws) == 0 {
		total, err := p.raw.Count(ctx)
		if err != nil {
			return result, errors.Wrap(errors.ErrorTypeInternal, "failed to count raw records", err)
		}
		if total == 0 {
			return result, errors.Precondition("no raw batch available")
		}
		// The batch was already consumed; scheduled re-runs stay safe.
		// Re-running duplicate detection over staged rows is idempotent.
		if err := p.staging.MarkDuplicates(ctx); err != nil {
			return result, errors.Wrap(errors.ErrorTypeInternal, "failed to recompute duplicates", err)
		}
		p.logger.Info("No pending raw batch, duplicate groups recomputed")
		return result, nil
	}

	records := make([]domain.StagingRecord, 0, len(raws))
	rawIDs := make([]int64, 0, len(raws))
	for i := range raws {
		doc, err := domain.ParseDocument(raws[i].Payload)
		if err != nil {
			return result, errors.Wrap(errors.ErrorTypeBadRequest, "malformed raw payload", err)
		}
		records = append(records, doc.ToStagingRecord(raws[i].ID, raws[i].CrawledAt))
		rawIDs = append(rawIDs, raws[i].ID)
	}

	if err := p.staging.Insert(ctx, records); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to insert staging records", err)
	}
	p.logger.Info("Inserted records into staging",
		interfaces.Int("count", len(records)))

	if err := p.staging.MarkDuplicates(ctx); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to mark duplicates", err)
	}

	duplicates, err := p.staging.CountDuplicates(ctx)
	if err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to count duplicates", err)
	}

	if err := p.raw.MarkProcessed(ctx, rawIDs); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to mark raw records processed", err)
	}

	result.Total = len(records)
	result.Duplicates = int(duplicates)
	result.Unique = result.Total - result.Duplicates
	p.logger.Info("Deduplication finished",
		interfaces.Int("total", result.Total),
		interfaces.Int("duplicates", result.Duplicates))

	return result, nil
}
