package service

import (
	"context"
	"time"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
	"github.com/cinelake/cinelake/pkg/errors"
	"github.com/cinelake/cinelake/pkg/interfaces"
)

// Standardize normalizes free-text fields on every non-duplicate staging
// record: title whitespace, implausible release years, list-field trimming
// and quality casing. The transforms are idempotent, so re-running the
// stage produces the same output.
func (p *Pipeline) Standardize(ctx context.Context) (domain.StandardizeResult, error) {
	var result domain.StandardizeResult

	stageCtx, cancel, batchID, err := p.startStage(ctx, StepNameStandardize)
	if err != nil {
		return result, err
	}
	defer cancel()

	result, err = p.standardize(stageCtx)
	p.finishStage(batchID, StepNameStandardize, stageCounts{
		processed: result.Standardized,
		success:   result.Standardized,
	}, err)
	return result, err
}

func (p *Pipeline) standardize(ctx context.Context) (domain.StandardizeResult, error) {
	var result domain.StandardizeResult

	records, err := p.staging.ListNonDuplicates(ctx)
	if err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to list staging records", err)
	}

	now := time.Now().UTC()
	for i := range records {
		records[i].Standardize(now)
		records[i].ProcessingStep = domain.StepStandardize
		if err := p.staging.Update(ctx, &records[i]); err != nil {
			return result, errors.Wrap(errors.ErrorTypeInternal, "failed to update staging record", err)
		}
	}

	result.Standardized = len(records)
	p.logger.Info("Standardization finished",
		interfaces.Int("standardized", result.Standardized))
	return result, nil
}
