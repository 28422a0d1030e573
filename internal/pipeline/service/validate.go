package service

import (
	"context"

	"github.com/cinelake/cinelake/internal/pipeline/domain"
	"github.com/cinelake/cinelake/pkg/errors"
	"github.com/cinelake/cinelake/pkg/interfaces"
)

// Validate evaluates field-level rules on every non-duplicate staging
// record. Violations are persisted as data and never fail the stage;
// previously derived errors for the checked set are cleared first so
// re-runs cannot accumulate duplicate rows.
func (p *Pipeline) Validate(ctx context.Context) (domain.ValidationResult, error) {
	var result domain.ValidationResult

	stageCtx, cancel, batchID, err := p.startStage(ctx, StepNameValidate)
	if err != nil {
		return result, err
	}
	defer cancel()

	result, err = p.validate(stageCtx)
	p.finishStage(batchID, StepNameValidate, stageCounts{
		processed: result.Total,
		success:   result.Valid,
		failed:    result.Invalid,
	}, err)
	return result, err
}

func (p *Pipeline) validate(ctx context.Context) (domain.ValidationResult, error) {
	var result domain.ValidationResult

	records, err := p.staging.ListNonDuplicates(ctx)
	if err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to list staging records", err)
	}

	ids := make([]int64, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}

	// Validation is a pure re-derivable check over current staging state.
	if err := p.staging.ClearValidationErrors(ctx, ids); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to clear validation errors", err)
	}

	var violations []domain.ValidationError
	for i := range records {
		errs := records[i].Validate()
		if len(errs) > 0 {
			result.Invalid++
			violations = append(violations, errs...)
		} else {
			result.Valid++
		}
	}

	if err := p.staging.AddValidationErrors(ctx, violations); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to persist validation errors", err)
	}

	// Invalid records still progress through the pipeline's bookkeeping;
	// only the load stage excludes them.
	if err := p.staging.SetStepForNonDuplicates(ctx, domain.StepValidate); err != nil {
		return result, errors.Wrap(errors.ErrorTypeInternal, "failed to update processing step", err)
	}

	result.Total = result.Valid + result.Invalid
	p.logger.Info("Validation finished",
		interfaces.Int("valid", result.Valid),
		interfaces.Int("invalid", result.Invalid))
	return result, nil
}
