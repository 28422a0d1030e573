package service

import (
	"context"
	"time"

	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/control"
	"github.com/cinelake/cinelake/internal/pipeline/domain"
	"github.com/cinelake/cinelake/internal/pipeline/repository"
	whrepo "github.com/cinelake/cinelake/internal/warehouse/repository"
	"github.com/cinelake/cinelake/pkg/events"
	"github.com/cinelake/cinelake/pkg/interfaces"
)

// Control log step names, one per stage.
const (
	StepNameDeduplicate = "deduplicate_data"
	StepNameStandardize = "standardize_data"
	StepNameValidate    = "validate_data"
	StepNameLoad        = "load_to_dw"
)

// Event types published on stage boundaries.
const (
	EventStageCompleted = "stage.completed"
	EventStageFailed    = "stage.failed"
)

// Pipeline runs the four staging stages in fixed order. Every stage reads
// and writes committed store state only, so each is independently
// re-runnable against whatever staging state currently exists.
type Pipeline struct {
	raw       repository.RawRepository
	staging   repository.StagingRepository
	warehouse whrepo.Repository
	control   control.Repository
	bus       interfaces.EventBus
	logger    interfaces.Logger
	cfg       config.PipelineConfig
}

// NewPipeline creates a new pipeline
func NewPipeline(
	raw repository.RawRepository,
	staging repository.StagingRepository,
	warehouse whrepo.Repository,
	controlLog control.Repository,
	bus interfaces.EventBus,
	logger interfaces.Logger,
	cfg config.PipelineConfig,
) *Pipeline {
	return &Pipeline{
		raw:       raw,
		staging:   staging,
		warehouse: warehouse,
		control:   controlLog,
		bus:       bus,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes deduplicate, standardize, validate and load strictly in
// order. The first stage failure aborts the rest. Cancellation is honored
// between stages only; a cancelled run can be re-invoked and each stage
// converges to the same end state.
func (p *Pipeline) Run(ctx context.Context) (*domain.PipelineResult, error) {
	start := time.Now()
	result := &domain.PipelineResult{}

	p.logger.Info("Starting staging pipeline")

	dedup, err := p.Deduplicate(ctx)
	if err != nil {
		return nil, err
	}
	result.Dedup = dedup

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	standardize, err := p.Standardize(ctx)
	if err != nil {
		return nil, err
	}
	result.Standardize = standardize

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	validation, err := p.Validate(ctx)
	if err != nil {
		return nil, err
	}
	result.Validation = validation
	if validation.Invalid > 0 {
		p.logger.Warn("Found invalid records",
			interfaces.Int("invalid", validation.Invalid))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	load, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	result.Load = load

	result.Duration = time.Since(start)
	p.logger.Info("Staging pipeline completed",
		interfaces.Int("ingested", result.Dedup.Total),
		interfaces.Int("loaded", result.Load.Loaded),
		interfaces.Any("duration", result.Duration))

	return result, nil
}

// stageCounts carries the per-stage numbers into the control log.
type stageCounts struct {
	processed int
	success   int
	failed    int
}

// startStage opens the control log entry and returns the stage context.
// The entry is opened on the caller's context so the invocation is recorded
// even when the stage timeout has already expired.
func (p *Pipeline) startStage(ctx context.Context, stepName string) (context.Context, context.CancelFunc, string, error) {
	batchID := control.GenerateBatchID(stepName)
	if err := p.control.Start(ctx, batchID, stepName); err != nil {
		return nil, nil, "", err
	}
	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	return stageCtx, cancel, batchID, nil
}

// finishStage closes the control log entry and publishes the stage event.
// It uses a fresh context so a timed-out stage still records its failure.
func (p *Pipeline) finishStage(batchID, stepName string, counts stageCounts, stageErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status := control.StatusSuccess
	eventType := EventStageCompleted
	errorMessage := ""
	if stageErr != nil {
		status = control.StatusFailed
		eventType = EventStageFailed
		errorMessage = stageErr.Error()
	}

	if err := p.control.Finish(ctx, batchID, status, counts.processed, counts.success, counts.failed, errorMessage); err != nil {
		p.logger.Error("Failed to close control log entry",
			interfaces.String("batch_id", batchID),
			interfaces.Error(err))
	}

	// The publish goroutine outlives this call; handlers must not see a
	// context cancelled by the deferred cancel above.
	p.bus.PublishAsync(context.Background(), events.NewAggregateEvent(eventType, batchID, map[string]interface{}{
		"step":              stepName,
		"status":            string(status),
		"records_processed": counts.processed,
		"records_success":   counts.success,
		"records_failed":    counts.failed,
		"error":             errorMessage,
	}))
}
