package service

import (
	"context"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	domainService "github.com/aegisai/aegis/internal/domain/service"
	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
	"github.com/aegisai/aegis/internal/infrastructure/tasks"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// Task payloads. They marshal to JSON for dead-letter persistence.

type DriftTaskPayload struct {
	ModelName string `json:"model_name"`
}

type MLRiskTaskPayload struct {
	EventIDs []string `json:"event_ids"`
}

type LLMRiskTaskPayload struct {
	EventIDs []string `json:"event_ids"`
}

type HealthTaskPayload struct{}

// PipelineService owns the background half of the pipeline: the task
// handlers that score events, track drift, aggregate health and raise
// alerts. Register binds them onto the dispatcher.
type PipelineService struct {
	mlEvents  repository.MLEventRepository
	llmEvents repository.LLMEventRepository
	profiles  repository.ModelProfileRepository
	drift     repository.DriftMetricRepository
	health    repository.HealthScoreRepository

	driftDetector domainService.DriftDetector
	mlRisk        domainService.MLRiskModel
	llmRisk       domainService.LLMRiskModel
	aggregator    domainService.HealthAggregator
	alerts        domainService.AlertEngine

	metrics *monitoring.Metrics
	logger  logger.Logger
}

func NewPipelineService(
	mlEvents repository.MLEventRepository,
	llmEvents repository.LLMEventRepository,
	profiles repository.ModelProfileRepository,
	drift repository.DriftMetricRepository,
	health repository.HealthScoreRepository,
	driftDetector domainService.DriftDetector,
	mlRisk domainService.MLRiskModel,
	llmRisk domainService.LLMRiskModel,
	aggregator domainService.HealthAggregator,
	alerts domainService.AlertEngine,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *PipelineService {
	return &PipelineService{
		mlEvents:      mlEvents,
		llmEvents:     llmEvents,
		profiles:      profiles,
		drift:         drift,
		health:        health,
		driftDetector: driftDetector,
		mlRisk:        mlRisk,
		llmRisk:       llmRisk,
		aggregator:    aggregator,
		alerts:        alerts,
		metrics:       metrics,
		logger:        log.WithComponent("pipeline"),
	}
}

// Register binds the pipeline handlers onto the dispatcher.
func (p *PipelineService) Register(dispatcher *tasks.Dispatcher) {
	dispatcher.Register(string(constants.TaskKindDrift), p.HandleDrift)
	dispatcher.Register(string(constants.TaskKindMLRisk), p.HandleMLRisk)
	dispatcher.Register(string(constants.TaskKindLLMRisk), p.HandleLLMRisk)
	dispatcher.Register(string(constants.TaskKindHealth), p.HandleHealth)
}

// HandleDrift recomputes drift for one model, persists the metric and
// evaluates the drift alert. Missing prerequisites (no window data, no
// baseline) end the task without error.
func (p *PipelineService) HandleDrift(ctx context.Context, task *tasks.Task) error {
	payload, ok := task.Payload.(*DriftTaskPayload)
	if !ok {
		return errors.New(constants.ErrCodeInternal, "malformed drift task payload")
	}

	metric, available, err := p.driftDetector.Compute(ctx, task.TenantID, payload.ModelName)
	if err != nil {
		return err
	}
	if !available {
		return nil
	}

	if err := p.drift.Insert(ctx, metric); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordDrift(task.TenantID, payload.ModelName, metric.DriftScore)
	}
	return p.alerts.EvaluateDrift(ctx, task.TenantID, payload.ModelName, metric.DriftScore)
}

// HandleMLRisk scores each event of a batch and writes the risk fields back.
// Drift scores and baseline statistics are resolved once per model within
// the task.
func (p *PipelineService) HandleMLRisk(ctx context.Context, task *tasks.Task) error {
	payload, ok := task.Payload.(*MLRiskTaskPayload)
	if !ok {
		return errors.New(constants.ErrCodeInternal, "malformed ml risk task payload")
	}

	type modelContext struct {
		driftScore float64
		baseline   map[string]models.FeatureStat
	}
	perModel := make(map[string]*modelContext)

	for _, eventID := range payload.EventIDs {
		event, err := p.mlEvents.FindByID(ctx, eventID)
		if err != nil {
			if errors.IsNotFoundError(err) {
				p.logger.Warn(ctx, "scored event vanished", logger.Fields{"event_id": eventID})
				continue
			}
			return err
		}

		mc, ok := perModel[event.ModelName]
		if !ok {
			mc = &modelContext{}
			if score, has, err := p.drift.LatestScore(ctx, task.TenantID, event.ModelName); err != nil {
				return err
			} else if has {
				mc.driftScore = score
			}
			profile, err := p.profiles.FindByTenantAndModel(ctx, task.TenantID, event.ModelName)
			if err != nil && !errors.IsNotFoundError(err) {
				return err
			}
			if profile != nil {
				mc.baseline = profile.FeatureStats
			}
			perModel[event.ModelName] = mc
		}

		result := p.mlRisk.Score(event, mc.driftScore, mc.baseline)
		if err := p.mlEvents.UpdateRisk(ctx, event.ID, result.Score, result.Label); err != nil {
			return err
		}
		if err := p.alerts.EvaluateRisk(ctx, task.TenantID, event.ModelName, constants.EventSourceML, result.Score, result.Label, nil); err != nil {
			return err
		}
	}
	return nil
}

// HandleLLMRisk scores each LLM event of a batch and writes risk fields and
// flags back.
func (p *PipelineService) HandleLLMRisk(ctx context.Context, task *tasks.Task) error {
	payload, ok := task.Payload.(*LLMRiskTaskPayload)
	if !ok {
		return errors.New(constants.ErrCodeInternal, "malformed llm risk task payload")
	}

	for _, eventID := range payload.EventIDs {
		event, err := p.llmEvents.FindByID(ctx, eventID)
		if err != nil {
			if errors.IsNotFoundError(err) {
				p.logger.Warn(ctx, "scored event vanished", logger.Fields{"event_id": eventID})
				continue
			}
			return err
		}

		result := p.llmRisk.Score(event)
		if err := p.llmEvents.UpdateRisk(ctx, event.ID, result.Score, result.Label, result.Flags); err != nil {
			return err
		}
		if err := p.alerts.EvaluateRisk(ctx, task.TenantID, event.ModelName, constants.EventSourceLLM, result.Score, result.Label, result.Flags); err != nil {
			return err
		}
	}
	return nil
}

// HandleHealth recomputes and upserts the tenant health score and evaluates
// the health alert.
func (p *PipelineService) HandleHealth(ctx context.Context, task *tasks.Task) error {
	score, err := p.aggregator.Compute(ctx, task.TenantID)
	if err != nil {
		return err
	}
	if err := p.health.Upsert(ctx, score); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordHealth(task.TenantID, score.Score)
	}
	return p.alerts.EvaluateHealth(ctx, task.TenantID, score.Score)
}
