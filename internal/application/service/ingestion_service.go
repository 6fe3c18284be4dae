// Package service orchestrates the domain services into the ingestion and
// scoring pipeline.
package service

import (
	"context"
	"time"

	"github.com/aegisai/aegis/internal/application/dto"
	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
	"github.com/aegisai/aegis/internal/infrastructure/tasks"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/logger"
)

// IngestionService accepts telemetry batches, persists the raw events, and
// schedules the scoring work. The response acknowledges persistence only;
// scoring and alerting complete asynchronously.
type IngestionService interface {
	IngestML(ctx context.Context, tenantID string, req *dto.IngestMLRequest) (*dto.IngestResponse, error)
	IngestLLM(ctx context.Context, tenantID string, req *dto.IngestLLMRequest) (*dto.IngestResponse, error)
}

var _ IngestionService = (*ingestionServiceImpl)(nil)

type ingestionServiceImpl struct {
	mlEvents   repository.MLEventRepository
	llmEvents  repository.LLMEventRepository
	dispatcher *tasks.Dispatcher
	metrics    *monitoring.Metrics
	logger     logger.Logger
}

func NewIngestionService(
	mlEvents repository.MLEventRepository,
	llmEvents repository.LLMEventRepository,
	dispatcher *tasks.Dispatcher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) IngestionService {
	return &ingestionServiceImpl{
		mlEvents:   mlEvents,
		llmEvents:  llmEvents,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     log.WithComponent("ingestion_service"),
	}
}

func (s *ingestionServiceImpl) IngestML(ctx context.Context, tenantID string, req *dto.IngestMLRequest) (*dto.IngestResponse, error) {
	start := time.Now()

	events := make([]*models.MLEvent, 0, len(req.Events))
	for _, in := range req.Events {
		var ts time.Time
		if in.Timestamp != nil {
			ts = *in.Timestamp
		}
		events = append(events, models.NewMLEvent(tenantID, in.ModelName, in.Prediction, in.InputData, in.LatencyMS, ts))
	}

	if err := s.mlEvents.InsertBatch(ctx, events); err != nil {
		return nil, err
	}

	// One drift unit per distinct model, then one scoring unit for the whole
	// batch. The tenant queue is FIFO, so scoring observes the fresh drift.
	for _, modelName := range distinctModels(events) {
		s.enqueue(ctx, tasks.NewTask(tenantID, constants.TaskKindDrift, &DriftTaskPayload{ModelName: modelName}))
	}
	s.enqueue(ctx, tasks.NewTask(tenantID, constants.TaskKindMLRisk, &MLRiskTaskPayload{EventIDs: eventIDsML(events)}))

	if s.metrics != nil {
		s.metrics.RecordIngest(tenantID, constants.EventSourceML, len(events), time.Since(start))
	}
	s.logger.Info(ctx, "ml batch ingested", logger.Fields{
		"tenant_id": tenantID,
		"count":     len(events),
	})
	return &dto.IngestResponse{Ingested: len(events)}, nil
}

func (s *ingestionServiceImpl) IngestLLM(ctx context.Context, tenantID string, req *dto.IngestLLMRequest) (*dto.IngestResponse, error) {
	start := time.Now()

	events := make([]*models.LLMEvent, 0, len(req.Events))
	for _, in := range req.Events {
		var ts time.Time
		if in.Timestamp != nil {
			ts = *in.Timestamp
		}
		events = append(events, models.NewLLMEvent(tenantID, in.ModelName, in.Prompt, in.Response, in.LatencyMS, ts))
	}

	if err := s.llmEvents.InsertBatch(ctx, events); err != nil {
		return nil, err
	}

	s.enqueue(ctx, tasks.NewTask(tenantID, constants.TaskKindLLMRisk, &LLMRiskTaskPayload{EventIDs: eventIDsLLM(events)}))
	// Health is recomputed once per LLM batch, after its events are scored.
	s.enqueue(ctx, tasks.NewTask(tenantID, constants.TaskKindHealth, &HealthTaskPayload{}))

	if s.metrics != nil {
		s.metrics.RecordIngest(tenantID, constants.EventSourceLLM, len(events), time.Since(start))
	}
	s.logger.Info(ctx, "llm batch ingested", logger.Fields{
		"tenant_id": tenantID,
		"count":     len(events),
	})
	return &dto.IngestResponse{Ingested: len(events)}, nil
}

// enqueue schedules one background unit. A rejected enqueue never fails the
// request: the raw events are already durable and the loss is dead-lettered.
func (s *ingestionServiceImpl) enqueue(ctx context.Context, task *tasks.Task) {
	if err := s.dispatcher.Enqueue(ctx, task); err != nil {
		s.logger.Warn(ctx, "background task rejected", logger.Fields{
			"tenant_id": task.TenantID,
			"kind":      task.Kind,
			"error":     err.Error(),
		})
	}
}

func distinctModels(events []*models.MLEvent) []string {
	seen := make(map[string]struct{}, len(events))
	names := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.ModelName]; !ok {
			seen[e.ModelName] = struct{}{}
			names = append(names, e.ModelName)
		}
	}
	return names
}

func eventIDsML(events []*models.MLEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func eventIDsLLM(events []*models.LLMEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
