package service

import (
	"context"
	"time"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/logger"
)

// HealthAggregator rolls recent drift and LLM latency into one bounded score
// per tenant.
type HealthAggregator interface {
	// Compute derives the current health score for a tenant. The caller
	// persists the result.
	Compute(ctx context.Context, tenantID string) (*models.HealthScore, error)
}

var _ HealthAggregator = (*healthAggregator)(nil)

type healthAggregator struct {
	drift    repository.DriftMetricRepository
	llm      repository.LLMEventRepository
	minScore float64
	maxScore float64
	log      logger.Logger
}

func NewHealthAggregator(
	drift repository.DriftMetricRepository,
	llm repository.LLMEventRepository,
	minScore, maxScore float64,
	log logger.Logger,
) HealthAggregator {
	return &healthAggregator{
		drift:    drift,
		llm:      llm,
		minScore: minScore,
		maxScore: maxScore,
		log:      log.WithComponent("health_aggregator"),
	}
}

func (h *healthAggregator) Compute(ctx context.Context, tenantID string) (*models.HealthScore, error) {
	scores, err := h.drift.RecentScores(ctx, tenantID, constants.HealthDriftSampleSize)
	if err != nil {
		return nil, err
	}

	driftPenalty := 0.0
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		driftPenalty = sum / float64(len(scores))
		if driftPenalty > constants.HealthDriftPenaltyCap {
			driftPenalty = constants.HealthDriftPenaltyCap
		}
	}

	since := time.Now().UTC().Add(-constants.HealthLatencyWindow)
	meanLatency, hasLatency, err := h.llm.MeanLatencySince(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	latencyPenalty := 0.0
	if hasLatency && meanLatency > constants.HealthLatencyFloorMS {
		latencyPenalty = (meanLatency - constants.HealthLatencyFloorMS) / constants.HealthLatencyPenaltyDivisor
		if latencyPenalty > constants.HealthLatencyPenaltyCap {
			latencyPenalty = constants.HealthLatencyPenaltyCap
		}
	}

	score := h.maxScore - driftPenalty - latencyPenalty
	if score < h.minScore {
		score = h.minScore
	}
	if score > h.maxScore {
		score = h.maxScore
	}

	details := map[string]interface{}{
		"drift_penalty":       driftPenalty,
		"latency_penalty":     latencyPenalty,
		"drift_samples":       len(scores),
		"mean_llm_latency_ms": meanLatency,
	}

	return &models.HealthScore{
		TenantID: tenantID,
		Score:    score,
		Details:  details,
	}, nil
}
