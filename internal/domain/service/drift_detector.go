// Package service holds the domain scoring and aggregation logic. Services
// are pure compute over repository reads; persistence of their outputs is the
// caller's responsibility.
package service

import (
	"context"
	"time"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/constants"
	apperrors "github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// DriftDetector compares a model's trailing mean latency against its recorded
// baseline and produces a bounded drift score.
type DriftDetector interface {
	// Compute derives the drift score for a model over the trailing window.
	// The returned bool is false when no events fall inside the window or the
	// model has no baseline profile; callers skip dependent work in that case.
	Compute(ctx context.Context, tenantID, modelName string) (*models.DriftMetric, bool, error)
}

var _ DriftDetector = (*driftDetector)(nil)

type driftDetector struct {
	events   repository.MLEventRepository
	profiles repository.ModelProfileRepository
	window   time.Duration
	log      logger.Logger
}

func NewDriftDetector(
	events repository.MLEventRepository,
	profiles repository.ModelProfileRepository,
	log logger.Logger,
) DriftDetector {
	return &driftDetector{
		events:   events,
		profiles: profiles,
		window:   constants.DriftWindow,
		log:      log.WithComponent("drift_detector"),
	}
}

func (d *driftDetector) Compute(ctx context.Context, tenantID, modelName string) (*models.DriftMetric, bool, error) {
	windowEnd := time.Now().UTC()
	windowStart := windowEnd.Add(-d.window)

	mean, ok, err := d.events.MeanLatencySince(ctx, tenantID, modelName, windowStart)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		d.log.Debug(ctx, "no events in drift window", logger.Fields{
			"tenant_id": tenantID, "model_name": modelName,
		})
		return nil, false, nil
	}

	profile, err := d.profiles.FindByTenantAndModel(ctx, tenantID, modelName)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			d.log.Debug(ctx, "no baseline profile for model", logger.Fields{
				"tenant_id": tenantID, "model_name": modelName,
			})
			return nil, false, nil
		}
		return nil, false, err
	}

	score := driftScore(mean, profile.BaselineLatencyMS)
	metric := models.NewDriftMetric(tenantID, modelName, windowStart, windowEnd, mean, score)
	return metric, true, nil
}

// driftScore converts a mean/baseline latency ratio into a [0,100] score.
// A non-positive baseline is degenerate and yields zero drift.
func driftScore(meanLatencyMS, baselineLatencyMS float64) float64 {
	if baselineLatencyMS <= 0 {
		return 0
	}
	score := (meanLatencyMS/baselineLatencyMS - 1) * 100
	if score < 0 {
		return 0
	}
	if score > constants.DriftScoreMax {
		return constants.DriftScoreMax
	}
	return score
}
