package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/logger"
)

// CachedDriftMetricRepository caches the latest drift score per tenant/model.
// The ML risk task reads that score once per event; the cache is refreshed
// whenever a new metric is appended, so reads stay current without a TTL
// race. RecentScores always hits the database: the health aggregator runs
// once per batch, not per event.
type CachedDriftMetricRepository struct {
	inner  repository.DriftMetricRepository
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

var _ repository.DriftMetricRepository = (*CachedDriftMetricRepository)(nil)

func NewCachedDriftMetricRepository(
	inner repository.DriftMetricRepository,
	client *redis.Client,
	ttl time.Duration,
	log logger.Logger,
) *CachedDriftMetricRepository {
	return &CachedDriftMetricRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("drift_cache"),
	}
}

func driftKey(tenantID, modelName string) string {
	return fmt.Sprintf("aegis:drift:latest:%s:%s", tenantID, modelName)
}

func (r *CachedDriftMetricRepository) Insert(ctx context.Context, metric *models.DriftMetric) error {
	if err := r.inner.Insert(ctx, metric); err != nil {
		return err
	}
	score := strconv.FormatFloat(metric.DriftScore, 'f', -1, 64)
	if err := r.client.Set(ctx, driftKey(metric.TenantID, metric.ModelName), score, r.ttl).Err(); err != nil {
		r.logger.Warn(ctx, "drift cache write failed", logger.Fields{"error": err.Error()})
	}
	return nil
}

func (r *CachedDriftMetricRepository) LatestScore(ctx context.Context, tenantID, modelName string) (float64, bool, error) {
	raw, err := r.client.Get(ctx, driftKey(tenantID, modelName)).Result()
	if err == nil {
		if score, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
			return score, true, nil
		}
	} else if err != redis.Nil {
		r.logger.Warn(ctx, "drift cache read failed", logger.Fields{"error": err.Error()})
	}
	return r.inner.LatestScore(ctx, tenantID, modelName)
}

func (r *CachedDriftMetricRepository) RecentScores(ctx context.Context, tenantID string, limit int) ([]float64, error) {
	return r.inner.RecentScores(ctx, tenantID, limit)
}
