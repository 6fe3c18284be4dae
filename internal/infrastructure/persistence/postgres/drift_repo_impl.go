package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// DriftMetricRepoImpl implements DriftMetricRepository using PostgreSQL.
// The drift_metrics table is append-only.
type DriftMetricRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewDriftMetricRepository(db *gorm.DB, log logger.Logger) repository.DriftMetricRepository {
	return &DriftMetricRepoImpl{
		db:     db,
		logger: log.WithComponent("drift_metric_repo"),
	}
}

func (r *DriftMetricRepoImpl) Insert(ctx context.Context, metric *models.DriftMetric) error {
	if err := r.db.WithContext(ctx).Create(metric).Error; err != nil {
		r.logger.Error(ctx, "failed to insert drift metric", err, logger.Fields{
			"tenant_id":  metric.TenantID,
			"model_name": metric.ModelName,
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}

func (r *DriftMetricRepoImpl) LatestScore(ctx context.Context, tenantID, modelName string) (float64, bool, error) {
	var metric models.DriftMetric
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND model_name = ?", tenantID, modelName).
		Order("created_at DESC").
		First(&metric).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, false, nil
		}
		return 0, false, errors.ErrDatabaseOperation.WithCause(err)
	}
	return metric.DriftScore, true, nil
}

func (r *DriftMetricRepoImpl) RecentScores(ctx context.Context, tenantID string, limit int) ([]float64, error) {
	var scores []float64
	err := r.db.WithContext(ctx).
		Model(&models.DriftMetric{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("drift_score", &scores).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	return scores, nil
}
