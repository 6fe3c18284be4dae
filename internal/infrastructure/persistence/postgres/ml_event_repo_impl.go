package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// MLEventRepoImpl implements MLEventRepository using PostgreSQL.
type MLEventRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewMLEventRepository(db *gorm.DB, log logger.Logger) repository.MLEventRepository {
	return &MLEventRepoImpl{
		db:     db,
		logger: log.WithComponent("ml_event_repo"),
	}
}

// InsertBatch persists all events of one ingestion request in a single statement.
func (r *MLEventRepoImpl) InsertBatch(ctx context.Context, events []*models.MLEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&events).Error; err != nil {
		r.logger.Error(ctx, "failed to insert ml events", err, logger.Fields{
			"tenant_id": events[0].TenantID,
			"count":     len(events),
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}

func (r *MLEventRepoImpl) UpdateRisk(ctx context.Context, eventID string, score float64, label constants.RiskLabel) error {
	result := r.db.WithContext(ctx).
		Model(&models.MLEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"risk_score": score,
			"risk_label": label,
		})
	if result.Error != nil {
		r.logger.Error(ctx, "failed to update ml event risk", result.Error, logger.Fields{
			"event_id": eventID,
		})
		return errors.ErrDatabaseOperation.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMetadata("event_id", eventID)
	}
	return nil
}

func (r *MLEventRepoImpl) MeanLatencySince(ctx context.Context, tenantID, modelName string, since time.Time) (float64, bool, error) {
	var row struct {
		Mean  float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.MLEvent{}).
		Select("COALESCE(AVG(latency_ms), 0) AS mean, COUNT(*) AS count").
		Where("tenant_id = ? AND model_name = ? AND timestamp >= ?", tenantID, modelName, since).
		Scan(&row).Error
	if err != nil {
		return 0, false, errors.ErrDatabaseOperation.WithCause(err)
	}
	if row.Count == 0 {
		return 0, false, nil
	}
	return row.Mean, true, nil
}

func (r *MLEventRepoImpl) FindByID(ctx context.Context, eventID string) (*models.MLEvent, error) {
	var event models.MLEvent
	err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound.WithMetadata("event_id", eventID)
		}
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	return &event, nil
}
