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

// LLMEventRepoImpl implements LLMEventRepository using PostgreSQL.
type LLMEventRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewLLMEventRepository(db *gorm.DB, log logger.Logger) repository.LLMEventRepository {
	return &LLMEventRepoImpl{
		db:     db,
		logger: log.WithComponent("llm_event_repo"),
	}
}

func (r *LLMEventRepoImpl) InsertBatch(ctx context.Context, events []*models.LLMEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&events).Error; err != nil {
		r.logger.Error(ctx, "failed to insert llm events", err, logger.Fields{
			"tenant_id": events[0].TenantID,
			"count":     len(events),
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}

func (r *LLMEventRepoImpl) UpdateRisk(ctx context.Context, eventID string, score float64, label constants.RiskLabel, flags []string) error {
	// Struct-based update so the JSON serializer applies to flags.
	result := r.db.WithContext(ctx).
		Model(&models.LLMEvent{}).
		Where("id = ?", eventID).
		Select("risk_score", "risk_label", "flags").
		Updates(&models.LLMEvent{RiskScore: &score, RiskLabel: &label, Flags: flags})
	if result.Error != nil {
		r.logger.Error(ctx, "failed to update llm event risk", result.Error, logger.Fields{
			"event_id": eventID,
		})
		return errors.ErrDatabaseOperation.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMetadata("event_id", eventID)
	}
	return nil
}

func (r *LLMEventRepoImpl) MeanLatencySince(ctx context.Context, tenantID string, since time.Time) (float64, bool, error) {
	var row struct {
		Mean  float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.LLMEvent{}).
		Select("COALESCE(AVG(latency_ms), 0) AS mean, COUNT(*) AS count").
		Where("tenant_id = ? AND timestamp >= ?", tenantID, since).
		Scan(&row).Error
	if err != nil {
		return 0, false, errors.ErrDatabaseOperation.WithCause(err)
	}
	if row.Count == 0 {
		return 0, false, nil
	}
	return row.Mean, true, nil
}

func (r *LLMEventRepoImpl) FindByID(ctx context.Context, eventID string) (*models.LLMEvent, error) {
	var event models.LLMEvent
	err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound.WithMetadata("event_id", eventID)
		}
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	return &event, nil
}
