package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// AlertRepoImpl implements AlertRepository using PostgreSQL.
type AlertRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewAlertRepository(db *gorm.DB, log logger.Logger) repository.AlertRepository {
	return &AlertRepoImpl{
		db:     db,
		logger: log.WithComponent("alert_repo"),
	}
}

func (r *AlertRepoImpl) Insert(ctx context.Context, alert *models.Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		r.logger.Error(ctx, "failed to insert alert", err, logger.Fields{
			"tenant_id": alert.TenantID,
			"type":      alert.Type,
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}

func (r *AlertRepoImpl) FindUnresolved(ctx context.Context, tenantID string, limit int) ([]*models.Alert, error) {
	var alerts []*models.Alert
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND resolved = ?", tenantID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	return alerts, nil
}

// DeadLetterRepoImpl implements DeadLetterRepository using PostgreSQL.
type DeadLetterRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewDeadLetterRepository(db *gorm.DB, log logger.Logger) repository.DeadLetterRepository {
	return &DeadLetterRepoImpl{
		db:     db,
		logger: log.WithComponent("dead_letter_repo"),
	}
}

func (r *DeadLetterRepoImpl) Insert(ctx context.Context, task *models.DeadLetterTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.logger.Error(ctx, "failed to insert dead letter task", err, logger.Fields{
			"tenant_id": task.TenantID,
			"kind":      task.Kind,
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}
