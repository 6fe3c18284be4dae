package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// ModelProfileRepoImpl implements ModelProfileRepository using PostgreSQL.
type ModelProfileRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewModelProfileRepository(db *gorm.DB, log logger.Logger) repository.ModelProfileRepository {
	return &ModelProfileRepoImpl{
		db:     db,
		logger: log.WithComponent("model_profile_repo"),
	}
}

func (r *ModelProfileRepoImpl) FindByTenantAndModel(ctx context.Context, tenantID, modelName string) (*models.ModelProfile, error) {
	var profile models.ModelProfile
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND model_name = ?", tenantID, modelName).
		First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProfileNotFound(tenantID, modelName)
		}
		r.logger.Error(ctx, "failed to load model profile", err, logger.Fields{
			"tenant_id":  tenantID,
			"model_name": modelName,
		})
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	return &profile, nil
}

func (r *ModelProfileRepoImpl) Upsert(ctx context.Context, profile *models.ModelProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "model_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"baseline_latency_ms", "feature_stats"}),
		}).
		Create(profile).Error
	if err != nil {
		r.logger.Error(ctx, "failed to upsert model profile", err, logger.Fields{
			"tenant_id":  profile.TenantID,
			"model_name": profile.ModelName,
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}
