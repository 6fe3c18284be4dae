package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// HealthScoreRepoImpl implements HealthScoreRepository using PostgreSQL.
// Each tenant has exactly one row, replaced in place on every recomputation.
type HealthScoreRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewHealthScoreRepository(db *gorm.DB, log logger.Logger) repository.HealthScoreRepository {
	return &HealthScoreRepoImpl{
		db:     db,
		logger: log.WithComponent("health_score_repo"),
	}
}

// Upsert inserts the tenant's first health row or replaces the score and
// details of the existing one. created_at survives the replacement.
func (r *HealthScoreRepoImpl) Upsert(ctx context.Context, score *models.HealthScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	score.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "details", "updated_at"}),
		}).
		Create(score).Error
	if err != nil {
		r.logger.Error(ctx, "failed to upsert health score", err, logger.Fields{
			"tenant_id": score.TenantID,
		})
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}

func (r *HealthScoreRepoImpl) Find(ctx context.Context, tenantID string) (*models.HealthScore, error) {
	var score models.HealthScore
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&score).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound.WithMetadata("tenant_id", tenantID)
		}
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	return &score, nil
}
