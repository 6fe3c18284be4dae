package repository

import (
	"context"

	"github.com/aegisai/aegis/internal/domain/models"
)

//go:generate mockery --name HealthScoreRepository --output ./mocks --filename health_score_repository.go
type HealthScoreRepository interface {
	// Upsert creates or replaces the single health row for a tenant. The
	// original created_at is preserved on replacement; updated_at is refreshed.
	Upsert(ctx context.Context, score *models.HealthScore) error

	// Find returns the current health score for a tenant, or ErrNotFound when
	// the tenant has never been scored.
	Find(ctx context.Context, tenantID string) (*models.HealthScore, error)
}
