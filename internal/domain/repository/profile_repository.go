package repository

import (
	"context"

	"github.com/aegisai/aegis/internal/domain/models"
)

//go:generate mockery --name ModelProfileRepository --output ./mocks --filename model_profile_repository.go
type ModelProfileRepository interface {
	// FindByTenantAndModel retrieves the registered baseline profile for a
	// model. Returns ErrProfileNotFound when the model was never registered.
	FindByTenantAndModel(ctx context.Context, tenantID, modelName string) (*models.ModelProfile, error)

	// Upsert creates or replaces a model's baseline profile.
	Upsert(ctx context.Context, profile *models.ModelProfile) error
}
