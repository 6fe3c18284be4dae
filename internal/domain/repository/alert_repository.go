package repository

import (
	"context"

	"github.com/aegisai/aegis/internal/domain/models"
)

//go:generate mockery --name AlertRepository --output ./mocks --filename alert_repository.go
type AlertRepository interface {
	// Insert persists a raised alert.
	Insert(ctx context.Context, alert *models.Alert) error

	// FindUnresolved lists the unresolved alerts for a tenant, most recent
	// first, capped at limit.
	FindUnresolved(ctx context.Context, tenantID string, limit int) ([]*models.Alert, error)
}

//go:generate mockery --name DeadLetterRepository --output ./mocks --filename dead_letter_repository.go
type DeadLetterRepository interface {
	// Insert persists a task that could not be completed.
	Insert(ctx context.Context, task *models.DeadLetterTask) error
}
