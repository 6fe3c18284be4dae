package repository

import (
	"context"

	"github.com/aegisai/aegis/internal/domain/models"
)

//go:generate mockery --name DriftMetricRepository --output ./mocks --filename drift_metric_repository.go
type DriftMetricRepository interface {
	// Insert appends a computed drift window for a model.
	Insert(ctx context.Context, metric *models.DriftMetric) error

	// LatestScore returns the most recent drift score for a model.
	// The bool reports whether any drift window has been recorded.
	LatestScore(ctx context.Context, tenantID, modelName string) (float64, bool, error)

	// RecentScores returns up to limit drift scores for a tenant across all of
	// its models, most recent first.
	RecentScores(ctx context.Context, tenantID string, limit int) ([]float64, error)
}
