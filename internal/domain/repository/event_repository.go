// Package repository defines the domain persistence contracts.
// Implementations live under internal/infrastructure/persistence.
package repository

import (
	"context"
	"time"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/pkg/constants"
)

//go:generate mockery --name MLEventRepository --output ./mocks --filename ml_event_repository.go
type MLEventRepository interface {
	// InsertBatch persists a batch of ML telemetry events in a single statement.
	InsertBatch(ctx context.Context, events []*models.MLEvent) error

	// UpdateRisk stamps the computed risk score and label onto an event.
	UpdateRisk(ctx context.Context, eventID string, score float64, label constants.RiskLabel) error

	// MeanLatencySince returns the mean latency of a model's events observed
	// at or after since. The bool reports whether any events matched.
	MeanLatencySince(ctx context.Context, tenantID, modelName string, since time.Time) (float64, bool, error)

	// FindByID fetches a single event, returning ErrNotFound when absent.
	FindByID(ctx context.Context, eventID string) (*models.MLEvent, error)
}

//go:generate mockery --name LLMEventRepository --output ./mocks --filename llm_event_repository.go
type LLMEventRepository interface {
	// InsertBatch persists a batch of LLM interaction events in a single statement.
	InsertBatch(ctx context.Context, events []*models.LLMEvent) error

	// UpdateRisk stamps the computed risk score, label and content flags onto an event.
	UpdateRisk(ctx context.Context, eventID string, score float64, label constants.RiskLabel, flags []string) error

	// MeanLatencySince returns the mean latency of a tenant's LLM events
	// across all models observed at or after since. The bool reports whether
	// any events matched.
	MeanLatencySince(ctx context.Context, tenantID string, since time.Time) (float64, bool, error)

	// FindByID fetches a single event, returning ErrNotFound when absent.
	FindByID(ctx context.Context, eventID string) (*models.LLMEvent, error)
}
