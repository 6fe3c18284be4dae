package models

import (
	"time"

	"github.com/google/uuid"
)

// DriftMetric is one drift computation for a tenant/model pair. Append-only;
// one record per computation.
type DriftMetric struct {
	ID        string `gorm:"primaryKey;size:36"`
	TenantID  string `gorm:"index:idx_drift_metrics_tenant_model;size:36;not null"`
	ModelName string `gorm:"index:idx_drift_metrics_tenant_model;size:255;not null"`

	WindowStart time.Time `gorm:"not null"`
	WindowEnd   time.Time `gorm:"not null"`

	// MeanLatencyMS is the trailing-window mean that produced the score.
	MeanLatencyMS float64

	// DriftScore is the percentage by which the window mean exceeds the
	// baseline, clamped to [0,100].
	DriftScore float64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"index"`
}

// NewDriftMetric builds a metric record for a completed drift computation.
func NewDriftMetric(tenantID, modelName string, windowStart, windowEnd time.Time, meanLatencyMS, driftScore float64) *DriftMetric {
	return &DriftMetric{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		ModelName:     modelName,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		MeanLatencyMS: meanLatencyMS,
		DriftScore:    driftScore,
	}
}
