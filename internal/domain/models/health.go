package models

import "time"

// HealthScore is the single live aggregate health record for a tenant.
// Upserted in place: created_at is preserved on first insert, updated_at is
// refreshed on every recomputation.
type HealthScore struct {
	ID       string `gorm:"primaryKey;size:36"`
	TenantID string `gorm:"uniqueIndex;size:36;not null"`

	// Score is bounded to the configured [min,max] range.
	Score float64 `gorm:"not null"`

	// Details records the penalty breakdown of the last computation.
	Details map[string]interface{} `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
