package models

import "time"

// FeatureStat is the recorded baseline distribution of one input feature.
type FeatureStat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// ModelProfile is the recorded baseline for one model of one tenant. Profiles
// are created out-of-band by the profiling job and are read-only to the
// pipeline.
type ModelProfile struct {
	ID        string `gorm:"primaryKey;size:36"`
	TenantID  string `gorm:"uniqueIndex:idx_model_profiles_tenant_model;size:36;not null"`
	ModelName string `gorm:"uniqueIndex:idx_model_profiles_tenant_model;size:255;not null"`

	// BaselineLatencyMS is the expected latency used as the drift reference.
	BaselineLatencyMS float64 `gorm:"not null"`

	// FeatureStats holds per-feature mean/std baselines for outlier scoring.
	// May be empty for models profiled before feature statistics existed.
	FeatureStats map[string]FeatureStat `gorm:"serializer:json"`

	CreatedAt time.Time
}
