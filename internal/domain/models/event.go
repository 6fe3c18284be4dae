// Package models defines the domain models for the Aegis pipeline.
// This file contains the telemetry events emitted by instrumented inference
// calls. Events are created on ingestion; their risk fields are written
// exactly once by the background scoring task; events are never deleted.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aegisai/aegis/pkg/constants"
)

// MLEvent is a telemetry event for a classical ML inference call.
type MLEvent struct {
	ID        string `gorm:"primaryKey;size:36"`
	TenantID  string `gorm:"index:idx_ml_events_tenant_model;size:36;not null"`
	ModelName string `gorm:"index:idx_ml_events_tenant_model;size:255;not null"`

	// Prediction is the raw model output; shape is caller-defined.
	Prediction interface{} `gorm:"serializer:json"`

	// InputData carries arbitrary input features and, optionally, class
	// probabilities under the "probabilities" key and feature values under
	// the "features" key.
	InputData map[string]interface{} `gorm:"serializer:json"`

	LatencyMS float64   `gorm:"not null"`
	Timestamp time.Time `gorm:"index;not null"`

	// RiskScore and RiskLabel stay nil until the scoring task writes them back.
	RiskScore *float64
	RiskLabel *constants.RiskLabel `gorm:"size:16"`

	CreatedAt time.Time
}

// NewMLEvent builds an unscored ML event for a tenant.
func NewMLEvent(tenantID, modelName string, prediction interface{}, inputData map[string]interface{}, latencyMS float64, timestamp time.Time) *MLEvent {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	return &MLEvent{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ModelName:  modelName,
		Prediction: prediction,
		InputData:  inputData,
		LatencyMS:  latencyMS,
		Timestamp:  timestamp,
	}
}

// Probabilities extracts the optional class-probability vector from the
// event payload. Non-numeric entries are skipped.
func (e *MLEvent) Probabilities() []float64 {
	raw, ok := e.InputData["probabilities"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	probs := make([]float64, 0, len(list))
	for _, v := range list {
		if f, ok := NumericValue(v); ok {
			probs = append(probs, f)
		}
	}
	return probs
}

// Features extracts the observed feature values. When the payload has no
// dedicated "features" key the whole input map is treated as features,
// matching how instrumentation libraries report flat payloads.
func (e *MLEvent) Features() map[string]interface{} {
	if raw, ok := e.InputData["features"]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
		return nil
	}
	return e.InputData
}

// LLMEvent is a telemetry event for a language-model inference call.
type LLMEvent struct {
	ID        string `gorm:"primaryKey;size:36"`
	TenantID  string `gorm:"index:idx_llm_events_tenant_model;size:36;not null"`
	ModelName string `gorm:"index:idx_llm_events_tenant_model;size:255;not null"`

	Prompt   string `gorm:"type:text"`
	Response string `gorm:"type:text"`

	LatencyMS float64 `gorm:"not null"`

	// TokenCount is estimated at ingestion time (~4 chars per token); it is
	// not produced by a tokenizer.
	TokenCount int

	Timestamp time.Time `gorm:"index;not null"`

	RiskScore *float64
	RiskLabel *constants.RiskLabel `gorm:"size:16"`

	// Flags is advisory metadata attached by the LLM risk model.
	Flags []string `gorm:"serializer:json"`

	CreatedAt time.Time
}

// NewLLMEvent builds an unscored LLM event, estimating the token count from
// the combined prompt and response length.
func NewLLMEvent(tenantID, modelName, prompt, response string, latencyMS float64, timestamp time.Time) *LLMEvent {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	return &LLMEvent{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ModelName:  modelName,
		Prompt:     prompt,
		Response:   response,
		LatencyMS:  latencyMS,
		TokenCount: ApproximateTokenCount(prompt + response),
		Timestamp:  timestamp,
	}
}

// ApproximateTokenCount estimates tokens as one per four characters, with a
// floor of one.
func ApproximateTokenCount(text string) int {
	n := len(text) / constants.TokenEstimateDivisor
	if n < 1 {
		return 1
	}
	return n
}

// NumericValue converts a JSON-decoded payload value to float64 when it is
// numeric. Strings and other shapes report false; callers skip them.
func NumericValue(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	default:
		return 0, false
	}
}
