// Package dto defines the request and response payloads of the ingestion API.
package dto

import "time"

// MLEventInput is one ML telemetry event in an ingestion batch.
type MLEventInput struct {
	ModelName  string                 `json:"model_name" binding:"required,max=255"`
	Prediction interface{}            `json:"prediction"`
	InputData  map[string]interface{} `json:"input_data"`
	LatencyMS  float64                `json:"latency_ms" binding:"gte=0"`

	// Timestamp is optional; ingestion time is used when absent.
	Timestamp *time.Time `json:"timestamp"`
}

// IngestMLRequest is the body of POST /ingest/ml.
type IngestMLRequest struct {
	Events []MLEventInput `json:"events" binding:"required,min=1,max=1000,dive"`
}

// LLMEventInput is one LLM interaction event in an ingestion batch.
type LLMEventInput struct {
	ModelName string  `json:"model_name" binding:"required,max=255"`
	Prompt    string  `json:"prompt"`
	Response  string  `json:"response"`
	LatencyMS float64 `json:"latency_ms" binding:"gte=0"`

	Timestamp *time.Time `json:"timestamp"`
}

// IngestLLMRequest is the body of POST /ingest/llm.
type IngestLLMRequest struct {
	Events []LLMEventInput `json:"events" binding:"required,min=1,max=1000,dive"`
}

// IngestResponse acknowledges how many raw events were persisted. Scoring
// and alerting happen asynchronously after this response.
type IngestResponse struct {
	Ingested int `json:"ingested"`
}
