// Package constants defines system-wide constants for the Aegis pipeline.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Event Source Constants
// ================================================================================

// EventSource identifies which kind of instrumented call produced an event.
type EventSource string

const (
	// EventSourceML is a classical machine-learning inference event.
	EventSourceML EventSource = "ml"

	// EventSourceLLM is a language-model inference event.
	EventSourceLLM EventSource = "llm"
)

// ================================================================================
// Risk Classification Constants
// ================================================================================

// RiskLabel is the discrete classification derived from a risk score.
type RiskLabel string

const (
	RiskLabelNormal     RiskLabel = "normal"
	RiskLabelSuspicious RiskLabel = "suspicious"
	RiskLabelRisky      RiskLabel = "risky"
)

// Risk score breakpoints. The label function is shared by the ML and LLM risk
// models and must not diverge between them.
const (
	// RiskyScoreThreshold is the lower bound of the "risky" label.
	RiskyScoreThreshold = 0.75

	// SuspiciousScoreThreshold is the lower bound of the "suspicious" label.
	SuspiciousScoreThreshold = 0.40
)

// ML risk composite weights.
const (
	MLConfidenceWeight = 0.4
	MLDriftWeight      = 0.3
	MLOutlierWeight    = 0.3

	// OutlierZScoreCap: a feature 3+ standard deviations out carries full risk.
	OutlierZScoreCap = 3.0
)

// LLM risk composite weights and normalization.
const (
	LLMSensitiveWeight = 0.5
	LLMJailbreakWeight = 0.3
	LLMLengthWeight    = 0.2

	// PatternMatchNormalizer divides raw pattern match counts into [0,1].
	PatternMatchNormalizer = 5

	// PromptLengthNormalizer divides prompt length into [0,1].
	PromptLengthNormalizer = 2000

	// LongPromptFlagThreshold is the length risk at which the long_prompt
	// flag is attached.
	LongPromptFlagThreshold = 0.8
)

// Event flags attached by the LLM risk model. Advisory metadata only.
const (
	FlagSensitiveContent = "sensitive_content"
	FlagJailbreakPattern = "jailbreak_pattern"
	FlagLongPrompt       = "long_prompt"
)

// ================================================================================
// Drift Detection Constants
// ================================================================================

const (
	// DriftWindow is the trailing window over which mean ML latency is computed.
	DriftWindow = 5 * time.Minute

	// DriftScoreMax caps the drift score.
	DriftScoreMax = 100.0
)

// ================================================================================
// Health Aggregation Constants
// ================================================================================

const (
	// HealthDriftSampleSize is how many recent drift scores feed the drift penalty.
	HealthDriftSampleSize = 10

	// HealthDriftPenaltyCap is the maximum subtraction attributable to drift.
	HealthDriftPenaltyCap = 40.0

	// HealthLatencyWindow is the trailing window for the LLM latency penalty.
	HealthLatencyWindow = 15 * time.Minute

	// HealthLatencyFloorMS: mean LLM latency at or below this costs nothing.
	HealthLatencyFloorMS = 1000.0

	// HealthLatencyPenaltyDivisor converts excess latency into penalty points.
	HealthLatencyPenaltyDivisor = 50.0

	// HealthLatencyPenaltyCap is the maximum subtraction attributable to latency.
	HealthLatencyPenaltyCap = 30.0
)

// ================================================================================
// Alert Constants
// ================================================================================

// AlertType distinguishes what kind of threshold crossing raised an alert.
type AlertType string

const (
	AlertTypeDrift  AlertType = "drift"
	AlertTypeHealth AlertType = "health"
	AlertTypeRisk   AlertType = "risk"
)

// AlertSeverity grades an alert.
type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

const (
	// DriftAlertCriticalScore: drift at or above this is critical, below is warning.
	DriftAlertCriticalScore = 50.0

	// HealthAlertThreshold: health below this raises an alert.
	HealthAlertThreshold = 60.0

	// HealthAlertCriticalThreshold: health below this is critical.
	HealthAlertCriticalThreshold = 40.0
)

// ================================================================================
// Ingestion Constants
// ================================================================================

const (
	// TokenEstimateDivisor approximates one token per four characters.
	TokenEstimateDivisor = 4
)

// ================================================================================
// Task Kind Constants
// ================================================================================

// TaskKind names a unit of background pipeline work.
type TaskKind string

const (
	TaskKindDrift   TaskKind = "drift"
	TaskKindMLRisk  TaskKind = "ml_risk"
	TaskKindLLMRisk TaskKind = "llm_risk"
	TaskKindHealth  TaskKind = "health"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for values stored in request contexts.
type ContextKey string

const (
	ContextKeyTenantID  ContextKey = "tenant_id"
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
)

// HeaderTenantID carries the tenant identity resolved by the upstream auth
// layer. Requests without it are rejected before reaching any handler.
const HeaderTenantID = "X-Tenant-ID"

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeUnauthorized   ErrorCode = "unauthorized"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeInternal       ErrorCode = "internal_error"
	ErrCodeUnavailable    ErrorCode = "unavailable"
	ErrCodeQueueFull      ErrorCode = "queue_full"
)

// ================================================================================
// Log Levels
// ================================================================================

// LogLevel is an ordered logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)
