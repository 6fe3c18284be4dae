package models

import "github.com/aegisai/aegis/pkg/constants"

// ClassifyRisk maps a composite risk score to its label using the fixed
// breakpoints shared by both risk models.
func ClassifyRisk(score float64) constants.RiskLabel {
	switch {
	case score >= constants.RiskyScoreThreshold:
		return constants.RiskLabelRisky
	case score >= constants.SuspiciousScoreThreshold:
		return constants.RiskLabelSuspicious
	default:
		return constants.RiskLabelNormal
	}
}

// MLRiskResult is the outcome of scoring one ML event. The three component
// sub-scores are returned alongside the composite for observability.
type MLRiskResult struct {
	Score          float64
	Label          constants.RiskLabel
	ConfidenceRisk float64
	DriftRisk      float64
	OutlierRisk    float64
}

// LLMRiskResult is the outcome of scoring one LLM event.
type LLMRiskResult struct {
	Score         float64
	Label         constants.RiskLabel
	SensitiveRisk float64
	JailbreakRisk float64
	LengthRisk    float64

	// Flags is advisory metadata; it does not feed scoring beyond what the
	// sub-scores already capture.
	Flags []string
}
