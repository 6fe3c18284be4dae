package service

import (
	"math"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/pkg/constants"
)

// MLRiskModel scores ML telemetry events. Scoring is a pure function of its
// inputs; callers persist the result.
type MLRiskModel interface {
	// Score combines prediction confidence, drift magnitude and feature
	// outlier z-scores into a bounded composite risk score.
	Score(event *models.MLEvent, driftScore float64, baseline map[string]models.FeatureStat) *models.MLRiskResult
}

var _ MLRiskModel = (*mlRiskModel)(nil)

type mlRiskModel struct{}

func NewMLRiskModel() MLRiskModel {
	return &mlRiskModel{}
}

func (m *mlRiskModel) Score(event *models.MLEvent, driftScore float64, baseline map[string]models.FeatureStat) *models.MLRiskResult {
	confidence := confidenceRisk(event.Probabilities())
	drift := clamp01(driftScore / constants.DriftScoreMax)
	outlier := outlierRisk(event.Features(), baseline)

	score := clamp01(
		constants.MLConfidenceWeight*confidence +
			constants.MLDriftWeight*drift +
			constants.MLOutlierWeight*outlier,
	)

	return &models.MLRiskResult{
		Score:          score,
		Label:          models.ClassifyRisk(score),
		ConfidenceRisk: confidence,
		DriftRisk:      drift,
		OutlierRisk:    outlier,
	}
}

// confidenceRisk is the complement of the top class probability. An event
// without probabilities carries no confidence signal.
func confidenceRisk(probabilities []float64) float64 {
	if len(probabilities) == 0 {
		return 0
	}
	maxProb := probabilities[0]
	for _, p := range probabilities[1:] {
		if p > maxProb {
			maxProb = p
		}
	}
	return clamp01(1 - maxProb)
}

// outlierRisk finds the largest absolute z-score across features present in
// both the observed values and the baseline statistics. Non-numeric values
// and degenerate (zero or negative std) baselines are skipped.
func outlierRisk(features map[string]interface{}, baseline map[string]models.FeatureStat) float64 {
	if len(features) == 0 || len(baseline) == 0 {
		return 0
	}
	var maxZ float64
	for name, raw := range features {
		stat, ok := baseline[name]
		if !ok || stat.Std <= 0 {
			continue
		}
		value, ok := models.NumericValue(raw)
		if !ok {
			continue
		}
		z := math.Abs(value-stat.Mean) / stat.Std
		if z > maxZ {
			maxZ = z
		}
	}
	return clamp01(maxZ / constants.OutlierZScoreCap)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
