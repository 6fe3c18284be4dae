package service

import (
	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/patterns"
)

// LLMRiskModel scores LLM interaction events by scanning prompt and response
// text against the registered content detectors.
type LLMRiskModel interface {
	Score(event *models.LLMEvent) *models.LLMRiskResult
}

var _ LLMRiskModel = (*llmRiskModel)(nil)

type llmRiskModel struct {
	registry *patterns.Registry
}

func NewLLMRiskModel() LLMRiskModel {
	return &llmRiskModel{registry: patterns.Get()}
}

func (m *llmRiskModel) Score(event *models.LLMEvent) *models.LLMRiskResult {
	text := event.Prompt + " " + event.Response

	sensitiveMatches := m.registry.CountMatches(patterns.CategorySensitive, text)
	jailbreakMatches := m.registry.CountMatches(patterns.CategoryJailbreak, text)

	sensitive := clamp01(float64(sensitiveMatches) / constants.PatternMatchNormalizer)
	jailbreak := clamp01(float64(jailbreakMatches) / constants.PatternMatchNormalizer)
	length := clamp01(float64(len(event.Prompt)) / constants.PromptLengthNormalizer)

	score := clamp01(
		constants.LLMSensitiveWeight*sensitive +
			constants.LLMJailbreakWeight*jailbreak +
			constants.LLMLengthWeight*length,
	)

	var flags []string
	if sensitiveMatches > 0 {
		flags = append(flags, constants.FlagSensitiveContent)
	}
	if jailbreakMatches > 0 {
		flags = append(flags, constants.FlagJailbreakPattern)
	}
	if length >= constants.LongPromptFlagThreshold {
		flags = append(flags, constants.FlagLongPrompt)
	}

	return &models.LLMRiskResult{
		Score:         score,
		Label:         models.ClassifyRisk(score),
		SensitiveRisk: sensitive,
		JailbreakRisk: jailbreak,
		LengthRisk:    length,
		Flags:         flags,
	}
}
