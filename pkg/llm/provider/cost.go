package provider

import (
	"strings"

	"github.com/papercomputeco/relay/pkg/llm"
)

// Cost returns the USD price of u at the list price.
func (p *ModelPricing) Cost(u llm.Usage) float64 {
	input := float64(u.PromptTokens) / 1_000_000.0 * p.InputCostPer1M
	output := float64(u.CompletionTokens) / 1_000_000.0 * p.OutputCostPer1M
	return input + output
}

// EstimateCost prices u for model from the built-in catalog. Dated OpenAI
// snapshots such as "gpt-4o-2024-08-06" are priced as their base model.
// ok is false for models without a list price.
func EstimateCost(model string, u llm.Usage) (cost float64, ok bool) {
	m, found := FindModel(model)
	if !found {
		m, found = FindModel(stripDateSuffix(model))
	}
	if !found || m.Pricing == nil {
		return 0, false
	}
	return m.Pricing.Cost(u), true
}

// stripDateSuffix removes a trailing -YYYY-MM-DD.
func stripDateSuffix(model string) string {
	const suffixLen = len("-2006-01-02")
	if len(model) <= suffixLen {
		return model
	}

	suffix := model[len(model)-suffixLen:]
	for i, r := range suffix {
		switch i {
		case 0, 5, 8:
			if r != '-' {
				return model
			}
		default:
			if r < '0' || r > '9' {
				return model
			}
		}
	}
	return strings.TrimSuffix(model, suffix)
}
