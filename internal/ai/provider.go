package ai

import (
	"strings"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Pricing is the USD price per 1K tokens for a model.
type Pricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

var knownPricing = map[string]Pricing{
	"gpt-4":         {PromptPer1K: 0.03, CompletionPer1K: 0.06},
	"gpt-4-turbo":   {PromptPer1K: 0.01, CompletionPer1K: 0.03},
	"gpt-4o":        {PromptPer1K: 0.0025, CompletionPer1K: 0.01},
	"gpt-4o-mini":   {PromptPer1K: 0.00015, CompletionPer1K: 0.0006},
	"gpt-3.5-turbo": {PromptPer1K: 0.0005, CompletionPer1K: 0.0015},
}

// PricingFor returns the list price of modelName. Dated snapshots such as
// "gpt-4o-2024-08-06" resolve to their base model; unknown models are free.
func PricingFor(modelName string) Pricing {
	if p, ok := knownPricing[modelName]; ok {
		return p
	}
	best := ""
	for name := range knownPricing {
		if strings.HasPrefix(modelName, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	return knownPricing[best]
}

// Cost estimates the USD cost of u.
func (p Pricing) Cost(u model.Usage) float64 {
	return float64(u.PromptTokens)/1000*p.PromptPer1K + float64(u.CompletionTokens)/1000*p.CompletionPer1K
}

// EstimateCost prices u at the list price of modelName.
func EstimateCost(modelName string, u model.Usage) float64 {
	return PricingFor(modelName).Cost(u)
}
