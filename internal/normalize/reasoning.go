// internal/normalize/reasoning.go
package normalize

import (
	"strings"

	"greenguide/internal/common/metrics"
	"greenguide/internal/models"

	"github.com/samber/lo"
)

const (
	MaxPreparationSteps = 3
	// UnknownCategoryConfidence replaces the model's confidence when it named
	// a category outside the closed set.
	UnknownCategoryConfidence = 0.5
)

// keywordPriority is the scan order used when the answer is not JSON.
var keywordPriority = []models.DisposalCategory{
	models.CategoryRecyclable,
	models.CategoryCompostable,
	models.CategoryHazardous,
	models.CategoryEWaste,
	models.CategoryTextile,
}

// Reasoning turns a reasoning-model answer into an outcome. It never fails.
func Reasoning(raw string) models.ReasoningOutcome {
	obj, err := ParseStructured(raw, ReasoningShape)
	if err != nil {
		return reasoningFallback(raw)
	}

	steps := preparationSteps(obj["preparation_steps"])

	category, ok := models.ParseDisposalCategory(stringField(obj, "category"))
	if !ok {
		metrics.NormalizeFallbacks.WithLabelValues(StageReasoning).Inc()
		return models.ReasoningOutcome{
			Category:         models.CategoryLandfill,
			PreparationSteps: steps,
			Confidence:       UnknownCategoryConfidence,
			Degraded:         true,
		}
	}

	return models.ReasoningOutcome{
		Category:         category,
		PreparationSteps: steps,
		Confidence:       Confidence(obj["confidence"]),
	}
}

func reasoningFallback(raw string) models.ReasoningOutcome {
	metrics.NormalizeFallbacks.WithLabelValues(StageReasoning).Inc()

	text := strings.ToLower(raw)
	category := models.CategoryLandfill
	if found, ok := lo.Find(keywordPriority, func(c models.DisposalCategory) bool {
		return strings.Contains(text, string(c))
	}); ok {
		category = found
	}

	return models.ReasoningOutcome{
		Category:         category,
		PreparationSteps: []string{},
		Confidence:       models.DefaultConfidence,
		Degraded:         true,
	}
}

// preparationSteps accepts an array of strings or a single string.
func preparationSteps(v interface{}) []string {
	var items []interface{}
	switch s := v.(type) {
	case []interface{}:
		items = s
	case string:
		items = []interface{}{s}
	}

	steps := lo.FilterMap(items, func(item interface{}, _ int) (string, bool) {
		str, ok := item.(string)
		str = strings.TrimSpace(str)
		return str, ok && str != ""
	})
	return lo.Subset(steps, 0, MaxPreparationSteps)
}
