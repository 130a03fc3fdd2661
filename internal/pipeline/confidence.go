// internal/pipeline/confidence.go
package pipeline

import (
	"math"

	"greenguide/internal/models"
)

const (
	highConfidence   = 0.85
	mediumConfidence = 0.65
)

// Aggregate averages the vision and reasoning confidences. The score is
// rounded to 4 decimals before banding so 0.7/0.6 lands exactly on 0.65.
func Aggregate(vision, reasoning float64) models.ConfidenceBreakdown {
	vision = models.ClampConfidence(vision)
	reasoning = models.ClampConfidence(reasoning)
	score := math.Round((vision+reasoning)/2*10000) / 10000

	return models.ConfidenceBreakdown{
		Score:              score,
		Level:              Level(score),
		VisionComponent:    vision,
		ReasoningComponent: reasoning,
	}
}

// Level bands a score; band boundaries belong to the upper band.
func Level(score float64) models.ConfidenceLevel {
	switch {
	case score >= highConfidence:
		return models.ConfidenceHigh
	case score >= mediumConfidence:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
