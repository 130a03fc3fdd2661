// internal/models/impact.go
package models

// ImpactMetric is the environmental dimension highlighted in feedback.
type ImpactMetric string

const (
	MetricCO2Savings           ImpactMetric = "co2_savings"
	MetricEnergySavings        ImpactMetric = "energy_savings"
	MetricWaterConservation    ImpactMetric = "water_conservation"
	MetricResourceConservation ImpactMetric = "resource_conservation"
	MetricLandfillSpaceSaved   ImpactMetric = "landfill_space_saved"
	MetricPollutionReduction   ImpactMetric = "pollution_reduction"
)

var allImpactMetrics = []ImpactMetric{
	MetricCO2Savings,
	MetricEnergySavings,
	MetricWaterConservation,
	MetricResourceConservation,
	MetricLandfillSpaceSaved,
	MetricPollutionReduction,
}

// AllImpactMetrics returns the metrics in a fixed order.
func AllImpactMetrics() []ImpactMetric {
	out := make([]ImpactMetric, len(allImpactMetrics))
	copy(out, allImpactMetrics)
	return out
}

type ReasoningOutcome struct {
	Category         DisposalCategory
	PreparationSteps []string
	Confidence       float64
	Degraded         bool
}

type EducatorOutcome struct {
	Metric   ImpactMetric
	Feedback string
}
