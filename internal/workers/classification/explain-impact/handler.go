// internal/workers/classification/explain-impact/handler.go
package explainimpact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"greenguide/internal/common/logger"
	"greenguide/internal/common/metrics"
	"greenguide/internal/inference"
	"greenguide/internal/models"
)

const (
	TaskType = "explain-impact"

	fallbackStage = "educator"
)

var ErrMissingItemName = errors.New("ITEM_NAME_MISSING")

type Invoker interface {
	Invoke(ctx context.Context, req inference.Request) (string, error)
}

type Handler struct {
	config  *Config
	invoker Invoker
	picker  MetricPicker
	logger  logger.Logger
}

var framings = map[models.ImpactMetric]metricFraming{
	models.MetricCO2Savings: {
		Label:    "CO2 savings",
		Focus:    "Focus on greenhouse gas emissions avoided. Compare the savings to everyday activities such as kilometres driven by car.",
		Example:  "kilograms of CO2 equivalent",
		Fallback: "Disposing of this item the right way keeps avoidable greenhouse gas emissions out of the atmosphere.",
	},
	models.MetricEnergySavings: {
		Label:    "energy savings",
		Focus:    "Focus on energy saved compared with making the item from new materials. Use relatable comparisons such as hours of powering a light bulb or charging a phone.",
		Example:  "kilowatt-hours",
		Fallback: "Handling this item correctly saves energy that would otherwise go into producing new material.",
	},
	models.MetricWaterConservation: {
		Label:    "water conservation",
		Focus:    "Focus on water that is saved or protected from contamination. Relate the amount to showers, bathtubs or drinking glasses.",
		Example:  "litres of water",
		Fallback: "Sorting this item properly helps conserve clean water and keeps it free of contamination.",
	},
	models.MetricResourceConservation: {
		Label:    "resource conservation",
		Focus:    "Focus on raw materials kept in use, such as trees, ore, oil or sand. Explain what new material no longer has to be extracted.",
		Example:  "kilograms of raw material",
		Fallback: "Putting this item in the right place keeps valuable materials in use instead of extracting new ones.",
	},
	models.MetricLandfillSpaceSaved: {
		Label:    "landfill space saved",
		Focus:    "Focus on landfill volume and how long the item would persist there. Make the scale tangible, for example in years to decompose or bins filled.",
		Example:  "years to decompose or litres of landfill volume",
		Fallback: "Keeping this item out of the wrong bin saves landfill space that takes generations to recover.",
	},
	models.MetricPollutionReduction: {
		Label:    "pollution reduction",
		Focus:    "Focus on soil, air and water pollution avoided, including harm to wildlife. Be concrete about the pollutant involved.",
		Example:  "grams of pollutant or square metres of soil",
		Fallback: "Disposing of this item responsibly prevents pollutants from reaching soil, water and wildlife.",
	},
}

func NewHandler(config *Config, invoker Invoker, picker MetricPicker, log logger.Logger) *Handler {
	if picker == nil {
		picker = NewRandomPicker(nil)
	}
	return &Handler{
		config:  config,
		invoker: invoker,
		picker:  picker,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute produces a short quantified impact narrative for the item. The model
// answer is used verbatim after trimming.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.ItemName) == "" {
		return nil, ErrMissingItemName
	}

	metric := h.picker.Pick()
	framing := framingFor(metric)

	raw, err := h.invoker.Invoke(ctx, inference.Request{
		Model: h.config.Model,
		Messages: []inference.Message{
			inference.TextMessage(inference.RoleSystem, h.buildSystemPrompt(framing)),
			inference.TextMessage(inference.RoleUser, h.buildUserPrompt(input, framing)),
		},
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
		Timeout:     h.config.Timeout,
	})
	if err != nil {
		return nil, err
	}

	feedback := strings.TrimSpace(raw)
	degraded := feedback == ""
	if degraded {
		metrics.NormalizeFallbacks.WithLabelValues(fallbackStage).Inc()
		feedback = framing.Fallback
	}

	h.logger.Info("Impact explained", map[string]interface{}{
		"itemName":      input.ItemName,
		"category":      string(input.Category),
		"metric":        string(metric),
		"feedbackChars": len(feedback),
		"degraded":      degraded,
	})

	return &Output{Outcome: models.EducatorOutcome{Metric: metric, Feedback: feedback}}, nil
}

func framingFor(metric models.ImpactMetric) metricFraming {
	if f, ok := framings[metric]; ok {
		return f
	}
	return framings[models.MetricCO2Savings]
}

func (h *Handler) buildSystemPrompt(framing metricFraming) string {
	var parts []string

	parts = append(parts, "You are an upbeat environmental educator explaining the impact of one disposal choice.")
	parts = append(parts, framing.Focus)
	parts = append(parts, fmt.Sprintf("Include exactly one specific quantified figure, expressed in %s.", framing.Example))
	parts = append(parts, "Keep it to about three sentences of plain text. No lists, headings or markdown.")

	return strings.Join(parts, "\n")
}

func (h *Handler) buildUserPrompt(input *Input, framing metricFraming) string {
	return fmt.Sprintf("Explain the %s of disposing of a %s as %s.",
		framing.Label, strings.TrimSpace(input.ItemName), input.Category)
}
