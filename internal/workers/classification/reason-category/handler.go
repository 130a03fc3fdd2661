// internal/workers/classification/reason-category/handler.go
package reasoncategory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"greenguide/internal/common/logger"
	"greenguide/internal/inference"
	"greenguide/internal/models"
	"greenguide/internal/normalize"
)

const (
	TaskType = "reason-category"
)

var ErrMissingItemName = errors.New("ITEM_NAME_MISSING")

type Invoker interface {
	Invoke(ctx context.Context, req inference.Request) (string, error)
}

type Handler struct {
	config  *Config
	invoker Invoker
	logger  logger.Logger
}

// categoryExamples gives the model one defining line per category.
var categoryExamples = map[models.DisposalCategory]string{
	models.CategoryRecyclable:  "clean paper, cardboard, glass bottles and jars, metal cans, rigid plastic bottles and tubs",
	models.CategoryCompostable: "food scraps, fruit and vegetable peels, coffee grounds, tea bags, yard trimmings",
	models.CategoryLandfill:    "chip bags, styrofoam, greasy or mixed-material packaging, broken ceramics",
	models.CategoryHazardous:   "household batteries, paint, motor oil, pesticides, cleaning chemicals, aerosol cans",
	models.CategoryEWaste:      "phones, laptops, chargers, cables, small appliances, light bulbs",
	models.CategoryTextile:     "clothing, shoes, towels, bed linen, fabric scraps",
}

func NewHandler(config *Config, invoker Invoker, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		invoker: invoker,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute maps an identified item to a disposal category with preparation steps.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.ItemName) == "" {
		return nil, ErrMissingItemName
	}

	raw, err := h.invoker.Invoke(ctx, inference.Request{
		Model: h.config.Model,
		Messages: []inference.Message{
			inference.TextMessage(inference.RoleSystem, h.buildSystemPrompt()),
			inference.TextMessage(inference.RoleUser, h.buildUserPrompt(input.ItemName)),
		},
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
		Timeout:     h.config.Timeout,
	})
	if err != nil {
		return nil, err
	}

	outcome := normalize.Reasoning(raw)

	h.logger.Info("Category reasoned", map[string]interface{}{
		"itemName":   input.ItemName,
		"category":   string(outcome.Category),
		"steps":      len(outcome.PreparationSteps),
		"confidence": outcome.Confidence,
		"degraded":   outcome.Degraded,
	})

	return &Output{Outcome: outcome}, nil
}

func (h *Handler) buildSystemPrompt() string {
	var parts []string

	parts = append(parts, "You are a waste sorting expert. Assign every item to exactly one of these disposal categories:")
	for _, c := range models.AllCategories() {
		parts = append(parts, fmt.Sprintf("- %s: %s", c, categoryExamples[c]))
	}

	parts = append(parts, "\nWhen an item could fit more than one category, choose the one that keeps it out of landfill safely. Use landfill only when nothing else applies.")
	parts = append(parts, "Use the category names exactly as written above.")

	return strings.Join(parts, "\n")
}

func (h *Handler) buildUserPrompt(itemName string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Item: %q", strings.TrimSpace(itemName)))
	parts = append(parts, "Give the disposal category and up to 3 short preparation steps (for example rinse, flatten, remove the cap).")
	parts = append(parts, "Respond with JSON only, no explanation:")
	parts = append(parts, `{"category": "<category>", "preparation_steps": ["<step>", "..."], "confidence": <0.0-1.0>}`)

	return strings.Join(parts, "\n")
}
