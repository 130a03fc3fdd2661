// internal/workers/classification/identify-object/handler.go
package identifyobject

import (
	"context"
	"errors"
	"strings"

	"greenguide/internal/common/logger"
	"greenguide/internal/inference"
	"greenguide/internal/normalize"
)

const (
	TaskType = "identify-object"
)

var ErrMissingImage = errors.New("IMAGE_MISSING")

// Invoker is the inference capability the stage needs.
type Invoker interface {
	Invoke(ctx context.Context, req inference.Request) (string, error)
}

type Handler struct {
	config  *Config
	invoker Invoker
	logger  logger.Logger
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

// Execute asks the vision model whether the photo shows a single waste item.
// Inference errors are returned unchanged; unreadable answers are not errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Image == nil || input.Image.Base64 == "" {
		return nil, ErrMissingImage
	}

	raw, err := h.invoker.Invoke(ctx, inference.Request{
		Model: h.config.Model,
		Messages: []inference.Message{
			inference.VisionMessage(h.buildPrompt(), input.Image.DataURL()),
		},
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
		Timeout:     h.config.Timeout,
	})
	if err != nil {
		return nil, err
	}

	outcome := normalize.Vision(raw)

	fields := map[string]interface{}{
		"rejected":   outcome.IsRejected(),
		"confidence": outcome.Confidence,
		"degraded":   outcome.Degraded,
	}
	if outcome.IsRejected() {
		fields["rejectionReason"] = string(outcome.Reason)
	} else {
		fields["itemName"] = outcome.ItemName
	}
	h.logger.Info("Object identified", fields)

	return &Output{Outcome: outcome}, nil
}

func (h *Handler) buildPrompt() string {
	var parts []string

	parts = append(parts, "You are a waste identification assistant. Look at the photo and decide whether it shows ONE discardable object that someone wants to throw away.")

	parts = append(parts, "\nReject the photo when it shows any of the following, using this exact rejection_reason:")
	parts = append(parts, "- person: a person, face or body part")
	parts = append(parts, "- animal: a pet or any living animal")
	parts = append(parts, "- landscape: scenery, sky or nature without a distinct object")
	parts = append(parts, "- building: a building, room or interior")
	parts = append(parts, "- multiple_items: several unrelated objects with no clear subject")
	parts = append(parts, "- unclear: too blurry, dark or cropped to identify")
	parts = append(parts, "- food_on_plate: a served meal rather than food waste")
	parts = append(parts, "- empty_image: a blank or nearly blank image")
	parts = append(parts, "- other: anything else that is not a waste item")

	parts = append(parts, "\nRespond with JSON only, no explanation, in exactly this shape:")
	parts = append(parts, `{"is_waste_item": <true|false>, "item_name": <short name or null>, "rejection_reason": <reason or null>, "confidence": <0.0-1.0>}`)

	parts = append(parts, "\nExamples:")
	parts = append(parts, `Photo of an empty soda can -> {"is_waste_item": true, "item_name": "aluminum soda can", "rejection_reason": null, "confidence": 0.95}`)
	parts = append(parts, `Photo of a used AA battery -> {"is_waste_item": true, "item_name": "AA battery", "rejection_reason": null, "confidence": 0.9}`)
	parts = append(parts, `Selfie of a smiling person -> {"is_waste_item": false, "item_name": null, "rejection_reason": "person", "confidence": 0.98}`)
	parts = append(parts, `Photo of a dog on a sofa -> {"is_waste_item": false, "item_name": null, "rejection_reason": "animal", "confidence": 0.96}`)

	parts = append(parts, "\nName the item specifically, including its material when visible (for example \"glass jam jar\" rather than \"jar\").")

	return strings.Join(parts, "\n")
}
