// internal/normalize/vision.go
package normalize

import (
	"strings"

	"greenguide/internal/common/metrics"
	"greenguide/internal/models"
)

// UnidentifiedItem names an accepted item the model did not name.
const UnidentifiedItem = "unidentified item"

// Vision turns a vision-model answer into an outcome. It never fails: an
// unreadable answer is accepted as a waste item named by the answer text.
func Vision(raw string) models.VisionOutcome {
	obj, err := ParseStructured(raw, VisionShape)
	if err != nil {
		return visionFallback(raw, err)
	}

	conf := Confidence(obj["confidence"])

	if isWaste, _ := obj["is_waste_item"].(bool); isWaste {
		return models.NewWasteItem(itemName(stringField(obj, "item_name")), conf)
	}
	return models.NewRejection(models.ParseRejectionReason(stringField(obj, "rejection_reason")), conf)
}

func visionFallback(raw string, err error) models.VisionOutcome {
	metrics.NormalizeFallbacks.WithLabelValues(StageVision).Inc()

	name := StripCodeFences(raw)
	if pf, ok := isFailure(err); ok && pf.Decoded != nil {
		if decoded := stringField(pf.Decoded, "item_name"); decoded != "" {
			name = decoded
		}
	}

	out := models.NewWasteItem(itemName(name), models.DefaultConfidence)
	out.Degraded = true
	return out
}

func itemName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnidentifiedItem
	}
	return s
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}
