// internal/normalize/confidence.go
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"greenguide/internal/models"
)

// Confidence coerces a decoded confidence value into [0,1].
// Numbers and numeric strings ("0.8", "85%") are accepted; anything else,
// including a missing value, yields models.DefaultConfidence.
func Confidence(v interface{}) float64 {
	switch c := v.(type) {
	case float64:
		return models.ClampConfidence(c)
	case json.Number:
		if f, err := c.Float64(); err == nil {
			return models.ClampConfidence(f)
		}
	case int:
		return models.ClampConfidence(float64(c))
	case string:
		s := strings.TrimSpace(c)
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if percent {
				f /= 100
			}
			return models.ClampConfidence(f)
		}
	}
	return models.DefaultConfidence
}
