// internal/normalize/schemas.go
package normalize

import "greenguide/internal/common/validation"

// The schemas only pin down what the normalizer branches on. Everything else
// is coerced field by field, so extra or oddly typed fields are tolerated.
const visionSchema = `{
	"type": "object",
	"required": ["is_waste_item"],
	"properties": {
		"is_waste_item": {"type": "boolean"},
		"item_name": {"type": ["string", "null"]},
		"rejection_reason": {"type": ["string", "null"]},
		"confidence": {"type": ["number", "string", "null"]}
	}
}`

const reasoningSchema = `{
	"type": "object",
	"required": ["category"],
	"properties": {
		"category": {"type": "string"},
		"preparation_steps": {"type": ["array", "string", "null"]},
		"confidence": {"type": ["number", "string", "null"]}
	}
}`

var (
	VisionShape = Shape{
		Stage:  StageVision,
		Schema: validation.MustCompileSchema(StageVision, visionSchema),
	}

	ReasoningShape = Shape{
		Stage:  StageReasoning,
		Schema: validation.MustCompileSchema(StageReasoning, reasoningSchema),
	}
)

const (
	StageVision    = "vision"
	StageReasoning = "reasoning"
)
