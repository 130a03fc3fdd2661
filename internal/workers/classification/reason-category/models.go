// internal/workers/classification/reason-category/models.go
package reasoncategory

import "greenguide/internal/models"

type Input struct {
	ItemName string
}

type Output struct {
	Outcome models.ReasoningOutcome
}
