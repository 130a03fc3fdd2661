// internal/workers/classification/explain-impact/models.go
package explainimpact

import "greenguide/internal/models"

type Input struct {
	ItemName string
	Category models.DisposalCategory
}

type Output struct {
	Outcome models.EducatorOutcome
}

// metricFraming is how feedback for one metric should be told.
type metricFraming struct {
	Label    string
	Focus    string
	Example  string
	Fallback string
}
