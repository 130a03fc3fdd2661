// internal/workers/classification/identify-object/models.go
package identifyobject

import "greenguide/internal/models"

type Input struct {
	Image *models.ImagePayload
}

type Output struct {
	Outcome models.VisionOutcome
}
