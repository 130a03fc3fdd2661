// internal/pipeline/messages.go
package pipeline

import "greenguide/internal/models"

const defaultRejectionMessage = "We couldn't find a waste item in this photo. Please try again with a clear photo of a single item."

var rejectionMessages = map[models.RejectionReason]string{
	models.ReasonPerson:        "This looks like a photo of a person. Please photograph a single item you want to dispose of.",
	models.ReasonAnimal:        "This looks like an animal, and animals aren't waste! Please photograph the item you want to throw away.",
	models.ReasonLandscape:     "This looks like a landscape or outdoor scene. Please take a close-up photo of a single item.",
	models.ReasonBuilding:      "This looks like a building or a room. Please photograph just the item you want to dispose of.",
	models.ReasonMultipleItems: "There seem to be several items in this photo. Please photograph one item at a time.",
	models.ReasonUnclear:       "The photo is too unclear to identify an item. Please retake it with better lighting and focus.",
	models.ReasonFoodOnPlate:   "This looks like a served meal. If you are throwing away food scraps, photograph them on their own.",
	models.ReasonEmptyImage:    "The image appears to be empty. Please take a photo of the item you want to dispose of.",
	models.ReasonOther:         "This doesn't look like something to throw away. Please photograph a single waste item.",
}

// RejectionMessage returns the user-facing message for reason.
func RejectionMessage(reason models.RejectionReason) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return defaultRejectionMessage
}
