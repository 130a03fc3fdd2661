// internal/models/vision.go
package models

import (
	"encoding/base64"
	"strings"
)

// ImagePayload is an upload that has already been size/format normalized.
type ImagePayload struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Base64   string
}

// NewImagePayload encodes data once so later stages reuse the same text form.
func NewImagePayload(data []byte, mime string, width, height int) *ImagePayload {
	return &ImagePayload{
		Data:     data,
		MIMEType: mime,
		Width:    width,
		Height:   height,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}
}

// DataURL returns the payload as a data: URI suitable for image_url content parts.
func (p *ImagePayload) DataURL() string {
	mime := p.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + p.Base64
}

// RejectionReason explains why a photo is not a valid waste-item photo.
type RejectionReason string

const (
	ReasonPerson        RejectionReason = "person"
	ReasonAnimal        RejectionReason = "animal"
	ReasonLandscape     RejectionReason = "landscape"
	ReasonBuilding      RejectionReason = "building"
	ReasonMultipleItems RejectionReason = "multiple_items"
	ReasonUnclear       RejectionReason = "unclear"
	ReasonFoodOnPlate   RejectionReason = "food_on_plate"
	ReasonEmptyImage    RejectionReason = "empty_image"
	ReasonOther         RejectionReason = "other"
)

var knownReasons = map[RejectionReason]struct{}{
	ReasonPerson:        {},
	ReasonAnimal:        {},
	ReasonLandscape:     {},
	ReasonBuilding:      {},
	ReasonMultipleItems: {},
	ReasonUnclear:       {},
	ReasonFoodOnPlate:   {},
	ReasonEmptyImage:    {},
	ReasonOther:         {},
}

// reasonAliases covers spellings models commonly produce instead of the enum.
var reasonAliases = map[string]RejectionReason{
	"people":       ReasonPerson,
	"human":        ReasonPerson,
	"face":         ReasonPerson,
	"selfie":       ReasonPerson,
	"pet":          ReasonAnimal,
	"scenery":      ReasonLandscape,
	"nature":       ReasonLandscape,
	"architecture": ReasonBuilding,
	"multiple":     ReasonMultipleItems,
	"many_items":   ReasonMultipleItems,
	"blurry":       ReasonUnclear,
	"blurred":      ReasonUnclear,
	"food":         ReasonFoodOnPlate,
	"meal":         ReasonFoodOnPlate,
	"empty":        ReasonEmptyImage,
	"blank":        ReasonEmptyImage,
	"no_object":    ReasonEmptyImage,
	"not_waste":    ReasonOther,
	"non_waste":    ReasonOther,
	"unrecognized": ReasonOther,
	"unrecognised": ReasonOther,
}

// ParseRejectionReason normalizes an upstream reason string. An absent reason
// means the model could not tell, so it maps to unclear; anything else that is
// not recognized maps to other.
func ParseRejectionReason(s string) RejectionReason {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" || key == "null" || key == "none" {
		return ReasonUnclear
	}
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if _, ok := knownReasons[RejectionReason(key)]; ok {
		return RejectionReason(key)
	}
	if r, ok := reasonAliases[key]; ok {
		return r
	}
	return ReasonOther
}

// VisionKind tags the VisionOutcome variant.
type VisionKind int

const (
	VisionWasteItem VisionKind = iota + 1
	VisionRejected
)

// VisionOutcome is either a waste item or a rejection, never both.
type VisionOutcome struct {
	Kind       VisionKind
	ItemName   string
	Reason     RejectionReason
	Confidence float64
	// Degraded is set when the outcome came from a fallback heuristic.
	Degraded bool
}

func NewWasteItem(name string, confidence float64) VisionOutcome {
	return VisionOutcome{
		Kind:       VisionWasteItem,
		ItemName:   name,
		Confidence: ClampConfidence(confidence),
	}
}

func NewRejection(reason RejectionReason, confidence float64) VisionOutcome {
	return VisionOutcome{
		Kind:       VisionRejected,
		Reason:     reason,
		Confidence: ClampConfidence(confidence),
	}
}

func (v VisionOutcome) IsRejected() bool { return v.Kind == VisionRejected }
