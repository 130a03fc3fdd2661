// internal/models/result.go
package models

import (
	"encoding/json"
	"errors"
	"math"
)

// DefaultConfidence is used whenever an upstream answer carries no usable confidence.
const DefaultConfidence = 0.7

// ClampConfidence bounds c to [0,1]. NaN is treated as missing.
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return DefaultConfidence
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

type ConfidenceBreakdown struct {
	Score              float64         `json:"score"`
	Level              ConfidenceLevel `json:"level"`
	VisionComponent    float64         `json:"vision_component"`
	ReasoningComponent float64         `json:"reasoning_component"`
}

type EnvironmentalImpact struct {
	Metric   ImpactMetric `json:"metric"`
	Feedback string       `json:"feedback"`
}

// AcceptedResult is the full answer for a recognized waste item.
type AcceptedResult struct {
	ObjectName          string              `json:"object_name"`
	Category            DisposalCategory    `json:"category"`
	CategoryInfo        CategoryMetadata    `json:"category_info"`
	PreparationSteps    []string            `json:"preparation_steps"`
	Confidence          ConfidenceBreakdown `json:"confidence"`
	EnvironmentalImpact EnvironmentalImpact `json:"environmental_impact"`
}

// RejectedResult is the terminal answer for a photo that is not a waste item.
type RejectedResult struct {
	RejectionReason RejectionReason `json:"rejection_reason"`
	Message         string          `json:"message"`
	Confidence      float64         `json:"confidence"`
}

// ClassificationResult holds exactly one of Accepted or Rejected.
type ClassificationResult struct {
	Accepted *AcceptedResult
	Rejected *RejectedResult
}

var ErrEmptyResult = errors.New("classification result has no variant set")

func (r *ClassificationResult) IsRejected() bool {
	return r != nil && r.Rejected != nil
}

type acceptedJSON struct {
	Success     bool `json:"success"`
	IsWasteItem bool `json:"is_waste_item"`
	*AcceptedResult
}

type rejectedJSON struct {
	Success     bool `json:"success"`
	IsWasteItem bool `json:"is_waste_item"`
	*RejectedResult
}

func (r ClassificationResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.Rejected != nil && r.Accepted != nil:
		return nil, errors.New("classification result has both variants set")
	case r.Rejected != nil:
		return json.Marshal(rejectedJSON{Success: true, IsWasteItem: false, RejectedResult: r.Rejected})
	case r.Accepted != nil:
		acc := *r.Accepted
		if acc.PreparationSteps == nil {
			acc.PreparationSteps = []string{}
		}
		return json.Marshal(acceptedJSON{Success: true, IsWasteItem: true, AcceptedResult: &acc})
	}
	return nil, ErrEmptyResult
}
