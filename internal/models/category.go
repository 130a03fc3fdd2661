// internal/models/category.go
package models

import "strings"

// DisposalCategory is one of the six closed disposal buckets.
type DisposalCategory string

const (
	CategoryRecyclable  DisposalCategory = "recyclable"
	CategoryCompostable DisposalCategory = "compostable"
	CategoryLandfill    DisposalCategory = "landfill"
	CategoryHazardous   DisposalCategory = "hazardous"
	CategoryEWaste      DisposalCategory = "e-waste"
	CategoryTextile     DisposalCategory = "textile"
)

var allCategories = []DisposalCategory{
	CategoryRecyclable,
	CategoryCompostable,
	CategoryLandfill,
	CategoryHazardous,
	CategoryEWaste,
	CategoryTextile,
}

// AllCategories returns the categories in display order.
func AllCategories() []DisposalCategory {
	out := make([]DisposalCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseDisposalCategory matches s against the closed set, ignoring case and
// surrounding whitespace. No aliasing: "recycle" is not "recyclable".
func ParseDisposalCategory(s string) (DisposalCategory, bool) {
	v := DisposalCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range allCategories {
		if c == v {
			return c, true
		}
	}
	return "", false
}

func (c DisposalCategory) String() string { return string(c) }

// CategoryMetadata is static presentation data for a category.
type CategoryMetadata struct {
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// CategoryTable is the closed lookup of presentation metadata.
var CategoryTable = map[DisposalCategory]CategoryMetadata{
	CategoryRecyclable: {
		Icon:        "♻️",
		Color:       "#2E7D32",
		Description: "Clean and place in the recycling bin",
	},
	CategoryCompostable: {
		Icon:        "🌱",
		Color:       "#8D6E63",
		Description: "Organic material for the compost or green bin",
	},
	CategoryLandfill: {
		Icon:        "🗑️",
		Color:       "#616161",
		Description: "General waste bound for landfill",
	},
	CategoryHazardous: {
		Icon:        "⚠️",
		Color:       "#C62828",
		Description: "Take to a hazardous waste drop-off point",
	},
	CategoryEWaste: {
		Icon:        "🔌",
		Color:       "#1565C0",
		Description: "Electronics for a certified e-waste recycler",
	},
	CategoryTextile: {
		Icon:        "👕",
		Color:       "#6A1B9A",
		Description: "Donate or drop at a textile recycling bin",
	},
}

// MetadataFor returns the metadata for c, falling back to landfill.
func MetadataFor(c DisposalCategory) CategoryMetadata {
	if m, ok := CategoryTable[c]; ok {
		return m
	}
	return CategoryTable[CategoryLandfill]
}
