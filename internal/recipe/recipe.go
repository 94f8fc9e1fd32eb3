package recipe

import (
	"strings"

	"meal-planner/internal/catalog"
)

// Recipe is a household recipe with normalized ingredient lines.
// Tag membership drives meal-type categorization during plan generation.
type Recipe struct {
	ID          string                   `json:"id"`
	OwnerID     string                   `json:"ownerId,omitempty"`
	Title       string                   `json:"title"`
	Tags        []string                 `json:"tags"`
	PrepTime    int                      `json:"prepTime,omitempty"` // minutes
	Public      bool                     `json:"public,omitempty"`
	Ingredients []catalog.IngredientLine `json:"ingredients"`
	Steps       []string                 `json:"steps,omitempty"`
	UpdatedAt   string                   `json:"updatedAt,omitempty"`
}

// HasTag reports whether the recipe carries the tag, case-insensitively.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ByID builds a lookup map keyed by recipe id.
func ByID(recipes []Recipe) map[string]Recipe {
	m := make(map[string]Recipe, len(recipes))
	for _, r := range recipes {
		m[r.ID] = r
	}
	return m
}
