package planner

import (
	"meal-planner/internal/recipe"
)

// Course tags used by lunch/dinner composition rules.
const (
	TagUniqueDish   = "uniqueDish"
	TagFirstCourse  = "firstCourse"
	TagSecondCourse = "secondCourse"
)

// Buckets holds recipes grouped by the meal types their tags carry.
// A recipe appears in every bucket whose tag it has; recipes with no
// meal-type tag land in no bucket and are counted in Excluded.
type Buckets struct {
	Breakfast []recipe.Recipe
	Lunch     []recipe.Recipe
	Dinner    []recipe.Recipe
	Snacks    []recipe.Recipe

	// Excluded counts recipes that matched no meal-type tag and therefore
	// cannot take part in generation. They are skipped silently by design;
	// the count lets callers surface a likely data-entry mistake.
	Excluded int
}

// ForMealType returns the bucket for a generation meal type.
func (b Buckets) ForMealType(mt MealType) []recipe.Recipe {
	switch mt {
	case Breakfast:
		return b.Breakfast
	case Lunch:
		return b.Lunch
	case Dinner:
		return b.Dinner
	case Snack:
		return b.Snacks
	}
	return nil
}

// Categorize classifies recipes into meal-time buckets by tag membership.
// Matching is case-insensitive and purely a function of the input, so
// repeated runs over the same list yield identical buckets.
func Categorize(recipes []recipe.Recipe) Buckets {
	var b Buckets
	for _, r := range recipes {
		matched := false
		if r.HasTag(string(Breakfast)) {
			b.Breakfast = append(b.Breakfast, r)
			matched = true
		}
		if r.HasTag(string(Lunch)) {
			b.Lunch = append(b.Lunch, r)
			matched = true
		}
		if r.HasTag(string(Dinner)) {
			b.Dinner = append(b.Dinner, r)
			matched = true
		}
		if r.HasTag(string(Snack)) {
			b.Snacks = append(b.Snacks, r)
			matched = true
		}
		if !matched {
			b.Excluded++
		}
	}
	return b
}
