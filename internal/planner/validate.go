package planner

import (
	"regexp"
	"time"

	"meal-planner/internal/recipe"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateBatch checks a parsed plan-like object day by day and keeps only
// the days that pass every structural check. Unknown recipe ids are filtered
// out of an item list rather than failing the day; a day missing any
// requested meal type, or violating the lunch/dinner arity rule after
// filtering, is dropped entirely. Returns nil only when no day survives —
// a smaller-than-requested valid subset is left for the completeness stage
// to judge.
func ValidateBatch(parsed map[string]interface{}, recipes map[string]recipe.Recipe, mealTypes []MealType) GeneratedPlan {
	if len(parsed) == 0 {
		return nil
	}

	plan := GeneratedPlan{}
	for dateKey, rawDay := range parsed {
		if !validDate(dateKey) {
			continue
		}

		dayObj, ok := rawDay.(map[string]interface{})
		if !ok {
			continue
		}

		day := DayPlan{}
		valid := true
		for _, mt := range mealTypes {
			rawSlot, present := dayObj[string(mt)]
			if !present {
				valid = false
				break
			}

			items, ok := slotItems(rawSlot, recipes)
			if !ok || len(items) == 0 {
				valid = false
				break
			}
			if (mt == Lunch || mt == Dinner) && len(items) != 1 && len(items) != 2 {
				// The first/second-course pairing or standalone-dish rule
				// cannot hold with this count.
				valid = false
				break
			}
			day[mt] = items
		}

		if valid {
			plan[dateKey] = day
		}
	}

	if len(plan) == 0 {
		return nil
	}
	return plan
}

// slotItems extracts the items of one meal-type slot, dropping items whose
// recipeId is missing, non-string or not in the recipe map. ok is false when
// the slot itself is not an array.
func slotItems(rawSlot interface{}, recipes map[string]recipe.Recipe) ([]PlanItem, bool) {
	arr, ok := rawSlot.([]interface{})
	if !ok {
		return nil, false
	}

	var items []PlanItem
	for _, rawItem := range arr {
		obj, ok := rawItem.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := obj["recipeId"].(string)
		if !ok {
			continue
		}
		if _, known := recipes[id]; !known {
			continue
		}
		notes, _ := obj["notes"].(string)
		items = append(items, PlanItem{RecipeID: id, Notes: notes})
	}
	return items, true
}

func validDate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
