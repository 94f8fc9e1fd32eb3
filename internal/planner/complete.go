package planner

import (
	"meal-planner/internal/recipe"
)

// issuesPerDayBudget bounds how many empty or malformed meal slots the final
// plan may carry per expected day before the whole plan is rejected.
const issuesPerDayBudget = 3

// Finalize runs the strict completeness pass over a batch-validated plan.
// The day count must equal expectedDays exactly; recovering from a partial
// plan is the retry loop's job, not this function's, so it never pads
// missing days. Within a day, items are re-filtered to resolvable recipe
// ids and normalized to a minimal shape with notes cleared; an empty or
// malformed slot is stored as an empty array and counted as an issue. The
// plan is rejected when total issues exceed issuesPerDayBudget x
// expectedDays. Day-level gaps are unrecoverable without another generation
// attempt, while sparse slot gaps are tolerable degradation the caller can
// surface visually.
func Finalize(plan GeneratedPlan, recipes map[string]recipe.Recipe, mealTypes []MealType, expectedDays int) GeneratedPlan {
	if len(plan) != expectedDays {
		return nil
	}

	final := GeneratedPlan{}
	issues := 0
	for _, date := range plan.SortedDates() {
		day := DayPlan{}
		for _, mt := range mealTypes {
			items := []PlanItem{}
			for _, item := range plan[date][mt] {
				if _, known := recipes[item.RecipeID]; !known {
					continue
				}
				items = append(items, PlanItem{RecipeID: item.RecipeID, Notes: ""})
			}
			if len(items) == 0 {
				issues++
			}
			day[mt] = items
		}
		final[date] = day
	}

	if issues > issuesPerDayBudget*expectedDays {
		return nil
	}
	return final
}
