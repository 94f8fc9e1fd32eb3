package planner

import (
	"encoding/json"
	"testing"

	"meal-planner/internal/recipe"
)

func validationRecipes() map[string]recipe.Recipe {
	return recipe.ByID([]recipe.Recipe{
		{ID: "r-paella", Tags: []string{"lunch", TagUniqueDish}},
		{ID: "r-soup", Tags: []string{"lunch", TagFirstCourse}},
		{ID: "r-fish", Tags: []string{"lunch", TagSecondCourse}},
		{ID: "r-toast", Tags: []string{"breakfast"}},
	})
}

func parseFixture(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("Bad test fixture: %v", err)
	}
	return parsed
}

func TestValidateBatch(t *testing.T) {
	recipes := validationRecipes()
	mealTypes := []MealType{Lunch}

	t.Run("TwoCourseLunchKept", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"lunch": [{"recipeId": "r-soup"}, {"recipeId": "r-fish"}]}
		}`)
		plan := ValidateBatch(parsed, recipes, mealTypes)
		if plan == nil {
			t.Fatal("Expected plan to survive")
		}
		items := plan["2026-01-29"][Lunch]
		if len(items) != 2 || items[0].RecipeID != "r-soup" || items[1].RecipeID != "r-fish" {
			t.Errorf("Unexpected lunch items: %+v", items)
		}
	})

	t.Run("ThreeLunchItemsDropsDay", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"lunch": [
				{"recipeId": "r-soup"}, {"recipeId": "r-fish"}, {"recipeId": "r-paella"}
			]}
		}`)
		if plan := ValidateBatch(parsed, recipes, mealTypes); plan != nil {
			t.Errorf("Expected nil plan, got %+v", plan)
		}
	})

	t.Run("UnknownRecipeFilteredNotFatal", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"lunch": [{"recipeId": "r-invented"}, {"recipeId": "r-paella"}]}
		}`)
		plan := ValidateBatch(parsed, recipes, mealTypes)
		if plan == nil {
			t.Fatal("Expected plan to survive after filtering")
		}
		items := plan["2026-01-29"][Lunch]
		if len(items) != 1 || items[0].RecipeID != "r-paella" {
			t.Errorf("Expected only r-paella to remain, got %+v", items)
		}
	})

	t.Run("AllItemsUnknownDropsDay", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"lunch": [{"recipeId": "r-invented"}]}
		}`)
		if plan := ValidateBatch(parsed, recipes, mealTypes); plan != nil {
			t.Errorf("Expected nil plan, got %+v", plan)
		}
	})

	t.Run("BadDateKeysDropped", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"tomorrow":   {"lunch": [{"recipeId": "r-paella"}]},
			"2026-13-45": {"lunch": [{"recipeId": "r-paella"}]},
			"2026-01-29": {"lunch": [{"recipeId": "r-paella"}]}
		}`)
		plan := ValidateBatch(parsed, recipes, mealTypes)
		if len(plan) != 1 {
			t.Fatalf("Expected only the real date to survive, got %v", plan.SortedDates())
		}
		if _, ok := plan["2026-01-29"]; !ok {
			t.Error("Expected 2026-01-29 to survive")
		}
	})

	t.Run("MissingMealTypeDropsDay", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"lunch": [{"recipeId": "r-paella"}]},
			"2026-01-30": {"breakfast": [{"recipeId": "r-toast"}]}
		}`)
		plan := ValidateBatch(parsed, recipes, mealTypes)
		if len(plan) != 1 {
			t.Fatalf("Expected 1 surviving day, got %d", len(plan))
		}
		if _, ok := plan["2026-01-30"]; ok {
			t.Error("Day without the requested meal type should be dropped")
		}
	})

	t.Run("SlotNotAnArrayDropsDay", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"lunch": {"recipeId": "r-paella"}}
		}`)
		if plan := ValidateBatch(parsed, recipes, mealTypes); plan != nil {
			t.Errorf("Expected nil plan, got %+v", plan)
		}
	})

	t.Run("BreakfastArityUnbounded", func(t *testing.T) {
		parsed := parseFixture(t, `{
			"2026-01-29": {"breakfast": [
				{"recipeId": "r-toast"}, {"recipeId": "r-toast"}, {"recipeId": "r-toast"}
			]}
		}`)
		plan := ValidateBatch(parsed, recipes, []MealType{Breakfast})
		if plan == nil {
			t.Fatal("Expected plan to survive; arity rule applies to lunch and dinner only")
		}
		if len(plan["2026-01-29"][Breakfast]) != 3 {
			t.Errorf("Expected 3 breakfast items, got %d", len(plan["2026-01-29"][Breakfast]))
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		if plan := ValidateBatch(map[string]interface{}{}, recipes, mealTypes); plan != nil {
			t.Errorf("Expected nil for empty input, got %+v", plan)
		}
	})
}
