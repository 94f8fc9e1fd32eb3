package planner

import (
	"errors"
	"fmt"
	"sort"
)

// MealType identifies one meal slot of a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"

	// AfternoonSnack exists in persisted plans only; the generator never
	// requests it.
	AfternoonSnack MealType = "afternoonSnack"
)

// GenerationMealTypes lists the meal types the generator may be asked to fill.
var GenerationMealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// KnownMealType reports whether mt may appear in a generation request.
func KnownMealType(mt MealType) bool {
	for _, known := range GenerationMealTypes {
		if mt == known {
			return true
		}
	}
	return false
}

// PlanItem is one recipe occupying (part of) a meal slot.
type PlanItem struct {
	RecipeID string `json:"recipeId"`
	Notes    string `json:"notes"`
}

// DayPlan maps each meal type of a day to its ordered recipe items.
type DayPlan map[MealType][]PlanItem

// GeneratedPlan maps ISO dates (YYYY-MM-DD) to day plans.
type GeneratedPlan map[string]DayPlan

// SortedDates returns the plan's date keys in ascending order.
func (p GeneratedPlan) SortedDates() []string {
	dates := make([]string, 0, len(p))
	for d := range p {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Preferences describe one plan-generation request.
type Preferences struct {
	Duration          int // calendar days, starting today
	People            int
	MaxPrepTime       int // minutes, 0 means unconstrained
	SelectedMealTypes []MealType
}

// Result is the successful outcome of a generation request.
type Result struct {
	MealPlan GeneratedPlan `json:"mealPlan"`
	Source   string        `json:"source"`
}

// ValidationError reports a malformed generation request. It is surfaced
// immediately, before any model call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid generation request: %s %s", e.Field, e.Reason)
}

// ErrGenerationExhausted is returned once every model and retry attempt has
// failed to produce a structurally valid, complete plan.
var ErrGenerationExhausted = errors.New("meal plan generation failed: all models and retries exhausted")
