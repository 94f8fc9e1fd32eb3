package planner

import (
	"reflect"
	"testing"

	"meal-planner/internal/recipe"
)

func TestCategorize(t *testing.T) {
	recipes := []recipe.Recipe{
		{ID: "r-toast", Tags: []string{"Breakfast"}},
		{ID: "r-paella", Tags: []string{"lunch", TagUniqueDish}},
		{ID: "r-stew", Tags: []string{"lunch", "dinner", TagUniqueDish}},
		{ID: "r-fruit", Tags: []string{"snack", "vegan"}},
		{ID: "r-untagged", Tags: []string{"vegan", "quick"}},
		{ID: "r-notags"},
	}

	buckets := Categorize(recipes)

	if got := ids(buckets.Breakfast); !reflect.DeepEqual(got, []string{"r-toast"}) {
		t.Errorf("Breakfast bucket: %v", got)
	}
	if got := ids(buckets.Lunch); !reflect.DeepEqual(got, []string{"r-paella", "r-stew"}) {
		t.Errorf("Lunch bucket: %v", got)
	}
	if got := ids(buckets.Dinner); !reflect.DeepEqual(got, []string{"r-stew"}) {
		t.Errorf("Dinner bucket: %v", got)
	}
	if got := ids(buckets.Snacks); !reflect.DeepEqual(got, []string{"r-fruit"}) {
		t.Errorf("Snacks bucket: %v", got)
	}
	if buckets.Excluded != 2 {
		t.Errorf("Expected 2 excluded recipes, got %d", buckets.Excluded)
	}

	// Categorization is a pure function of the input.
	again := Categorize(recipes)
	if !reflect.DeepEqual(buckets, again) {
		t.Errorf("Repeated categorization differs:\n%+v\n%+v", buckets, again)
	}
}

func TestBucketsForMealType(t *testing.T) {
	b := Buckets{Lunch: []recipe.Recipe{{ID: "r-1"}}}
	if got := ids(b.ForMealType(Lunch)); !reflect.DeepEqual(got, []string{"r-1"}) {
		t.Errorf("ForMealType(lunch): %v", got)
	}
	if b.ForMealType(AfternoonSnack) != nil {
		t.Error("Expected nil bucket for non-generation meal type")
	}
}

func ids(recipes []recipe.Recipe) []string {
	out := []string{}
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}
