package planner

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"meal-planner/internal/recipe"
)

//go:embed generation_prompt.md
var generationPrompt string

type promptRecipe struct {
	ID          string
	Tags        string
	PrepTime    int
	Ingredients string
}

type promptSection struct {
	MealType string
	Rule     string
	Recipes  []promptRecipe
}

type promptData struct {
	People       int
	MaxPrepTime  int
	Dates        []string
	Sections     []promptSection
	HasComposite bool
}

// BuildPrompt renders the generation prompt for the given buckets and
// preferences. Target dates run from startDate for Duration days.
// The prompt states every hard rule both positively and as explicit
// prohibited examples, which keeps most of the repair burden off the
// validators.
func BuildPrompt(buckets Buckets, prefs Preferences, startDate time.Time) (string, error) {
	data := promptData{
		People:      prefs.People,
		MaxPrepTime: prefs.MaxPrepTime,
	}

	for i := 0; i < prefs.Duration; i++ {
		data.Dates = append(data.Dates, startDate.AddDate(0, 0, i).Format("2006-01-02"))
	}

	for _, mt := range prefs.SelectedMealTypes {
		section := promptSection{MealType: string(mt)}
		switch mt {
		case Lunch, Dinner:
			section.Rule = "either exactly 1 recipe tagged uniqueDish, or exactly 2 recipes: 1 tagged firstCourse and 1 tagged secondCourse"
			data.HasComposite = true
		default:
			section.Rule = "at least 1 recipe tagged " + string(mt)
		}
		for _, r := range buckets.ForMealType(mt) {
			section.Recipes = append(section.Recipes, promptRecipe{
				ID:          r.ID,
				Tags:        strings.Join(r.Tags, ","),
				PrepTime:    r.PrepTime,
				Ingredients: ingredientSummary(r),
			})
		}
		data.Sections = append(data.Sections, section)
	}

	tmpl, err := template.New("generation").Parse(generationPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func ingredientSummary(r recipe.Recipe) string {
	if len(r.Ingredients) == 0 {
		return "unknown"
	}
	parts := make([]string, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		parts = append(parts, fmt.Sprintf("%s %v%s", line.Name, line.Quantity, line.Unit))
	}
	return strings.Join(parts, ", ")
}
