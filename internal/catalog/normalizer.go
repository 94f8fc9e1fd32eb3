package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IngredientLine is the canonical stored form of a recipe ingredient.
// It is constructed once at recipe create/update time and immutable until
// the next edit. Display fields preserve the user's original input so the
// UI never has to re-derive them.
type IngredientLine struct {
	IngredientID    string  `json:"ingredientId"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	DisplayQuantity string  `json:"displayQuantity"`
	DisplayUnit     string  `json:"displayUnit"`
	IsAbstract      bool    `json:"isAbstract"`
	AbstractMeasure string  `json:"abstractMeasure,omitempty"`
	EstimatedValue  float64 `json:"estimatedValue"`
}

// RawIngredient is a user-supplied ingredient entry before normalization.
type RawIngredient struct {
	Ingredient      string  // catalog id or free-text name
	Quantity        float64
	Unit            string
	IsAbstract      bool
	AbstractMeasure string
	DisplayQuantity string
	DisplayUnit     string
	EstimatedValue  float64
}

// NotFoundError reports an ingredient reference that matches neither a
// catalog id nor any localized name.
type NotFoundError struct {
	Ingredient string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ingredient %q not found in catalog", e.Ingredient)
}

// UnitNotAllowedError reports a unit outside the catalog entry's allowed list.
type UnitNotAllowedError struct {
	Ingredient string
	Unit       string
	Allowed    []string
}

func (e *UnitNotAllowedError) Error() string {
	return fmt.Sprintf("unit %q not allowed for ingredient %q (permitted: %s)",
		e.Unit, e.Ingredient, strings.Join(e.Allowed, ", "))
}

// Normalize resolves a raw ingredient entry into its canonical stored form.
// Abstract measures are converted to their base unit first; the ingredient
// reference is then resolved against the catalog and, unless abstract, the
// unit is validated against the entry's allowed list.
func Normalize(raw RawIngredient) (IngredientLine, error) {
	return normalize(raw, true)
}

// NormalizeLenient behaves like Normalize but, when the only failure is the
// unit validation, retries with the unit check skipped so unusual but
// nameable units don't block recipe creation outright. Any other failure is
// returned unchanged.
func NormalizeLenient(raw RawIngredient) (IngredientLine, error) {
	line, err := normalize(raw, true)
	var unitErr *UnitNotAllowedError
	if errors.As(err, &unitErr) {
		return normalize(raw, false)
	}
	return line, err
}

func normalize(raw RawIngredient, validateUnit bool) (IngredientLine, error) {
	line := IngredientLine{
		Quantity:        raw.Quantity,
		Unit:            raw.Unit,
		DisplayQuantity: raw.DisplayQuantity,
		DisplayUnit:     raw.DisplayUnit,
		IsAbstract:      raw.IsAbstract,
		AbstractMeasure: raw.AbstractMeasure,
		EstimatedValue:  raw.EstimatedValue,
	}

	abstract := false
	if raw.IsAbstract {
		if m, ok := LookupMeasure(raw.AbstractMeasure); ok {
			abstract = true
			line.Unit = m.BaseUnit
			line.Quantity = parseDisplayQuantity(raw.DisplayQuantity) * m.BaseValue
			line.EstimatedValue = line.Quantity
			if line.DisplayUnit == "" {
				line.DisplayUnit = m.Name
			}
		}
	}

	ing, ok := Lookup(raw.Ingredient)
	if !ok {
		return IngredientLine{}, &NotFoundError{Ingredient: raw.Ingredient}
	}
	line.IngredientID = ing.ID
	line.Name = ing.Name()

	if validateUnit && !abstract && line.Unit != "" && !ing.AllowsUnit(line.Unit) {
		return IngredientLine{}, &UnitNotAllowedError{
			Ingredient: ing.ID,
			Unit:       line.Unit,
			Allowed:    ing.Units,
		}
	}

	return line, nil
}

// parseDisplayQuantity turns the user-facing quantity string into a factor,
// defaulting to 1 when absent or unparsable ("a pinch" means one pinch).
func parseDisplayQuantity(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}
