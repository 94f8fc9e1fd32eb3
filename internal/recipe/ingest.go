package recipe

import (
	"errors"
	"log"
	"strconv"

	"meal-planner/internal/catalog"
)

// LinesFromExtracted resolves each extracted ingredient against the catalog.
// Unknown ingredients are kept as display-only lines rather than failing the
// whole import; the user can fix them up in the recipe editor later.
func LinesFromExtracted(extracted []ExtractedIngredient) []catalog.IngredientLine {
	var lines []catalog.IngredientLine
	for _, ing := range extracted {
		raw := catalog.RawIngredient{
			Ingredient: ing.Name,
			Quantity:   ing.Quantity,
			Unit:       ing.Unit,
		}
		if ing.Abstract != "" {
			raw.IsAbstract = true
			raw.AbstractMeasure = ing.Abstract
			raw.DisplayQuantity = strconv.FormatFloat(ing.Quantity, 'f', -1, 64)
		}

		line, err := catalog.NormalizeLenient(raw)
		if err != nil {
			var notFound *catalog.NotFoundError
			if errors.As(err, &notFound) {
				log.Printf("Warning: imported ingredient %q not in catalog, keeping display-only", ing.Name)
				lines = append(lines, catalog.IngredientLine{
					Name:            ing.Name,
					Quantity:        ing.Quantity,
					Unit:            ing.Unit,
					DisplayQuantity: strconv.FormatFloat(ing.Quantity, 'f', -1, 64),
					DisplayUnit:     ing.Unit,
				})
				continue
			}
			log.Printf("Warning: skipping imported ingredient %q: %v", ing.Name, err)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
