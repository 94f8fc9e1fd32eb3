package catalog

import "strings"

// Measure maps an abstract, context-dependent quantity (e.g. "a pinch") to a
// concrete base unit and value so recipes can be stored uniformly.
type Measure struct {
	Name      string
	BaseUnit  string // "ml" or "g"
	BaseValue float64
}

// abstractMeasures is the fixed equivalence table. Spanish aliases are
// included because household recipes use both ("pizca", "chorrito").
var abstractMeasures = map[string]Measure{
	"pinch":    {Name: "pinch", BaseUnit: "g", BaseValue: 0.5},
	"pizca":    {Name: "pizca", BaseUnit: "g", BaseValue: 0.5},
	"splash":   {Name: "splash", BaseUnit: "ml", BaseValue: 5},
	"chorrito": {Name: "chorrito", BaseUnit: "ml", BaseValue: 5},
	"dash":     {Name: "dash", BaseUnit: "ml", BaseValue: 0.6},
	"golpe":    {Name: "golpe", BaseUnit: "ml", BaseValue: 0.6},
	"drop":     {Name: "drop", BaseUnit: "ml", BaseValue: 0.05},
	"gota":     {Name: "gota", BaseUnit: "ml", BaseValue: 0.05},
	"handful":  {Name: "handful", BaseUnit: "g", BaseValue: 30},
	"punado":   {Name: "punado", BaseUnit: "g", BaseValue: 30},
	"drizzle":  {Name: "drizzle", BaseUnit: "ml", BaseValue: 3},
	"hilo":     {Name: "hilo", BaseUnit: "ml", BaseValue: 3},
	"sprig":    {Name: "sprig", BaseUnit: "g", BaseValue: 2},
	"ramita":   {Name: "ramita", BaseUnit: "g", BaseValue: 2},
}

// LookupMeasure resolves an abstract measure name, case-insensitively.
func LookupMeasure(name string) (Measure, bool) {
	m, ok := abstractMeasures[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}
