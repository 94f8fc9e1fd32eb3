package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed ingredients.json
var ingredientsJSON []byte

// Ingredient is one entry of the static reference dataset.
type Ingredient struct {
	ID       string            `json:"id"`
	Names    map[string]string `json:"names"`
	Category string            `json:"category"`
	Units    []string          `json:"units"`
}

// Name returns the ingredient's preferred display name.
func (i Ingredient) Name() string {
	if n, ok := i.Names["en"]; ok {
		return n
	}
	for _, n := range i.Names {
		return n
	}
	return i.ID
}

// AllowsUnit reports whether the given unit is in the allowed-units list.
func (i Ingredient) AllowsUnit(unit string) bool {
	for _, u := range i.Units {
		if strings.EqualFold(u, unit) {
			return true
		}
	}
	return false
}

var (
	loadOnce sync.Once
	byID     map[string]Ingredient
	byName   map[string]Ingredient
)

// load parses the embedded dataset exactly once. The resulting maps are
// never mutated afterwards, so concurrent reads need no synchronization.
func load() {
	loadOnce.Do(func() {
		var entries []Ingredient
		if err := json.Unmarshal(ingredientsJSON, &entries); err != nil {
			// The dataset ships inside the binary; a parse failure is a build defect.
			panic(fmt.Sprintf("catalog: invalid embedded ingredient dataset: %v", err))
		}

		byID = make(map[string]Ingredient, len(entries))
		byName = make(map[string]Ingredient)
		for _, e := range entries {
			byID[e.ID] = e
			for _, name := range e.Names {
				byName[strings.ToLower(name)] = e
			}
		}
	})
}

// Lookup resolves an ingredient reference: first by exact id, then by
// case-insensitive match against any localized name.
func Lookup(idOrName string) (Ingredient, bool) {
	load()
	if ing, ok := byID[idOrName]; ok {
		return ing, true
	}
	ing, ok := byName[strings.ToLower(strings.TrimSpace(idOrName))]
	return ing, ok
}

// Count returns the number of ingredients in the dataset.
func Count() int {
	load()
	return len(byID)
}
