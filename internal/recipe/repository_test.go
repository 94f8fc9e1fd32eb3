package recipe

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"meal-planner/internal/catalog"
)

func newRecipeTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE recipes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL DEFAULT '',
			public INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		t.Fatalf("Failed to create recipes table: %v", err)
	}
	return db
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	tortilla := Recipe{
		ID:      "r-tortilla",
		OwnerID: "user-1",
		Title:   "Tortilla de patatas",
		Tags:    []string{"lunch", "dinner", "uniqueDish"},
		Public:  true,
		Ingredients: []catalog.IngredientLine{
			{IngredientID: "potato", Name: "potato", Quantity: 500, Unit: "g"},
		},
	}

	t.Run("SaveAndGet", func(t *testing.T) {
		repo := NewRepository(newRecipeTestDB(t))

		if err := repo.Save(ctx, tortilla); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}

		got, err := repo.Get(ctx, "r-tortilla")
		if err != nil {
			t.Fatalf("Failed to get recipe: %v", err)
		}
		if got == nil {
			t.Fatal("Expected recipe, got nil")
		}
		if got.Title != tortilla.Title || len(got.Ingredients) != 1 {
			t.Errorf("Round trip mismatch: %+v", got)
		}

		missing, err := repo.Get(ctx, "r-missing")
		if err != nil {
			t.Fatalf("Expected no error for missing recipe, got %v", err)
		}
		if missing != nil {
			t.Errorf("Expected nil for missing recipe, got %+v", missing)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		repo := NewRepository(newRecipeTestDB(t))

		if err := repo.Save(ctx, tortilla); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}
		updated := tortilla
		updated.Title = "Tortilla espanola"
		if err := repo.Save(ctx, updated); err != nil {
			t.Fatalf("Failed to overwrite recipe: %v", err)
		}

		got, err := repo.Get(ctx, "r-tortilla")
		if err != nil || got == nil {
			t.Fatalf("Failed to get recipe: %v", err)
		}
		if got.Title != "Tortilla espanola" {
			t.Errorf("Expected updated title, got %q", got.Title)
		}
		if n, err := repo.Count(ctx); err != nil || n != 1 {
			t.Errorf("Expected 1 row after overwrite, got %d (err %v)", n, err)
		}
	})

	t.Run("FindByTitleVisibility", func(t *testing.T) {
		repo := NewRepository(newRecipeTestDB(t))

		private := tortilla
		private.ID = "r-private"
		private.Public = false
		private.Title = "Secret stew"
		if err := repo.Save(ctx, private); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}

		// Case-insensitive match for the owner.
		got, err := repo.FindByTitle(ctx, "secret STEW", "user-1")
		if err != nil {
			t.Fatalf("Failed to find recipe: %v", err)
		}
		if got == nil || got.ID != "r-private" {
			t.Errorf("Expected owner to find private recipe, got %+v", got)
		}

		// Invisible to everyone else.
		got, err = repo.FindByTitle(ctx, "Secret stew", "user-2")
		if err != nil {
			t.Fatalf("Failed to find recipe: %v", err)
		}
		if got != nil {
			t.Errorf("Expected private recipe hidden from other users, got %+v", got)
		}
	})

	t.Run("ListVisible", func(t *testing.T) {
		repo := NewRepository(newRecipeTestDB(t))

		private := tortilla
		private.ID = "r-private"
		private.Public = false
		for _, rec := range []Recipe{tortilla, private} {
			if err := repo.Save(ctx, rec); err != nil {
				t.Fatalf("Failed to save recipe: %v", err)
			}
		}

		visible, err := repo.ListVisible(ctx, "user-2")
		if err != nil {
			t.Fatalf("Failed to list recipes: %v", err)
		}
		if len(visible) != 1 || visible[0].ID != "r-tortilla" {
			t.Errorf("Expected only the public recipe, got %+v", visible)
		}

		own, err := repo.ListVisible(ctx, "user-1")
		if err != nil {
			t.Fatalf("Failed to list recipes: %v", err)
		}
		if len(own) != 2 {
			t.Errorf("Expected owner to see both recipes, got %d", len(own))
		}
	})

	t.Run("GetByIDs", func(t *testing.T) {
		repo := NewRepository(newRecipeTestDB(t))

		if err := repo.Save(ctx, tortilla); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}

		got, err := repo.GetByIDs(ctx, []string{"r-tortilla", "r-missing"})
		if err != nil {
			t.Fatalf("Failed to get recipes: %v", err)
		}
		if len(got) != 1 || got[0].ID != "r-tortilla" {
			t.Errorf("Expected missing ids skipped, got %+v", got)
		}
	})
}
