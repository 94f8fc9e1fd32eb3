package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository is a database-backed repository for recipes. The full recipe is
// stored as a JSON document; id, owner, visibility and title are promoted to
// columns for lookup.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a recipe.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	var updatedAt time.Time
	if rec.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			updatedAt = time.Now().UTC()
		} else {
			updatedAt = parsed
		}
	} else {
		updatedAt = time.Now().UTC()
	}

	public := 0
	if rec.Public {
		public = 1
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, owner_id, public, title, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			public = excluded.public,
			title = excluded.title,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.ID, rec.OwnerID, public, rec.Title, string(recipeJSON), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// Get retrieves a recipe by its ID. Returns (nil, nil) when not found.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// FindByTitle returns the best case-insensitive title match visible to the
// requester: public recipes or the requester's own. Returns (nil, nil) when
// nothing matches.
func (r *Repository) FindByTitle(ctx context.Context, title, requesterID string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM recipes
		WHERE LOWER(title) = LOWER(?) AND (public = 1 OR owner_id = ?)
		ORDER BY updated_at DESC
		LIMIT 1`, title, requesterID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find recipe by title: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// ListVisible retrieves all recipes visible to the given user
// (their own plus public ones).
func (r *Repository) ListVisible(ctx context.Context, userID string) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, data FROM recipes
		WHERE public = 1 OR owner_id = ?
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			// Skip corrupted rows rather than failing the whole listing.
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// GetByIDs retrieves multiple recipes by their IDs. Missing ids are skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]Recipe, error) {
	var recipes []Recipe
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recipes = append(recipes, *rec)
		}
	}
	return recipes, nil
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}
