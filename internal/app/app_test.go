package app

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shared"
	"meal-planner/internal/source"
	"meal-planner/internal/storage"
)

type mockSourceClient struct {
	posts     []source.Post
	fetchErr  error
	published []source.Post
}

func (m *mockSourceClient) FetchRecipes() ([]source.Post, error) {
	return m.posts, m.fetchErr
}

func (m *mockSourceClient) PublishRecipe(title, html string, publish bool) (*source.Post, error) {
	post := source.Post{ID: fmt.Sprintf("post-%d", len(m.published)+1), Title: title, HTML: html}
	m.published = append(m.published, post)
	return &post, nil
}

type mockTextGen struct {
	res   string
	calls int
}

func (m *mockTextGen) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.calls++
	return llm.ContentResponse{Content: m.res}, nil
}

type mockModelGen struct {
	res string
}

func (m *mockModelGen) GenerateWithModel(ctx context.Context, model, prompt string) (llm.ContentResponse, error) {
	return llm.ContentResponse{
		Content: m.res,
		Usage:   shared.TokenUsage{PromptTokens: 800, CompletionTokens: 200, TotalTokens: 1000, Model: model},
	}, nil
}

func newAppTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
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
		);
		CREATE TABLE meal_plans (
			user_id TEXT NOT NULL,
			plan_date TEXT NOT NULL,
			plan_data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, plan_date)
		);
		CREATE TABLE execution_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_name TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			timestamp TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestIngestRecipes(t *testing.T) {
	ctx := context.Background()
	db := newAppTestDB(t)

	recipeRepo := recipe.NewRepository(db)
	metricsStore := metrics.NewStore(db)

	// One post already stored at the same revision, one new.
	stale := recipe.Recipe{
		ID:        "post-known",
		Title:     "Known recipe",
		UpdatedAt: "2026-02-01T10:00:00Z",
	}
	if err := recipeRepo.Save(ctx, stale); err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	extractedJSON := `{
		"title": "Lentil soup",
		"tags": ["lunch", "firstCourse"],
		"prep_time": 25,
		"ingredients": [{"name": "lentils", "quantity": 250, "unit": "g"}],
		"steps": ["Simmer the lentils."]
	}`
	textGen := &mockTextGen{res: extractedJSON}

	app := &App{
		sourceClient: &mockSourceClient{posts: []source.Post{
			{ID: "post-known", Title: "Known recipe", UpdatedAt: "2026-02-01T10:00:00Z", HTML: "<p>unchanged</p>"},
			{ID: "post-new", Title: "Lentil soup", UpdatedAt: "2026-02-02T10:00:00Z", HTML: "<p>lentils</p>"},
		}},
		extractGen:   textGen,
		metricsStore: metricsStore,
		recipeRepo:   recipeRepo,
	}

	if err := app.IngestRecipes(ctx); err != nil {
		t.Fatalf("IngestRecipes failed: %v", err)
	}

	// Only the new post went through extraction.
	if textGen.calls != 1 {
		t.Errorf("Expected 1 extraction call, got %d", textGen.calls)
	}

	got, err := recipeRepo.Get(ctx, "post-new")
	if err != nil || got == nil {
		t.Fatalf("Expected ingested recipe, got %v (err %v)", got, err)
	}
	if got.Title != "Lentil soup" || !got.Public {
		t.Errorf("Unexpected ingested recipe: %+v", got)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].IngredientID != "lentils" {
		t.Errorf("Expected normalized lentils line, got %+v", got.Ingredients)
	}
	if got.UpdatedAt != "2026-02-02T10:00:00Z" {
		t.Errorf("Expected post revision carried over, got %q", got.UpdatedAt)
	}
}

func TestGeneratePlanPersistsAndArchives(t *testing.T) {
	ctx := context.Background()
	db := newAppTestDB(t)

	recipeRepo := recipe.NewRepository(db)
	planRepo := planner.NewPlanRepository(db)
	metricsStore := metrics.NewStore(db)

	archiveDir := t.TempDir()
	archive, err := storage.NewPlanArchive(archiveDir)
	if err != nil {
		t.Fatal(err)
	}

	favorite := recipe.Recipe{
		ID:     "r-paella",
		Title:  "Paella",
		Tags:   []string{"lunch", "uniqueDish"},
		Public: true,
	}
	if err := recipeRepo.Save(ctx, favorite); err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	planJSON := `{"2026-02-02": {"lunch": [{"recipeId": "r-paella"}]}}`
	generator := planner.NewGenerator(
		&mockModelGen{res: planJSON},
		planner.WithModels("model-a"),
		planner.WithSleep(func(time.Duration) {}),
	)

	app := &App{
		generator:    generator,
		metricsStore: metricsStore,
		recipeRepo:   recipeRepo,
		planRepo:     planRepo,
		archive:      archive,
	}

	prefs := planner.Preferences{Duration: 1, People: 2, SelectedMealTypes: []planner.MealType{planner.Lunch}}
	result, err := app.GeneratePlan(ctx, "user-1", prefs)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if len(result.MealPlan) != 1 {
		t.Fatalf("Expected a 1-day plan, got %d days", len(result.MealPlan))
	}

	// The plan landed in the repository.
	stored, err := planRepo.FindRange(ctx, "user-1", "2026-02-02", "2026-02-02")
	if err != nil {
		t.Fatalf("failed to read back plan: %v", err)
	}
	if len(stored) != 1 || stored["2026-02-02"][planner.Lunch][0].RecipeID != "r-paella" {
		t.Errorf("Unexpected stored plan: %+v", stored)
	}

	// And in the archive.
	versions, err := archive.ListVersions("user-1")
	if err != nil {
		t.Fatalf("failed to list archive: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("Expected 1 archived generation, got %d", len(versions))
	}
}

func TestShareRecipe(t *testing.T) {
	ctx := context.Background()
	db := newAppTestDB(t)

	recipeRepo := recipe.NewRepository(db)
	rec := recipe.Recipe{
		ID:    "r-gazpacho",
		Title: "Gazpacho",
		Steps: []string{"Blend everything."},
	}
	if err := recipeRepo.Save(ctx, rec); err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	cms := &mockSourceClient{}
	app := &App{sourceClient: cms, recipeRepo: recipeRepo}

	post, err := app.ShareRecipe(ctx, "r-gazpacho")
	if err != nil {
		t.Fatalf("ShareRecipe failed: %v", err)
	}
	if post.Title != "Gazpacho" {
		t.Errorf("Expected published title 'Gazpacho', got %q", post.Title)
	}
	if len(cms.published) != 1 || !strings.Contains(cms.published[0].HTML, "Blend everything.") {
		t.Errorf("Unexpected published HTML: %+v", cms.published)
	}

	if _, err := app.ShareRecipe(ctx, "r-missing"); err == nil {
		t.Error("Expected an error for an unknown recipe")
	}
}
