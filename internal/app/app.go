package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/source"
	"meal-planner/internal/storage"
)

// App holds the application's dependencies.
type App struct {
	sourceClient source.Client
	extractGen   llm.TextGenerator
	generator    *planner.Generator
	metricsStore *metrics.Store
	recipeRepo   *recipe.Repository
	planRepo     *planner.PlanRepository
	archive      *storage.PlanArchive
	cfg          *config.Config
	db           *database.DB

	// Pause between CMS imports to stay under the extraction model's
	// free-tier rate limit.
	ingestPause time.Duration
}

// NewApp creates and initializes a new App instance.
func NewApp(
	sourceClient source.Client,
	extractGen llm.TextGenerator,
	generator *planner.Generator,
	metricsStore *metrics.Store,
	recipeRepo *recipe.Repository,
	planRepo *planner.PlanRepository,
	archive *storage.PlanArchive,
	cfg *config.Config,
	db *database.DB,
) *App {
	return &App{
		sourceClient: sourceClient,
		extractGen:   extractGen,
		generator:    generator,
		metricsStore: metricsStore,
		recipeRepo:   recipeRepo,
		planRepo:     planRepo,
		archive:      archive,
		cfg:          cfg,
		db:           db,
		ingestPause:  5 * time.Second,
	}
}

// DefaultPreferences builds a generation request from configured defaults.
func (a *App) DefaultPreferences() planner.Preferences {
	mealTypes := make([]planner.MealType, 0, len(a.cfg.DefaultMealTypes))
	for _, mt := range a.cfg.DefaultMealTypes {
		mealTypes = append(mealTypes, planner.MealType(mt))
	}
	return planner.Preferences{
		Duration:          a.cfg.DefaultDuration,
		People:            a.cfg.DefaultPeople,
		SelectedMealTypes: mealTypes,
	}
}

// GeneratePlan runs plan generation for a user over their visible recipes,
// records per-attempt metrics, persists the plan day by day and archives
// the full generation.
func (a *App) GeneratePlan(ctx context.Context, userID string, prefs planner.Preferences) (*planner.Result, error) {
	favorites, err := a.recipeRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	result, metas, err := a.generator.GeneratePlan(ctx, favorites, prefs)

	// Record metrics even when generation failed; failed attempts cost
	// tokens too.
	for _, meta := range metas {
		if mErr := a.metricsStore.RecordMeta(ctx, meta); mErr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, mErr)
		}
	}

	if err != nil {
		return nil, err
	}

	if err := a.planRepo.SaveGenerated(ctx, userID, result.MealPlan); err != nil {
		return nil, fmt.Errorf("failed to persist generated plan: %w", err)
	}

	generatedAt := time.Now().UTC().Format(time.RFC3339)
	if err := a.archive.Save(userID, generatedAt, *result); err != nil {
		log.Printf("Warning: failed to archive generated plan: %v", err)
	}

	return result, nil
}

// IngestRecipes fetches recipe posts from the source CMS, extracts and
// normalizes each one and stores it in the recipe repository. Posts already
// stored at the same revision are skipped.
func (a *App) IngestRecipes(ctx context.Context) error {
	log.Println("Fetching and processing recipes...")

	posts, err := a.sourceClient.FetchRecipes()
	if err != nil {
		return fmt.Errorf("failed to fetch recipes from source: %w", err)
	}

	log.Printf("Fetched %d recipe posts from the CMS.", len(posts))
	for _, post := range posts {
		existing, err := a.recipeRepo.Get(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing recipe %s: %w", post.ID, err)
		}
		if existing != nil && existing.UpdatedAt == post.UpdatedAt {
			log.Printf("Recipe '%s' is up to date, skipping.", post.Title)
			continue
		}

		log.Printf("Extracting '%s'...", post.Title)
		if err := a.processPost(ctx, post); err != nil {
			log.Printf("Failed to process '%s': %v", post.Title, err)
			continue
		}
		log.Printf("Successfully processed '%s'.", post.Title)

		if a.ingestPause > 0 {
			time.Sleep(a.ingestPause)
		}
	}

	log.Println("Ingestion complete.")
	return nil
}

// processPost extracts one CMS post into a stored recipe.
func (a *App) processPost(ctx context.Context, post source.Post) error {
	result, err := recipe.ExtractFromContent(ctx, a.extractGen, post.Title, post.HTML)
	if err != nil {
		return fmt.Errorf("failed to extract recipe: %w", err)
	}

	title := result.Recipe.Title
	if title == "" {
		title = post.Title
	}

	rec := recipe.Recipe{
		ID:          post.ID,
		Title:       title,
		Tags:        result.Recipe.Tags,
		PrepTime:    result.Recipe.PrepTime,
		Public:      true,
		Steps:       result.Recipe.Steps,
		Ingredients: recipe.LinesFromExtracted(result.Recipe.Ingredients),
		UpdatedAt:   post.UpdatedAt,
	}

	if err := a.recipeRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	if err := a.metricsStore.RecordMeta(ctx, result.Meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", result.Meta.AgentName, err)
	}
	return nil
}

// ShareRecipe publishes a stored recipe back to the CMS so other household
// members' installations can ingest it.
func (a *App) ShareRecipe(ctx context.Context, recipeID string) (*source.Post, error) {
	rec, err := a.recipeRepo.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("recipe %s not found", recipeID)
	}

	post, err := a.sourceClient.PublishRecipe(rec.Title, formatRecipeHTML(*rec), true)
	if err != nil {
		return nil, fmt.Errorf("failed to publish recipe: %w", err)
	}
	return post, nil
}

// CleanupMetrics removes execution metrics older than the given age.
func (a *App) CleanupMetrics(ctx context.Context, olderThanDays int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, olderThanDays)
}

func formatRecipeHTML(rec recipe.Recipe) string {
	var sb strings.Builder

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, line := range rec.Ingredients {
		qty := line.DisplayQuantity
		if qty == "" {
			qty = fmt.Sprintf("%v", line.Quantity)
		}
		unit := line.DisplayUnit
		if unit == "" {
			unit = line.Unit
		}
		sb.WriteString(fmt.Sprintf("<li>%s %s %s</li>", qty, unit, line.Name))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h2>Instructions</h2><ol>")
	for _, step := range rec.Steps {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", step))
	}
	sb.WriteString("</ol>")

	if rec.PrepTime > 0 {
		sb.WriteString(fmt.Sprintf("<hr><p><strong>Prep Time:</strong> %d min</p>", rec.PrepTime))
	}

	return sb.String()
}
