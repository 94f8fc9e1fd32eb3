package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/source"
	"meal-planner/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sourceClient := source.NewClient(cfg)

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	groqClient := llm.NewGroqClient(cfg)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	archive, err := storage.NewPlanArchive(cfg.ArchivePath)
	if err != nil {
		log.Fatalf("Failed to initialize plan archive: %v", err)
	}

	generator := planner.NewGenerator(groqClient)

	application := app.NewApp(
		sourceClient,
		geminiClient,
		generator,
		metricsStore,
		recipeRepo,
		planRepo,
		archive,
		cfg,
		db,
	)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		user := generateCmd.String("user", "default_user", "User to generate the plan for")
		days := generateCmd.Int("days", 0, "Plan length in days (default from config)")
		generateCmd.Parse(os.Args[2:])

		prefs := application.DefaultPreferences()
		if *days > 0 {
			prefs.Duration = *days
		}

		result, err := application.GeneratePlan(ctx, *user, prefs)
		if err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
		printPlan(result)
	case "ingest":
		if err := application.IngestRecipes(ctx); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
	case "share":
		shareCmd := flag.NewFlagSet("share", flag.ExitOnError)
		id := shareCmd.String("id", "", "Recipe id to publish to the CMS")
		shareCmd.Parse(os.Args[2:])
		if *id == "" {
			log.Fatal("share requires -id")
		}

		post, err := application.ShareRecipe(ctx, *id)
		if err != nil {
			log.Fatalf("Publishing failed: %v", err)
		}
		fmt.Printf("Published %q as post %s.\n", post.Title, post.ID)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printPlan(result *planner.Result) {
	fmt.Println("\n=== MEAL PLAN ===")
	for _, date := range result.MealPlan.SortedDates() {
		day, _ := json.MarshalIndent(result.MealPlan[date], "", "  ")
		fmt.Printf("%s:\n%s\n", date, day)
	}
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate           Generate a meal plan from your recipes")
	fmt.Println("  ingest             Fetch and normalize recipes from the CMS")
	fmt.Println("  share              Publish a stored recipe to the CMS")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
