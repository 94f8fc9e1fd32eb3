package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/source"
	"meal-planner/internal/storage"
	"meal-planner/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	groqClient := llm.NewGroqClient(cfg)

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

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

	sourceClient := source.NewClient(cfg)
	generator := planner.NewGenerator(groqClient)
	recipeClipper := clipper.NewClipper(recipeRepo, geminiClient)

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

	bot, err := telegram.NewBot(cfg, application, recipeClipper, metricsStore, recipeRepo)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
