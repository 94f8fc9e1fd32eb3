package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	GroqAPIKey   string
	GeminiAPIKey string

	// Recipe source CMS (optional, required for ingest/clip)
	SourceURL        string
	SourceContentKey string
	SourceAdminKey   string

	// Storage
	DatabasePath string
	ArchivePath  string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	// Planning defaults
	DefaultDuration  int
	DefaultPeople    int
	DefaultMealTypes []string
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first if present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	// Gemini powers recipe extraction only; plan generation runs on Groq.
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")

	sourceURL := os.Getenv("RECIPE_SOURCE_URL")
	sourceContentKey := os.Getenv("RECIPE_SOURCE_CONTENT_KEY")
	sourceAdminKey := os.Getenv("RECIPE_SOURCE_ADMIN_KEY")
	if sourceAdminKey == "" {
		// Fallback to content key if only one is provided
		sourceAdminKey = sourceContentKey
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/meal-planner.db"
	}
	archivePath := os.Getenv("PLAN_ARCHIVE_PATH")
	if archivePath == "" {
		archivePath = "data/plans"
	}

	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")

	var allowedIDs []int64
	for _, part := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		fmt.Sscanf(s, "%d", &adminID)
	}

	defaultDuration := intFromEnv("DEFAULT_PLAN_DURATION", 7)
	defaultPeople := intFromEnv("DEFAULT_PLAN_PEOPLE", 2)

	defaultMealTypes := []string{"lunch", "dinner"}
	if s := os.Getenv("DEFAULT_MEAL_TYPES"); s != "" {
		defaultMealTypes = nil
		for _, mt := range strings.Split(s, ",") {
			if mt = strings.TrimSpace(mt); mt != "" {
				defaultMealTypes = append(defaultMealTypes, mt)
			}
		}
	}

	return &Config{
		GroqAPIKey:             groqAPIKey,
		GeminiAPIKey:           geminiAPIKey,
		SourceURL:              sourceURL,
		SourceContentKey:       sourceContentKey,
		SourceAdminKey:         sourceAdminKey,
		DatabasePath:           databasePath,
		ArchivePath:            archivePath,
		TelegramBotToken:       telegramBotToken,
		TelegramWebhookURL:     telegramWebhookURL,
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
		DefaultDuration:        defaultDuration,
		DefaultPeople:          defaultPeople,
		DefaultMealTypes:       defaultMealTypes,
	}, nil
}

func intFromEnv(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
