package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API, the planner application and the clipper.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	clipper      *clipper.Clipper
	metricsStore *metrics.Store
	recipeRepo   *recipe.Repository
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	application *app.App,
	recipeClipper *clipper.Clipper,
	metricsStore *metrics.Store,
	recipeRepo *recipe.Repository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, _ := tgbotapi.NewWebhook(webhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		app:          application,
		clipper:      recipeClipper,
		metricsStore: metricsStore,
		recipeRepo:   recipeRepo,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	if msg.Text == "/metrics" {
		b.handleMetricsRequest(msg)
		return
	}

	// A URL means clipper mode; anything else is a plan request.
	if strings.HasPrefix(msg.Text, "http://") || strings.HasPrefix(msg.Text, "https://") {
		b.handleClipperRequest(msg)
		return
	}

	b.handlePlannerRequest(msg)
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⛔ *Access Denied*: Admin only."))
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleClipperRequest(msg *tgbotapi.Message) {
	statusText := "✂️ *Clipping recipe...*"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	userID := fmt.Sprintf("%d", msg.From.ID)
	rec, meta, err := b.clipper.ClipURL(ctx, msg.Text, userID)

	if mErr := b.metricsStore.RecordMeta(ctx, meta); mErr != nil {
		log.Printf("Warning: failed to record clip metrics: %v", mErr)
	}

	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*Ingredients:* %d", rec.Title, len(rec.Ingredients))
	}
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func (b *Bot) handlePlannerRequest(msg *tgbotapi.Message) {
	statusText := "🧑‍🍳 *Thinking...* \n(Matching your recipes and generating a plan)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	log.Printf("Generating plan for request: %s", msg.Text)

	userID := fmt.Sprintf("%d", msg.From.ID)
	prefs := parsePlanRequest(msg.Text, b.app.DefaultPreferences())

	result, err := b.app.GeneratePlan(ctx, userID, prefs)

	var finalText string
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error generating plan:*\n```\n%v\n```", safeErr)
	} else {
		titles := b.recipeTitles(ctx, result.MealPlan)
		finalText = formatPlanMarkdown(result.MealPlan, prefs.SelectedMealTypes, titles)

		if b.cfg.AdminTelegramID != 0 && userID != fmt.Sprintf("%d", b.cfg.AdminTelegramID) {
			b.sendAdminAlert(fmt.Sprintf("📅 New plan generated for user %s (%d days)", userID, len(result.MealPlan)))
		}
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

// recipeTitles resolves every recipe id in the plan to its title.
func (b *Bot) recipeTitles(ctx context.Context, plan planner.GeneratedPlan) map[string]string {
	seen := map[string]struct{}{}
	var ids []string
	for _, day := range plan {
		for _, items := range day {
			for _, item := range items {
				if _, ok := seen[item.RecipeID]; !ok {
					seen[item.RecipeID] = struct{}{}
					ids = append(ids, item.RecipeID)
				}
			}
		}
	}

	titles := map[string]string{}
	recipes, err := b.recipeRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("Warning: failed to resolve recipe titles: %v", err)
		return titles
	}
	for _, rec := range recipes {
		titles[rec.ID] = rec.Title
	}
	return titles
}

var (
	daysPattern   = regexp.MustCompile(`(\d+)\s*(?:days?|d[ií]as?)`)
	peoplePattern = regexp.MustCompile(`(\d+)\s*(?:people|persons?|personas?)`)
)

// parsePlanRequest extracts duration, head count and meal types from a
// natural-language request, falling back to the configured defaults for
// anything the text doesn't mention.
func parsePlanRequest(text string, defaults planner.Preferences) planner.Preferences {
	prefs := defaults
	lower := strings.ToLower(text)

	if m := daysPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			prefs.Duration = n
		}
	}
	if m := peoplePattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			prefs.People = n
		}
	}

	var mealTypes []planner.MealType
	for _, mt := range planner.GenerationMealTypes {
		if strings.Contains(lower, string(mt)) {
			mealTypes = append(mealTypes, mt)
		}
	}
	if len(mealTypes) > 0 {
		prefs.SelectedMealTypes = mealTypes
	}

	return prefs
}

func formatPlanMarkdown(plan planner.GeneratedPlan, mealTypes []planner.MealType, titles map[string]string) string {
	var sb strings.Builder
	sb.WriteString("📅 *Meal Plan*\n\n")

	for _, date := range plan.SortedDates() {
		sb.WriteString(fmt.Sprintf("*%s*\n", date))
		for _, mt := range mealTypes {
			items := plan[date][mt]
			if len(items) == 0 {
				sb.WriteString(fmt.Sprintf("  %s: _nothing planned_\n", mt))
				continue
			}
			var names []string
			for _, item := range items {
				title, ok := titles[item.RecipeID]
				if !ok {
					title = item.RecipeID
				}
				names = append(names, title)
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", mt, strings.Join(names, " + ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.cfg.AdminTelegramID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}
