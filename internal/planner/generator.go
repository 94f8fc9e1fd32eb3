package planner

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"meal-planner/internal/llm"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shared"
)

const (
	defaultMaxRetries = 3
	rateLimitBackoff  = 2 * time.Second
	retryBackoff      = 1 * time.Second
)

// defaultModels is the fixed fallback list tried in order on every retry
// pass: the primary large model first, then smaller and faster ones.
var defaultModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"gemma2-9b-it",
}

// Generator owns the plan-generation pipeline: prompt building, the
// cross-model/cross-retry call loop, response repair and both validation
// stages. The model list, retry budget, sleep and clock are injectable so
// the retry policy is testable without a network.
type Generator struct {
	textGen    llm.ModelTextGenerator
	models     []string
	maxRetries int
	dayOffset  int
	sleep      func(time.Duration)
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithModels replaces the model fallback list.
func WithModels(models ...string) Option {
	return func(g *Generator) { g.models = models }
}

// WithMaxRetries sets the number of retry passes over the model list.
func WithMaxRetries(n int) Option {
	return func(g *Generator) { g.maxRetries = n }
}

// WithDayOffset shifts the plan's start date forward from today.
func WithDayOffset(days int) Option {
	return func(g *Generator) { g.dayOffset = days }
}

// WithSleep replaces the backoff sleep function.
func WithSleep(fn func(time.Duration)) Option {
	return func(g *Generator) { g.sleep = fn }
}

// WithClock replaces the time source.
func WithClock(fn func() time.Time) Option {
	return func(g *Generator) { g.now = fn }
}

// NewGenerator creates a Generator with the default Groq model list.
func NewGenerator(textGen llm.ModelTextGenerator, opts ...Option) *Generator {
	g := &Generator{
		textGen:    textGen,
		models:     defaultModels,
		maxRetries: defaultMaxRetries,
		sleep:      time.Sleep,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePlan runs the full pipeline for one request and returns either a
// validated, complete plan or an error. Transient upstream failures are
// absorbed by the retry loop; only request validation problems and final
// exhaustion surface to the caller.
func (g *Generator) GeneratePlan(
	ctx context.Context,
	favorites []recipe.Recipe,
	prefs Preferences,
) (*Result, []shared.AgentMeta, error) {
	if err := validateRequest(favorites, prefs); err != nil {
		return nil, nil, err
	}

	buckets := Categorize(favorites)
	if buckets.Excluded > 0 {
		log.Printf("Warning: %d favorite recipe(s) carry no meal-type tag and were excluded from generation", buckets.Excluded)
	}

	startDate := g.now().AddDate(0, 0, g.dayOffset)
	prompt, err := BuildPrompt(buckets, prefs, startDate)
	if err != nil {
		return nil, nil, err
	}

	recipesByID := recipe.ByID(favorites)
	batch, metas := g.generateBatch(ctx, prompt, recipesByID, prefs.SelectedMealTypes)
	if batch == nil {
		return nil, metas, ErrGenerationExhausted
	}

	final := Finalize(batch, recipesByID, prefs.SelectedMealTypes, prefs.Duration)
	if final == nil {
		return nil, metas, ErrGenerationExhausted
	}

	return &Result{MealPlan: final, Source: "groq"}, metas, nil
}

// generateBatch walks the (retry, model) attempt sequence. The first
// response that survives repair and batch validation wins; there is no
// comparison or merging across models. Exhaustion returns nil.
func (g *Generator) generateBatch(
	ctx context.Context,
	prompt string,
	recipes map[string]recipe.Recipe,
	mealTypes []MealType,
) (GeneratedPlan, []shared.AgentMeta) {
	var metas []shared.AgentMeta

	for retry := 0; retry < g.maxRetries; retry++ {
		for i, model := range g.models {
			start := time.Now()
			resp, err := g.textGen.GenerateWithModel(ctx, model, prompt)

			meta := shared.AgentMeta{
				AgentName: "PlanGenerator",
				Usage:     resp.Usage,
				Latency:   time.Since(start),
				Attempt:   retry,
			}
			if meta.Usage.Model == "" {
				meta.Usage.Model = model
			}
			metas = append(metas, meta)

			if errors.Is(err, llm.ErrRateLimited) {
				log.Printf("Model %s rate limited (retry %d), backing off", model, retry)
				if i < len(g.models)-1 {
					g.sleep(rateLimitBackoff)
				}
				continue
			}
			if err != nil {
				log.Printf("Model %s failed (retry %d): %v", model, retry, err)
				continue
			}
			if strings.TrimSpace(resp.Content) == "" {
				continue
			}

			parsed, ok := ParseResponse(resp.Content)
			if !ok {
				log.Printf("Model %s returned unparseable plan (retry %d)", model, retry)
				continue
			}

			if plan := ValidateBatch(parsed, recipes, mealTypes); plan != nil {
				return plan, metas
			}
		}

		if retry < g.maxRetries-1 {
			g.sleep(retryBackoff)
		}
	}

	return nil, metas
}

func validateRequest(favorites []recipe.Recipe, prefs Preferences) error {
	if len(favorites) == 0 {
		return &ValidationError{Field: "favorites", Reason: "must not be empty"}
	}
	if prefs.Duration < 1 {
		return &ValidationError{Field: "duration", Reason: "must be at least 1 day"}
	}
	if prefs.People < 1 {
		return &ValidationError{Field: "people", Reason: "must be at least 1"}
	}
	if len(prefs.SelectedMealTypes) == 0 {
		return &ValidationError{Field: "selectedMealTypes", Reason: "must not be empty"}
	}
	for _, mt := range prefs.SelectedMealTypes {
		if !KnownMealType(mt) {
			return &ValidationError{Field: "selectedMealTypes", Reason: "unknown meal type " + string(mt)}
		}
	}
	return nil
}
