package clipper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-planner/internal/llm"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// RecipeSaver persists clipped recipes.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// Clipper turns a recipe web page into a stored recipe: it fetches and
// strips the page, runs AI extraction, normalizes every ingredient against
// the catalog and saves the result.
type Clipper struct {
	repo    RecipeSaver
	textGen llm.TextGenerator
}

// NewClipper creates a new Clipper instance.
func NewClipper(repo RecipeSaver, textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		repo:    repo,
		textGen: textGen,
	}
}

// ClipURL fetches the URL, extracts the recipe and saves it for the owner.
func (c *Clipper) ClipURL(ctx context.Context, url, ownerID string) (*recipe.Recipe, shared.AgentMeta, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, shared.AgentMeta{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	result, err := recipe.ExtractFromContent(ctx, c.textGen, url, content)
	if err != nil {
		return nil, result.Meta, fmt.Errorf("ai extraction failed: %w", err)
	}

	rec := recipe.Recipe{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       result.Recipe.Title,
		Tags:        result.Recipe.Tags,
		PrepTime:    result.Recipe.PrepTime,
		Steps:       result.Recipe.Steps,
		Ingredients: recipe.LinesFromExtracted(result.Recipe.Ingredients),
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := c.repo.Save(ctx, rec); err != nil {
		return nil, result.Meta, fmt.Errorf("failed to save clipped recipe: %w", err)
	}

	return &rec, result.Meta, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
