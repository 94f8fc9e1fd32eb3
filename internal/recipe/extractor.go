package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"meal-planner/internal/llm"
	"meal-planner/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// ExtractedIngredient is one ingredient as reported by the extraction model,
// before catalog normalization.
type ExtractedIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Abstract string  `json:"abstract"`
}

// ExtractedRecipe is the structured form the extraction model returns.
type ExtractedRecipe struct {
	Title       string                `json:"title"`
	Tags        []string              `json:"tags"`
	PrepTime    int                   `json:"prep_time"`
	Ingredients []ExtractedIngredient `json:"ingredients"`
	Steps       []string              `json:"steps"`
}

// ExtractorResult bundles the extracted recipe with execution metadata.
type ExtractorResult struct {
	Recipe ExtractedRecipe
	Meta   shared.AgentMeta
}

type extractorPromptData struct {
	Title   string
	Content string
}

// ExtractFromContent asks the LLM to turn cleaned page content into a
// structured recipe draft. The caller normalizes the ingredients against
// the catalog before anything is persisted.
func ExtractFromContent(
	ctx context.Context,
	textGen llm.TextGenerator,
	title, content string,
) (ExtractorResult, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(extractorPromptData{Title: title, Content: content})
	if err != nil {
		return ExtractorResult{}, err
	}

	resp, err := textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ExtractorResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	var extracted ExtractedRecipe
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		return ExtractorResult{
				Meta: shared.AgentMeta{
					AgentName: "Extractor",
					Usage:     resp.Usage,
				},
			}, fmt.Errorf(
				"failed to parse extracted recipe %w. Response: %s",
				err,
				resp.Content,
			)
	}

	return ExtractorResult{
		Recipe: extracted,
		Meta: shared.AgentMeta{
			AgentName: "Extractor",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}, nil
}

func buildExtractorPrompt(data extractorPromptData) (string, error) {
	tmpl, err := template.New("extractor").Parse(extractorPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
