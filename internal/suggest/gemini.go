package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"budget/internal/core"
)

// Gemini suggests categories using the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(50)

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// Suggest asks the model to pick one of the known categories. Any reply
// outside the known set, and any API failure, degrades to
// core.Uncategorized; the caller never has to special-case oracle errors.
func (g *Gemini) Suggest(ctx context.Context, description string, amount core.Money, known []string) (string, error) {
	prompt := fmt.Sprintf(
		"As a financial expert, categorize this transaction. Choose from the existing categories "+
			"or suggest 'Uncategorized' if none fit well. Respond with ONLY the category name, nothing else.\n\n"+
			"Transaction Description: %s\nAmount: $%s\nAvailable Categories: %s",
		description, amount.Display(), strings.Join(known, ", "))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.WarnContext(ctx, "gemini suggestion failed", "description", description, "error", err)
		return core.Uncategorized, nil
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return core.Uncategorized, nil
	}

	suggested := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	for _, category := range known {
		if suggested == category {
			return suggested, nil
		}
	}
	return core.Uncategorized, nil
}
