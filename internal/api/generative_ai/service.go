package generativeAI

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// AIClient wraps the hosted LLM completion capability.
type AIClient struct {
	client *genai.Client
	model  string
}

func NewAIClient(ctx context.Context, model string) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &AIClient{
		client: client,
		model:  model,
	}, nil
}

// GenerateContent sends one prompt and returns the completion text.
// A blank completion is reported as ErrEmptyCompletion so callers can treat
// it like any other provider failure.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	metrics.CountExternalRequest(ctx, "gemini")

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", types.ErrEmptyCompletion
	}
	return text, nil
}
