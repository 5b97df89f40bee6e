package itinerary

import (
	"context"
	"log/slog"

	"google.golang.org/genai"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// Completer is the external LLM completion capability.
type Completer interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ Validator = (*ValidatorImpl)(nil)

// Validator refines raw LLM output into format-compliant itinerary text and
// rejects output that cannot be brought into shape.
type Validator interface {
	Validate(ctx context.Context, routeText string, budget float64, days int, city, country string, cityCenter types.Coordinate) string
}

type ValidatorImpl struct {
	logger      *slog.Logger
	ai          Completer
	enricher    Enricher
	temperature float32
	maxTokens   int32
}

func NewValidatorImpl(ai Completer, enricher Enricher, temperature float32, maxTokens int32, logger *slog.Logger) *ValidatorImpl {
	return &ValidatorImpl{
		logger:      logger,
		ai:          ai,
		enricher:    enricher,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Validate sends the generated route back to the LLM with a stricter
// refinement prompt, checks that every day block carries at least one address
// line, and hands compliant text to the enricher. Any failure collapses into
// a fixed diagnostic string.
func (v *ValidatorImpl) Validate(ctx context.Context, routeText string, budget float64, days int, city, country string, cityCenter types.Coordinate) string {
	prompt := buildValidationPrompt(routeText, budget, days)
	refined, err := v.ai.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: validationRole}}},
		Temperature:       genai.Ptr[float32](v.temperature),
		MaxOutputTokens:   v.maxTokens,
	})
	if err != nil {
		v.logger.ErrorContext(ctx, "Route refinement call failed", slog.Any("error", err))
		return GenerationErrorMessage
	}
	refined = stripMarkdown(refined)

	if err := checkDayBlocks(refined); err != nil {
		v.logger.WarnContext(ctx, "Refined route failed format check", slog.Any("error", err))
		return ValidationErrorMessage
	}

	return v.enricher.Enrich(ctx, refined, city, country, cityCenter)
}

// checkDayBlocks requires an "Адрес:" line in every День block. One
// non-compliant day fails the whole text.
func checkDayBlocks(text string) error {
	blocks := splitDayBlocks(text)
	if len(blocks) == 0 {
		return types.ErrFormatViolation
	}
	for _, block := range blocks {
		if !addressLinePattern.MatchString(block.Body) {
			return types.ErrFormatViolation
		}
	}
	return nil
}
