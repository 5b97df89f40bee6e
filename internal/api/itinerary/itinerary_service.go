package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/api/geo"
	"github.com/rfxxfy/TripAdviserBot/internal/api/rag"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

const (
	defaultMaxDays = 7
	// Budget values above this are treated as typos and clamped.
	defaultMaxBudget = 1_000_000
)

// Limits caps user-controlled trip parameters and the retrieval context
// embedded in the prompt. Zero fields fall back to the package defaults.
type Limits struct {
	MaxDays         int
	MaxBudget       float64
	ContextMaxChars int
}

func (l Limits) withDefaults() Limits {
	if l.MaxDays <= 0 {
		l.MaxDays = defaultMaxDays
	}
	if l.MaxBudget <= 0 {
		l.MaxBudget = defaultMaxBudget
	}
	if l.ContextMaxChars <= 0 {
		l.ContextMaxChars = defaultContextMaxChars
	}
	return l
}

var _ Service = (*ServiceImpl)(nil)

// Service runs the whole itinerary pipeline for one trip request.
type Service interface {
	GenerateRoute(ctx context.Context, req types.TripRequest) (string, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	geoSvc      geo.Service
	ragSvc      rag.Service
	ai          Completer
	validator   Validator
	temperature float32
	maxTokens   int32
	limits      Limits
}

func NewServiceImpl(geoSvc geo.Service, ragSvc rag.Service, ai Completer, validator Validator, temperature float32, maxTokens int32, limits Limits, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		geoSvc:      geoSvc,
		ragSvc:      ragSvc,
		ai:          ai,
		validator:   validator,
		temperature: temperature,
		maxTokens:   maxTokens,
		limits:      limits.withDefaults(),
	}
}

// GenerateRoute resolves the origin, retrieves POI context, asks the LLM for
// an itinerary and pushes it through refinement and enrichment. Location
// errors are returned for the caller to surface as corrective prompts; every
// other failure degrades into a fixed user-readable string.
func (s *ServiceImpl) GenerateRoute(ctx context.Context, req types.TripRequest) (string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateRoute", trace.WithAttributes(
		attribute.String("trip.origin", req.Origin),
		attribute.Int("trip.days", req.Days),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.ObserveGenerationDuration(ctx, time.Since(start))
	}()

	req = clampRequest(req, s.limits)

	origin, err := s.geoSvc.Resolve(ctx, req.Origin)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("resolving origin %q: %w", req.Origin, err)
	}

	city, country := s.geoSvc.ResolveCityCountry(ctx, origin)
	retrievedDocs := s.ragSvc.RetrieveDocuments(ctx, origin, req.Preferences)

	prompt := buildRoutePrompt(req, city, country, retrievedDocs, s.limits.ContextMaxChars)
	raw, err := s.ai.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemRole}}},
		Temperature:       genai.Ptr[float32](s.temperature),
		MaxOutputTokens:   s.maxTokens,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Route generation call failed", slog.Any("error", err))
		span.RecordError(err)
		return GenerationErrorMessage, nil
	}
	raw = stripMarkdown(raw)

	result := s.validator.Validate(ctx, raw, req.Budget, req.Days, city, country, origin)
	span.SetStatus(codes.Ok, "Route generated")
	return result, nil
}

// clampRequest normalizes out-of-range trip parameters instead of rejecting
// them; the conversation layer already constrains most of this.
func clampRequest(req types.TripRequest, limits Limits) types.TripRequest {
	if req.Days < 1 {
		req.Days = 1
	}
	if req.Days > limits.MaxDays {
		req.Days = limits.MaxDays
	}
	if req.Budget < 0 {
		req.Budget = 0
	}
	if req.Budget > limits.MaxBudget {
		req.Budget = limits.MaxBudget
	}
	return req
}
