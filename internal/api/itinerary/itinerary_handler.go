package itinerary

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rfxxfy/TripAdviserBot/internal/api"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

type HandlerImpl struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// GenerateItinerary runs the itinerary pipeline for one trip request.
func (h *HandlerImpl) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	var req types.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Origin == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, LocationErrorMessage)
		return
	}

	itinerary, err := h.itineraryService.GenerateRoute(ctx, req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, types.ErrInvalidCoordinate) || errors.Is(err, types.ErrLocationNotFound) {
			api.ErrorResponse(w, r, http.StatusBadRequest, LocationErrorMessage)
			return
		}
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, GenerationErrorMessage)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"itinerary": itinerary})
}
