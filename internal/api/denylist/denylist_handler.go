package denylist

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rfxxfy/TripAdviserBot/app/observability/metrics"
	"github.com/rfxxfy/TripAdviserBot/internal/api"
)

type HandlerImpl struct {
	denylistService Service
	logger          *slog.Logger
}

func NewHandlerImpl(denylistService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		denylistService: denylistService,
		logger:          logger,
	}
}

type reportRequest struct {
	Name string `json:"name"`
}

// ReportPOI records a user-reported bad place so discovery stops suggesting it.
func (h *HandlerImpl) ReportPOI(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "ReportPOI"))

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Name is required")
		return
	}

	metrics.CountDenylistReport(r.Context())
	if err := h.denylistService.Report(r.Context(), req.Name); err != nil {
		l.ErrorContext(r.Context(), "Failed to report POI", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save report")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
