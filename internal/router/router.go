package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/rfxxfy/TripAdviserBot/internal/api/denylist"
	"github.com/rfxxfy/TripAdviserBot/internal/api/itinerary"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ItineraryHandler *itinerary.HandlerImpl
	DenylistHandler  *denylist.HandlerImpl
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/itineraries", cfg.ItineraryHandler.GenerateItinerary)
		r.Post("/pois/report", cfg.DenylistHandler.ReportPOI)
	})

	return r
}
