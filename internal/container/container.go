package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/rfxxfy/TripAdviserBot/app/db"
	"github.com/rfxxfy/TripAdviserBot/config"
	"github.com/rfxxfy/TripAdviserBot/internal/api/denylist"
	"github.com/rfxxfy/TripAdviserBot/internal/api/discovery"
	generativeAI "github.com/rfxxfy/TripAdviserBot/internal/api/generative_ai"
	"github.com/rfxxfy/TripAdviserBot/internal/api/geo"
	"github.com/rfxxfy/TripAdviserBot/internal/api/itinerary"
	"github.com/rfxxfy/TripAdviserBot/internal/api/rag"
	"github.com/rfxxfy/TripAdviserBot/internal/api/routing"
	"github.com/rfxxfy/TripAdviserBot/internal/clients"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	ItineraryHandler *itinerary.HandlerImpl
	DenylistHandler  *denylist.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	// External API clients
	nominatimClient := clients.NewNominatimClient(
		cfg.Services.Nominatim.BaseURL,
		cfg.Services.Nominatim.UserAgent,
		cfg.Services.Nominatim.Timeout,
	)
	osrmClient := clients.NewOSRMClient(
		cfg.Services.OSRM.BaseURL,
		cfg.Services.OSRM.Profile,
		cfg.Services.OSRM.Timeout,
	)
	overpassClient := clients.NewOverpassClient(
		cfg.Services.Overpass.BaseURL,
		cfg.Services.Overpass.Timeout,
	)
	yandexClient := clients.NewYandexGeocoderClient(
		cfg.Services.Yandex.BaseURL,
		os.Getenv("YANDEX_GEOCODER_API_KEY"),
		cfg.Services.Yandex.Timeout,
	)

	aiClient, err := generativeAI.NewAIClient(ctx, cfg.LLM.Model)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		return nil, err
	}

	// Repositories and services
	denylistRepo := denylist.NewRepository(pool, logger)
	denylistService, err := denylist.NewServiceImpl(ctx, denylistRepo, logger)
	if err != nil {
		logger.Error("Failed to load POI denylist", slog.Any("error", err))
		return nil, err
	}
	denylistHandler := denylist.NewHandlerImpl(denylistService, logger)

	geoService := geo.NewServiceImpl(nominatimClient, logger)
	discoveryService := discovery.NewServiceImpl(overpassClient, denylistService, discovery.Config{
		InitialRadiusMeters: cfg.Discovery.InitialRadiusMeters,
		RadiusStepMeters:    cfg.Discovery.RadiusStepMeters,
		MaxRadiusMeters:     cfg.Discovery.MaxRadiusMeters,
		Limit:               cfg.Discovery.POILimit,
	}, logger)
	routingService := routing.NewServiceImpl(osrmClient, logger)
	ragService := rag.NewServiceImpl(discoveryService, routingService, cfg.Discovery.POILimit, logger)

	enricher := itinerary.NewEnricherImpl(yandexClient, logger)
	validator := itinerary.NewValidatorImpl(aiClient, enricher, cfg.LLM.ValidationTemperature, cfg.LLM.MaxTokens, logger)
	itineraryService := itinerary.NewServiceImpl(geoService, ragService, aiClient, validator, cfg.LLM.Temperature, cfg.LLM.MaxTokens, itinerary.Limits{
		MaxDays:         cfg.Discovery.MaxDays,
		MaxBudget:       cfg.Discovery.MaxBudget,
		ContextMaxChars: cfg.Discovery.ContextMaxChars,
	}, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		ItineraryHandler: itineraryHandler,
		DenylistHandler:  denylistHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
