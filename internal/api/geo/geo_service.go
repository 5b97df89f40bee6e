package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

const (
	geocodeAttempts = 3
	geocodeBackoff  = 500 * time.Millisecond
)

// Geocoder is the external forward/reverse geocoding dependency.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Coordinate, error)
	ReverseGeocode(ctx context.Context, coord types.Coordinate) (city, country string, err error)
}

var _ Service = (*ServiceImpl)(nil)

// Service resolves free-text or coordinate input to geographic coordinates.
type Service interface {
	Resolve(ctx context.Context, text string) (types.Coordinate, error)
	ResolveCityCountry(ctx context.Context, coord types.Coordinate) (city, country string)
}

type ServiceImpl struct {
	logger   *slog.Logger
	geocoder Geocoder
	cache    *cache.Cache
}

func NewServiceImpl(geocoder Geocoder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		geocoder: geocoder,
		cache:    cache.New(cache.NoExpiration, 0),
	}
}

// Resolve turns a place name or raw "lat,lon" string into a coordinate.
// Coordinate input is parsed locally and never hits the network; geocoder
// lookups are retried on transient failure and memoized per input string.
func (s *ServiceImpl) Resolve(ctx context.Context, text string) (types.Coordinate, error) {
	ctx, span := otel.Tracer("GeoService").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("geo.query", text),
	))
	defer span.End()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.Coordinate{}, fmt.Errorf("%w: empty input", types.ErrLocationNotFound)
	}

	if types.IsCoordinateString(trimmed) {
		coord, err := types.ParseCoordinate(trimmed)
		if err != nil {
			span.RecordError(err)
			return types.Coordinate{}, err
		}
		span.SetStatus(codes.Ok, "Parsed raw coordinate")
		return coord, nil
	}

	if cached, found := s.cache.Get(cacheKey(trimmed)); found {
		span.SetStatus(codes.Ok, "Cache hit")
		return cached.(types.Coordinate), nil
	}

	var lastErr error
	for attempt := 1; attempt <= geocodeAttempts; attempt++ {
		coord, err := s.geocoder.Geocode(ctx, trimmed)
		if err == nil {
			s.cache.Set(cacheKey(trimmed), coord, cache.NoExpiration)
			span.SetStatus(codes.Ok, "Geocoded")
			return coord, nil
		}
		if errors.Is(err, types.ErrLocationNotFound) {
			// Zero results is a definitive answer, not a transient failure.
			span.RecordError(err)
			return types.Coordinate{}, err
		}
		lastErr = err
		s.logger.WarnContext(ctx, "Geocoding attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("query", trimmed),
			slog.Any("error", err),
		)
		if attempt < geocodeAttempts {
			time.Sleep(geocodeBackoff)
		}
	}

	s.logger.ErrorContext(ctx, "Geocoding failed after retries", slog.String("query", trimmed), slog.Any("error", lastErr))
	span.RecordError(lastErr)
	return types.Coordinate{}, fmt.Errorf("%w: %q", types.ErrLocationNotFound, trimmed)
}

// ResolveCityCountry reverse-geocodes a coordinate for prompt grounding.
// Best-effort: falls back to fixed placeholders instead of failing.
func (s *ServiceImpl) ResolveCityCountry(ctx context.Context, coord types.Coordinate) (string, string) {
	city, country, err := s.geocoder.ReverseGeocode(ctx, coord)
	if err != nil {
		s.logger.WarnContext(ctx, "Reverse geocoding failed, using placeholders",
			slog.String("coord", coord.String()), slog.Any("error", err))
		return "неизвестный город", "неизвестная страна"
	}
	if city == "" {
		city = "неизвестный город"
	}
	if country == "" {
		country = "неизвестная страна"
	}
	return city, country
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(query)
}
