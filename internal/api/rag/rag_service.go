package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rfxxfy/TripAdviserBot/internal/api/discovery"
	"github.com/rfxxfy/TripAdviserBot/internal/api/routing"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

const (
	// NoPOIsMessage is returned when nothing of interest is found nearby.
	NoPOIsMessage = "В радиусе поиска не найдено интересных объектов по заданным предпочтениям."

	contextHeader  = "Найденные места:"
	maxContextPOIs = 20

	// Distance lookups are independent read-only queries, so they run
	// concurrently with a small bound to stay polite to the router.
	distanceLookupConcurrency = 5

	// DefaultPreference is used when the user picked no categories.
	DefaultPreference = "достопримечательности"
)

// preferenceMap maps user preference labels to OSM tag filters.
var preferenceMap = map[string]types.TagPair{
	"музеи":                 {Key: "tourism", Value: "museum"},
	"парки":                 {Key: "leisure", Value: "park"},
	"рестораны":             {Key: "amenity", Value: "restaurant"},
	"кафе":                  {Key: "amenity", Value: "cafe"},
	"кофейни":               {Key: "amenity", Value: "cafe"},
	"магазины":              {Key: "shop", Value: "supermarket"},
	"отели":                 {Key: "tourism", Value: "hotel"},
	"достопримечательности": {Key: "tourism", Value: "attraction"},
	"итальянская":           {Key: "cuisine", Value: "italian"},
	"русская":               {Key: "cuisine", Value: "russian"},
	"азиатская":             {Key: "cuisine", Value: "asian"},
	"фастфуд":               {Key: "cuisine", Value: "fast_food"},
	"вегетарианская":        {Key: "cuisine", Value: "vegetarian"},
	"десерты":               {Key: "cuisine", Value: "dessert"},
}

// TagForPreference returns the OSM filter for a preference label, defaulting
// to generic attractions for unknown labels.
func TagForPreference(pref string) types.TagPair {
	if tag, ok := preferenceMap[strings.ToLower(strings.TrimSpace(pref))]; ok {
		return tag
	}
	return types.TagPair{Key: "tourism", Value: "attraction"}
}

var _ Service = (*ServiceImpl)(nil)

// Service assembles the retrieval context handed to the LLM prompt.
type Service interface {
	FindPOIs(ctx context.Context, center types.Coordinate, preferences []string) ([]types.POICandidate, error)
	BuildContext(ctx context.Context, pois []types.POICandidate, origin types.Coordinate) string
	RetrieveDocuments(ctx context.Context, center types.Coordinate, preferences []string) string
}

type ServiceImpl struct {
	logger    *slog.Logger
	discovery discovery.Service
	routing   routing.Service
	limit     int
}

// NewServiceImpl builds the retrieval service. limit caps candidates per
// preference category; non-positive values fall back to discovery.DefaultLimit.
func NewServiceImpl(discoverySvc discovery.Service, routingSvc routing.Service, limit int, logger *slog.Logger) *ServiceImpl {
	if limit <= 0 {
		limit = discovery.DefaultLimit
	}
	return &ServiceImpl{
		logger:    logger,
		discovery: discoverySvc,
		routing:   routingSvc,
		limit:     limit,
	}
}

// FindPOIs collects ranked candidates for every preference category and
// deduplicates them across categories by lowercased name, first wins.
func (s *ServiceImpl) FindPOIs(ctx context.Context, center types.Coordinate, preferences []string) ([]types.POICandidate, error) {
	prefs := preferences
	if len(prefs) == 0 {
		prefs = []string{DefaultPreference}
	}

	var all []types.POICandidate
	var lastErr error
	for _, pref := range prefs {
		candidates, err := s.discovery.FindPopularPOIs(ctx, center, TagForPreference(pref), s.limit)
		if err != nil {
			lastErr = err
			s.logger.WarnContext(ctx, "POI discovery failed for preference",
				slog.String("preference", pref), slog.Any("error", err))
			continue
		}
		all = append(all, candidates...)
	}
	if all == nil && lastErr != nil {
		return nil, lastErr
	}

	seen := make(map[string]struct{}, len(all))
	unique := make([]types.POICandidate, 0, len(all))
	for _, c := range all {
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
	}
	return unique, nil
}

// BuildContext renders ranked candidates into the numbered text block embedded
// in the LLM prompt. Walking distances are fetched concurrently but rendered
// in candidate order; an unavailable route degrades the line instead of
// failing the whole block.
func (s *ServiceImpl) BuildContext(ctx context.Context, pois []types.POICandidate, origin types.Coordinate) string {
	ctx, span := otel.Tracer("RAGService").Start(ctx, "BuildContext", trace.WithAttributes(
		attribute.Int("poi.count", len(pois)),
	))
	defer span.End()

	if len(pois) == 0 {
		span.SetStatus(codes.Ok, "No POIs")
		return NoPOIsMessage
	}

	if len(pois) > maxContextPOIs {
		pois = pois[:maxContextPOIs]
	}

	lines := make([]string, len(pois))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(distanceLookupConcurrency)
	for i, poi := range pois {
		g.Go(func() error {
			info := "маршрут не найден"
			if summary, ok := s.routing.Distance(gctx, origin, poi.Coordinate); ok {
				info = fmt.Sprintf("%.1f км, ~%.0f мин", summary.DistanceMeters/1000, summary.DurationSeconds/60)
			}
			lines[i] = fmt.Sprintf("%d. %s — %s", i+1, poi.Name, info)
			return nil
		})
	}
	_ = g.Wait() // Distance never returns an error.

	span.SetStatus(codes.Ok, "Context built")
	return contextHeader + "\n" + strings.Join(lines, "\n")
}

// RetrieveDocuments runs discovery and context building for a resolved center.
func (s *ServiceImpl) RetrieveDocuments(ctx context.Context, center types.Coordinate, preferences []string) string {
	pois, err := s.FindPOIs(ctx, center, preferences)
	if err != nil {
		s.logger.WarnContext(ctx, "POI retrieval degraded to empty context", slog.Any("error", err))
		return NoPOIsMessage
	}
	return s.BuildContext(ctx, pois, center)
}
