package discovery

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rfxxfy/TripAdviserBot/internal/clients"
	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

const (
	// DefaultLimit is the requested candidate count per category.
	DefaultLimit = 20

	defaultInitialRadiusMeters = 1000
	defaultRadiusStepMeters    = 1000
	defaultMaxRadiusMeters     = 5000

	// One radius pass fetches up to this multiple of the limit so scoring
	// has enough raw material to pick from.
	fetchMultiplier = 3
)

// Config tunes the radius expansion. Zero fields fall back to the package
// defaults.
type Config struct {
	InitialRadiusMeters int
	RadiusStepMeters    int
	MaxRadiusMeters     int
	Limit               int
}

func (c Config) withDefaults() Config {
	if c.InitialRadiusMeters <= 0 {
		c.InitialRadiusMeters = defaultInitialRadiusMeters
	}
	if c.RadiusStepMeters <= 0 {
		c.RadiusStepMeters = defaultRadiusStepMeters
	}
	if c.MaxRadiusMeters <= 0 {
		c.MaxRadiusMeters = defaultMaxRadiusMeters
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	return c
}

// POISource is the external Overpass-like search dependency.
type POISource interface {
	SearchInRadius(ctx context.Context, center types.Coordinate, radiusMeters int, tag types.TagPair, limit int) ([]clients.OverpassElement, error)
}

// Denylist answers whether a lowercased place name was reported as bad.
type Denylist interface {
	Contains(name string) bool
}

var _ Service = (*ServiceImpl)(nil)

// Service discovers and ranks points of interest around a coordinate.
type Service interface {
	Search(ctx context.Context, center types.Coordinate, tag types.TagPair, radiusMeters int) ([]types.POICandidate, error)
	FindPopularPOIs(ctx context.Context, center types.Coordinate, tag types.TagPair, limit int) ([]types.POICandidate, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	source   POISource
	denylist Denylist
	cfg      Config
}

func NewServiceImpl(source POISource, denylist Denylist, cfg Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		source:   source,
		denylist: denylist,
		cfg:      cfg.withDefaults(),
	}
}

// Search issues a single radius query and returns scored, deduplicated
// candidates ranked by notability, at most the configured limit of them.
func (s *ServiceImpl) Search(ctx context.Context, center types.Coordinate, tag types.TagPair, radiusMeters int) ([]types.POICandidate, error) {
	return s.searchPass(ctx, center, tag, radiusMeters, s.cfg.Limit)
}

// FindPopularPOIs expands the search radius in fixed steps until enough
// candidates accumulate or the maximum radius is reached. Every pass
// re-queries and re-ranks from scratch so a wider pass may re-rank candidates
// already seen in a narrower one.
func (s *ServiceImpl) FindPopularPOIs(ctx context.Context, center types.Coordinate, tag types.TagPair, limit int) ([]types.POICandidate, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "FindPopularPOIs", trace.WithAttributes(
		attribute.String("poi.tag", tag.Key+"="+tag.Value),
		attribute.Int("poi.limit", limit),
	))
	defer span.End()

	if limit <= 0 {
		limit = s.cfg.Limit
	}

	var (
		result  []types.POICandidate
		lastErr error
	)
	for radius := s.cfg.InitialRadiusMeters; radius <= s.cfg.MaxRadiusMeters; radius += s.cfg.RadiusStepMeters {
		candidates, err := s.searchPass(ctx, center, tag, radius, limit)
		if err != nil {
			lastErr = err
			s.logger.WarnContext(ctx, "Discovery pass failed",
				slog.Int("radius_m", radius), slog.Any("error", err))
			continue
		}
		result = candidates
		if len(result) >= limit {
			span.SetAttributes(attribute.Int("poi.final_radius_m", radius))
			break
		}
	}

	if result == nil && lastErr != nil {
		span.RecordError(lastErr)
		return nil, lastErr
	}
	span.SetStatus(codes.Ok, "POIs discovered")
	span.SetAttributes(attribute.Int("poi.count", len(result)))
	return result, nil
}

// searchPass fetches raw elements for one radius and turns them into ranked
// candidates: denylisted and unnamed entries dropped, notability scored,
// stable-sorted descending, lowercase-name dedup with first occurrence
// winning, sliced to limit.
func (s *ServiceImpl) searchPass(ctx context.Context, center types.Coordinate, tag types.TagPair, radiusMeters, limit int) ([]types.POICandidate, error) {
	elements, err := s.source.SearchInRadius(ctx, center, radiusMeters, tag, limit*fetchMultiplier)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.POICandidate, 0, len(elements))
	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		if s.denylist != nil && s.denylist.Contains(strings.ToLower(name)) {
			continue
		}
		candidates = append(candidates, types.POICandidate{
			Name:       name,
			Coordinate: el.Coordinate(),
			Tags:       el.Tags,
			Score:      scoreElement(el.Tags),
		})
	}

	// Stable keeps discovery order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	seen := make(map[string]struct{}, len(candidates))
	unique := make([]types.POICandidate, 0, len(candidates))
	for _, c := range candidates {
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
		if len(unique) == limit {
			break
		}
	}
	return unique, nil
}

// scoreElement derives a notability score from OSM tags. Each matched signal
// only ever adds to the score.
func scoreElement(tags map[string]string) int {
	score := 1
	if tags["wikidata"] != "" {
		score += 5
	}
	if tags["historic"] != "" {
		score += 2
	}
	if tags["addr:street"] != "" {
		score++
	}
	return score
}
