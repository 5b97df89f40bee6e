package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// placeNameOverrides maps known problem places to the literal address that
// geocodes correctly. Matched by case-insensitive substring.
var placeNameOverrides = map[string]string{
	"Ботанический сад Дворца пионеров":           "ул. Косыгина, 17, Москва, 119333",
	"Водный стадион на Химкинском водохранилище": "ул. Правды, 10, Москва, 119100",
}

// cityBounds constrains geocoding queries for cities with well-known extents.
var cityBounds = map[string]types.BoundingBox{
	"Москва":          {MinLon: 37.32, MinLat: 55.55, MaxLon: 37.95, MaxLat: 55.92},
	"Казань":          {MinLon: 48.93, MinLat: 55.70, MaxLon: 49.28, MaxLat: 55.85},
	"Нижний Новгород": {MinLon: 43.85, MinLat: 56.19, MaxLon: 44.21, MaxLat: 56.40},
}

var (
	dayBlockPattern      = regexp.MustCompile(`(День\s+\d+:)`)
	addressLinePattern   = regexp.MustCompile(`(?i)Адрес:\s*(.*)`)
	poiLinePattern       = regexp.MustCompile(`(?m)^\d+\.\s+poi:\s+(.*)`)
	numberedLinePattern  = regexp.MustCompile(`(?m)^\d+\.\s+(.*)`)
	placeVerbPattern     = regexp.MustCompile(`(?i)(?:посетите|направляйтесь|отправляйтесь|прогуляйтесь)\s+(.*?)[.,]`)
	parentheticalPattern = regexp.MustCompile(`\(.*?\)`)
	// \b does not work next to Cyrillic letters, so the leading boundary is
	// spelled out as start-of-string or whitespace.
	distancePhrasePattern = regexp.MustCompile(`(?i)(?:^|\s)в\s+\d+(\.\d+)?\s*(км|метрах?)\s+от\s+\S+`)
)

// PlaceGeocoder is the bounded-region geocoding dependency used to pin
// extracted place names to coordinates.
type PlaceGeocoder interface {
	Geocode(ctx context.Context, query string, bbox *types.BoundingBox) (types.GeocodeResult, error)
}

var _ Enricher = (*EnricherImpl)(nil)

// Enricher parses validated itinerary text into day blocks, geocodes each
// stop and attaches map links.
type Enricher interface {
	Enrich(ctx context.Context, routeText, city, country string, cityCenter types.Coordinate) string
}

type EnricherImpl struct {
	logger   *slog.Logger
	geocoder PlaceGeocoder
}

func NewEnricherImpl(geocoder PlaceGeocoder, logger *slog.Logger) *EnricherImpl {
	return &EnricherImpl{
		logger:   logger,
		geocoder: geocoder,
	}
}

// Enrich rebuilds the itinerary text with one map link per day and one
// overall link. Geocoding failures substitute the city center so every day
// keeps a complete coordinate list; leftover raw coordinate lines are
// stripped from the visible text.
func (e *EnricherImpl) Enrich(ctx context.Context, routeText, city, country string, cityCenter types.Coordinate) string {
	blocks := splitDayBlocks(routeText)
	if len(blocks) == 0 {
		return StripCoordinateLines(routeText)
	}

	var (
		out              strings.Builder
		overallAddresses []string
	)
	for _, block := range blocks {
		addresses := extractDayAddresses(block.Body)
		block.Coordinates = []types.Coordinate{cityCenter}
		if len(addresses) == 0 {
			// Nothing to geocode: fall back to the coordinate groups the
			// model itself emitted for the day.
			block.Coordinates = append(block.Coordinates, ExtractCoordinateGroups(block.Body)...)
		}

		for _, addr := range addresses {
			coord, err := e.resolvePlace(ctx, addr, city, country)
			if err != nil {
				e.logger.InfoContext(ctx, "Place not geocoded, using city center",
					slog.String("place", addr), slog.Any("error", err))
				coord = cityCenter
			}
			block.Coordinates = append(block.Coordinates, coord)
		}

		body := StripCoordinateLines(block.Body)
		if len(block.Coordinates) >= 2 {
			block.MapLink = GenerateMapLink(block.Coordinates)
			body += fmt.Sprintf("\n\nМаршрут дня: %s", block.MapLink)
		}
		overallAddresses = append(overallAddresses, addresses...)

		fmt.Fprintf(&out, "%s\n%s\n\n", block.Title, body)
	}

	overallAddresses = dedupeNames(overallAddresses)
	overallLink := GenerateMapLinkFromNames(overallAddresses, &cityCenter)
	fmt.Fprintf(&out, "Общий маршрут: %s", overallLink)

	return strings.TrimSpace(out.String())
}

// resolvePlace geocodes one extracted place name: override table first, then
// a bounded query, then an unbounded retry when precision is not exact.
func (e *EnricherImpl) resolvePlace(ctx context.Context, name, city, country string) (types.Coordinate, error) {
	query := fmt.Sprintf("%s, %s, %s", name, city, country)
	if override := overrideForName(name); override != "" {
		query = override
	}

	var bbox *types.BoundingBox
	if bounds, ok := cityBounds[city]; ok {
		bbox = &bounds
	}

	result, err := e.geocoder.Geocode(ctx, query, bbox)
	if err != nil {
		return types.Coordinate{}, err
	}

	if bbox != nil && !strings.EqualFold(result.Precision, "exact") {
		// Low precision inside the box: try once more without the
		// bounding constraint and take whatever comes back.
		retry, retryErr := e.geocoder.Geocode(ctx, fmt.Sprintf("%s, %s, %s", name, city, country), nil)
		if retryErr == nil {
			return retry.Coordinate, nil
		}
	}
	return result.Coordinate, nil
}

// splitDayBlocks cuts the text into "День N:" labelled spans.
func splitDayBlocks(text string) []types.DayBlock {
	parts := dayBlockPattern.Split(text, -1)
	titles := dayBlockPattern.FindAllString(text, -1)
	if len(titles) == 0 {
		return nil
	}

	// parts[0] is whatever precedes the first day label.
	blocks := make([]types.DayBlock, 0, len(titles))
	for i, title := range titles {
		body := ""
		if i+1 < len(parts) {
			body = strings.TrimSpace(parts[i+1])
		}
		blocks = append(blocks, types.DayBlock{
			Title: strings.TrimSpace(title),
			Body:  body,
		})
	}
	return blocks
}

// extractDayAddresses pulls place identifiers out of one day body with a
// three-tier fallback: explicit address lines, then poi-prefixed lines, then
// a verb heuristic over numbered lines. The result is deduplicated
// case-insensitively preserving order.
func extractDayAddresses(body string) []string {
	var addresses []string

	for _, m := range addressLinePattern.FindAllStringSubmatch(body, -1) {
		if addr := strings.TrimSpace(m[1]); addr != "" {
			addresses = append(addresses, addr)
		}
	}

	if len(addresses) == 0 {
		for _, m := range poiLinePattern.FindAllStringSubmatch(body, -1) {
			if name := cleanPlaceName(m[1]); name != "" {
				addresses = append(addresses, name)
			}
		}
	}

	if len(addresses) == 0 {
		for _, m := range numberedLinePattern.FindAllStringSubmatch(body, -1) {
			if name := extractPlaceNameFromLine(m[1]); name != "" {
				addresses = append(addresses, name)
			}
		}
	}

	return dedupeNames(addresses)
}

// cleanPlaceName strips parentheticals, trailing distance phrases and
// anything after the first period or comma from a raw itinerary line.
func cleanPlaceName(raw string) string {
	name := raw
	if idx := strings.IndexAny(name, ".,"); idx >= 0 {
		name = name[:idx]
	}
	name = parentheticalPattern.ReplaceAllString(name, "")
	name = distancePhrasePattern.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// extractPlaceNameFromLine heuristically finds a place phrase after a
// movement verb, defaulting to the text up to the first period.
func extractPlaceNameFromLine(line string) string {
	if m := placeVerbPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	head, _, _ := strings.Cut(line, ".")
	return strings.TrimSpace(head)
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, name)
	}
	return result
}

func overrideForName(name string) string {
	lower := strings.ToLower(name)
	for key, override := range placeNameOverrides {
		if strings.Contains(lower, strings.ToLower(key)) {
			return override
		}
	}
	return ""
}
