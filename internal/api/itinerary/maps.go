package itinerary

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// Transport modes understood by the map-link format.
const (
	transportTransit = "mt"
	transportWalking = "tt"

	// Above this summed geodesic distance a day is too long to walk.
	walkingLimitKm = 4.0
)

// DetermineTransportType picks the link mode from the summed consecutive-point
// geodesic distance of a day's coordinates.
func DetermineTransportType(coords []types.Coordinate) string {
	if len(coords) < 2 {
		return transportWalking
	}
	var totalKm float64
	for i := 0; i < len(coords)-1; i++ {
		totalKm += coords[i].DistanceKm(coords[i+1])
	}
	if totalKm > walkingLimitKm {
		return transportTransit
	}
	return transportWalking
}

// GenerateMapLink builds a route link through the given coordinates. The
// points travel in the rtext parameter as lat,lon pairs joined by "~".
func GenerateMapLink(coords []types.Coordinate) string {
	if len(coords) < 2 {
		return ""
	}
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("%g,%g", c.Lat, c.Lon)
	}
	return fmt.Sprintf("https://yandex.ru/maps/?mode=routes&rtext=%s&rtt=%s",
		strings.Join(parts, "~"), DetermineTransportType(coords))
}

// GenerateMapLinkFromNames builds a route link from textual place names,
// anchored at start when provided.
func GenerateMapLinkFromNames(names []string, start *types.Coordinate) string {
	var parts []string
	if start != nil {
		parts = append(parts, fmt.Sprintf("%g,%g", start.Lat, start.Lon))
	}
	for _, name := range names {
		parts = append(parts, url.QueryEscape(name))
	}
	return fmt.Sprintf("https://yandex.ru/maps/?rtext=%s&rtt=%s",
		strings.Join(parts, "~"), transportWalking)
}

var coordGroupPattern = regexp.MustCompile(`\(\s*(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)\)`)

// ExtractCoordinateGroups pulls every "(lat, lon)" group out of text.
func ExtractCoordinateGroups(text string) []types.Coordinate {
	matches := coordGroupPattern.FindAllStringSubmatch(text, -1)
	coords := make([]types.Coordinate, 0, len(matches))
	for _, m := range matches {
		coord, err := types.ParseCoordinate(m[1] + "," + m[2])
		if err != nil {
			continue
		}
		coords = append(coords, coord)
	}
	return coords
}

var coordLinePattern = regexp.MustCompile(`(?im)^\s*Координаты:.*$\n?`)

// StripCoordinateLines removes raw "Координаты: ..." annotation lines from the
// user-visible text.
func StripCoordinateLines(text string) string {
	return strings.TrimSpace(coordLinePattern.ReplaceAllString(text, ""))
}
