package types

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Coordinate is a WGS 84 (latitude, longitude) pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// coordinatePattern matches a strict "lat,lon" or "lat lon" decimal pair.
var coordinatePattern = regexp.MustCompile(`^-?\d+(\.\d+)?[,\s]+-?\d+(\.\d+)?$`)

// IsCoordinateString reports whether text looks like a raw coordinate pair.
func IsCoordinateString(text string) bool {
	return coordinatePattern.MatchString(strings.TrimSpace(text))
}

// ParseCoordinate parses a strict "lat,lon" pair and validates the ranges.
// Returns ErrInvalidCoordinate for malformed or out-of-range input.
func ParseCoordinate(text string) (Coordinate, error) {
	trimmed := strings.TrimSpace(text)
	if !coordinatePattern.MatchString(trimmed) {
		return Coordinate{}, fmt.Errorf("%w: %q is not a lat,lon pair", ErrInvalidCoordinate, text)
	}
	parts := regexp.MustCompile(`[,\s]+`).Split(trimmed, 2)
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}
	coord := Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return Coordinate{}, fmt.Errorf("%w: %.4f,%.4f out of range", ErrInvalidCoordinate, lat, lon)
	}
	return coord, nil
}

// Valid reports whether the coordinate lies within WGS 84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String formats the coordinate as "lat,lon" with six decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance to other in kilometers.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	dLat := toRad(other.Lat - c.Lat)
	dLon := toRad(other.Lon - c.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(c.Lat))*math.Cos(toRad(other.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// BoundingBox is a geographic box: lower-left and upper-right corners.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// TagPair is an OSM key/value filter, e.g. tourism=museum.
type TagPair struct {
	Key   string
	Value string
}

// POICandidate is a scored point of interest produced by a discovery pass.
// Candidates live only for the duration of one query and are never persisted.
type POICandidate struct {
	Name       string
	Coordinate Coordinate
	Tags       map[string]string
	Score      int
}

// RouteSummary is the distance/duration result of one routing lookup.
type RouteSummary struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// GeocodeResult is a single geocoder match with its precision indicator.
type GeocodeResult struct {
	Coordinate Coordinate
	Precision  string
}

// TripRequest holds the user-entered itinerary parameters. Immutable once it
// reaches the itinerary service.
type TripRequest struct {
	Origin      string   `json:"origin"`
	Preferences []string `json:"preferences"`
	Days        int      `json:"days"`
	Budget      float64  `json:"budget"`
	FirstVisit  bool     `json:"first_visit"`
}

// DayBlock is one "День N:" span of LLM output during a single enrichment
// pass. Coordinates always start with the trip's reference coordinate.
type DayBlock struct {
	Title       string
	Body        string
	Coordinates []Coordinate
	MapLink     string
}
